package solana

import (
	"context"
	"errors"
	"fmt"
	"time"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog/log"
	"github.com/ssgreg/repeat"
)

var (
	// ErrAccountNotFound is returned when an account does not exist on chain
	ErrAccountNotFound = errors.New("account not found")

	errTransactionPending = errors.New("transaction not confirmed yet")
)

const (
	// DefaultConfirmTimeout bounds how long SendAndConfirm waits for a signature to confirm
	DefaultConfirmTimeout = 60 * time.Second

	confirmPollDelay = 500 * time.Millisecond
	confirmMaxDelay  = 2 * time.Second
)

// RPCClientInterface defines the interface for RPC client operations - a solana rpc client interface
type RPCClientInterface interface {
	GetVoteAccounts(ctx context.Context, opts *rpc.GetVoteAccountsOpts) (*rpc.GetVoteAccountsResult, error)
	GetAccountInfo(ctx context.Context, account solanago.PublicKey) (*rpc.GetAccountInfoResult, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransaction(ctx context.Context, transaction *solanago.Transaction) (solanago.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solanago.Signature) (*rpc.GetSignatureStatusesResult, error)
	GetTransaction(ctx context.Context, txSig solanago.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error)
	GetHealth(ctx context.Context) (string, error)
}

// ClientInterface defines the interface for solana rpc operations - just simple wrappers around the rpc client
type ClientInterface interface {
	// GetVoteAccounts returns the current and delinquent vote accounts of the cluster
	GetVoteAccounts(ctx context.Context) (*rpc.GetVoteAccountsResult, error)
	// GetAccount returns the owner and raw data of an account
	GetAccount(ctx context.Context, address solanago.PublicKey) (owner solanago.PublicKey, data []byte, err error)
	// SendAndConfirm signs, sends and waits for confirmation of a transaction built from instructions
	SendAndConfirm(ctx context.Context, params SendParams) (solanago.Signature, error)
	// GetTransactionLogs returns the log messages of a confirmed transaction
	GetTransactionLogs(ctx context.Context, signature solanago.Signature) ([]string, error)
	// IsHealthy returns true if the rpc node reports being healthy
	IsHealthy(ctx context.Context) bool
}

// SendParams are the parameters for SendAndConfirm
type SendParams struct {
	Instructions   []solanago.Instruction
	Payer          solanago.PrivateKey
	Signers        []solanago.PrivateKey
	ConfirmTimeout time.Duration
}

// Client implements ClientInterface using an RPC client
type Client struct {
	rpcClient RPCClientInterface
}

// NewClientParams is the parameters for creating a new client
type NewClientParams struct {
	RPCURL string
}

// NewRPCClient creates a new client for the given rpc endpoint
func NewRPCClient(params NewClientParams) ClientInterface {
	return &Client{
		rpcClient: rpc.New(params.RPCURL),
	}
}

// IsHealthy returns true if the rpc node is healthy
func (c *Client) IsHealthy(ctx context.Context) bool {
	result, err := c.rpcClient.GetHealth(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("failed to get rpc node health")
		return false
	}
	isHealthy := result == rpc.HealthOk
	if !isHealthy {
		log.Debug().Str("result", result).Msg("rpc node health")
	}
	return isHealthy
}

// GetVoteAccounts returns the current and delinquent vote accounts
func (c *Client) GetVoteAccounts(ctx context.Context) (*rpc.GetVoteAccountsResult, error) {
	voteAccounts, err := c.rpcClient.GetVoteAccounts(
		ctx,
		&rpc.GetVoteAccountsOpts{
			Commitment: rpc.CommitmentConfirmed,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get vote accounts: %w", err)
	}
	if voteAccounts == nil {
		return nil, fmt.Errorf("failed to get vote accounts: empty response")
	}

	log.Debug().
		Int("current", len(voteAccounts.Current)).
		Int("delinquent", len(voteAccounts.Delinquent)).
		Msg("fetched vote accounts")

	return voteAccounts, nil
}

// GetAccount returns the owner and data of an account
func (c *Client) GetAccount(ctx context.Context, address solanago.PublicKey) (owner solanago.PublicKey, data []byte, err error) {
	result, err := c.rpcClient.GetAccountInfo(ctx, address)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return owner, nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
		}
		return owner, nil, fmt.Errorf("failed to get account %s: %w", address, err)
	}
	if result == nil || result.Value == nil {
		return owner, nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}

	if result.Value.Data != nil {
		data = result.Value.Data.GetBinary()
	}

	return result.Value.Owner, data, nil
}

// SendAndConfirm builds a transaction from the given instructions, signs it with the payer and any extra
// signers, sends it and polls its signature status until it is confirmed
func (c *Client) SendAndConfirm(ctx context.Context, params SendParams) (signature solanago.Signature, err error) {
	if len(params.Instructions) == 0 {
		return signature, fmt.Errorf("no instructions to send")
	}

	latest, err := c.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return signature, fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	tx, err := solanago.NewTransaction(
		params.Instructions,
		latest.Value.Blockhash,
		solanago.TransactionPayer(params.Payer.PublicKey()),
	)
	if err != nil {
		return signature, fmt.Errorf("failed to create transaction: %w", err)
	}

	signers := append([]solanago.PrivateKey{params.Payer}, params.Signers...)
	_, err = tx.Sign(func(key solanago.PublicKey) *solanago.PrivateKey {
		for i := range signers {
			if signers[i].PublicKey().Equals(key) {
				return &signers[i]
			}
		}
		return nil
	})
	if err != nil {
		return signature, fmt.Errorf("failed to sign transaction: %w", err)
	}

	signature, err = c.rpcClient.SendTransaction(ctx, tx)
	if err != nil {
		return signature, fmt.Errorf("failed to send transaction: %w", err)
	}

	log.Debug().
		Str("signature", signature.String()).
		Int("instructions", len(params.Instructions)).
		Msg("transaction sent")

	timeout := params.ConfirmTimeout
	if timeout <= 0 {
		timeout = DefaultConfirmTimeout
	}

	if err = c.waitForConfirmation(ctx, signature, timeout); err != nil {
		return signature, err
	}

	return signature, nil
}

// waitForConfirmation polls the signature status until it is confirmed, fails or the timeout elapses
func (c *Client) waitForConfirmation(ctx context.Context, signature solanago.Signature, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := repeat.Repeat(
		repeat.Fn(func() error {
			statuses, err := c.rpcClient.GetSignatureStatuses(ctx, false, signature)
			if err != nil {
				return repeat.HintTemporary(err)
			}
			if statuses == nil || len(statuses.Value) == 0 || statuses.Value[0] == nil {
				return repeat.HintTemporary(errTransactionPending)
			}

			status := statuses.Value[0]
			if status.Err != nil {
				return repeat.HintStop(fmt.Errorf("transaction %s failed: %v", signature, status.Err))
			}

			switch status.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				log.Debug().
					Str("signature", signature.String()).
					Uint64("slot", status.Slot).
					Str("status", string(status.ConfirmationStatus)).
					Msg("transaction confirmed")
				return nil
			}
			return repeat.HintTemporary(errTransactionPending)
		}),
		repeat.StopOnSuccess(),
		repeat.WithDelay(
			repeat.SetContext(ctx),
			(&repeat.FullJitterBackoffBuilder{
				BaseDelay: confirmPollDelay,
				MaxDelay:  confirmMaxDelay,
			}).Set(),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to confirm transaction %s: %w", signature, err)
	}
	return nil
}

// GetTransactionLogs returns the log messages of a confirmed transaction
func (c *Client) GetTransactionLogs(ctx context.Context, signature solanago.Signature) ([]string, error) {
	maxVersion := uint64(0)
	tx, err := c.rpcClient.GetTransaction(ctx, signature, &rpc.GetTransactionOpts{
		Commitment:                     rpc.CommitmentConfirmed,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", signature, err)
	}
	if tx == nil || tx.Meta == nil {
		return nil, fmt.Errorf("transaction %s has no metadata", signature)
	}
	return tx.Meta.LogMessages, nil
}
