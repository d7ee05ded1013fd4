package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sol-strategies/solana-validator-dashboard/internal/constants"
	"github.com/sol-strategies/solana-validator-dashboard/internal/solana"
)

// ClientConfig is the configuration for a Client
type ClientConfig struct {
	SolanaClient   solana.ClientInterface
	ProgramID      solanago.PublicKey
	Authority      solanago.PrivateKey
	ConfirmTimeout time.Duration
}

// Client submits dashboard instructions to the deployed program and reads its state back
type Client struct {
	solanaClient   solana.ClientInterface
	programID      solanago.PublicKey
	authority      solanago.PrivateKey
	confirmTimeout time.Duration
	logger         zerolog.Logger
}

// InitializeResult is the outcome of Client.Initialize
type InitializeResult struct {
	Dashboard solanago.PublicKey
	Signature solanago.Signature
}

// UpdateResult is the outcome of Client.UpdateValidatorStats
type UpdateResult struct {
	Signature solanago.Signature
	Alerts    []AlertTriggered
}

// NewClient creates a Client. A zero ProgramID falls back to the deployed program address
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.SolanaClient == nil {
		return nil, fmt.Errorf("solana client is required")
	}
	if len(cfg.Authority) == 0 {
		return nil, fmt.Errorf("authority keypair is required")
	}

	programID := cfg.ProgramID
	if programID.IsZero() {
		programID = solanago.MustPublicKeyFromBase58(constants.DefaultDashboardProgramID)
	}

	return &Client{
		solanaClient:   cfg.SolanaClient,
		programID:      programID,
		authority:      cfg.Authority,
		confirmTimeout: cfg.ConfirmTimeout,
		logger: log.With().
			Str("component", "dashboard_client").
			Str("program_id", programID.String()).
			Logger(),
	}, nil
}

// ProgramID returns the program the client talks to
func (c *Client) ProgramID() solanago.PublicKey {
	return c.programID
}

// Authority returns the public key of the signing authority
func (c *Client) Authority() solanago.PublicKey {
	return c.authority.PublicKey()
}

// Initialize creates a new dashboard account owned by the program with the client authority as its authority
func (c *Client) Initialize(ctx context.Context) (*InitializeResult, error) {
	account, err := solanago.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate dashboard keypair: %w", err)
	}
	dashboard := account.PublicKey()

	signature, err := c.solanaClient.SendAndConfirm(ctx, solana.SendParams{
		Instructions:   []solanago.Instruction{NewInitializeInstruction(c.programID, dashboard, c.Authority())},
		Payer:          c.authority,
		Signers:        []solanago.PrivateKey{account},
		ConfirmTimeout: c.confirmTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize dashboard: %w", err)
	}

	c.logger.Info().
		Str("dashboard", dashboard.String()).
		Str("authority", c.Authority().String()).
		Str("signature", signature.String()).
		Msg("dashboard initialized")

	return &InitializeResult{Dashboard: dashboard, Signature: signature}, nil
}

// UpdateValidatorStats submits new metrics to the dashboard and returns any alert events it emitted
func (c *Client) UpdateValidatorStats(ctx context.Context, dashboard solanago.PublicKey, args UpdateValidatorStatsArgs) (*UpdateResult, error) {
	if err := c.checkAuthority(ctx, dashboard); err != nil {
		return nil, err
	}

	instruction, err := NewUpdateValidatorStatsInstruction(c.programID, dashboard, c.Authority(), args)
	if err != nil {
		return nil, fmt.Errorf("failed to build update_validator_stats instruction: %w", err)
	}

	signature, err := c.send(ctx, instruction)
	if err != nil {
		return nil, fmt.Errorf("failed to update validator stats: %w", err)
	}

	result := &UpdateResult{Signature: signature}
	alerts, err := c.AlertEvents(ctx, signature)
	if err != nil {
		c.logger.Warn().Err(err).Str("signature", signature.String()).Msg("failed to read alert events")
	} else {
		result.Alerts = alerts
	}

	c.logger.Info().
		Str("dashboard", dashboard.String()).
		Uint64("uptime", args.Uptime).
		Uint64("stake_amount", args.StakeAmount).
		Uint8("commission", args.Commission).
		Uint64("rewards", args.Rewards).
		Int("alerts", len(result.Alerts)).
		Str("signature", signature.String()).
		Msg("validator stats updated")

	return result, nil
}

// SetAlertThreshold overwrites the dashboard alert threshold
func (c *Client) SetAlertThreshold(ctx context.Context, dashboard solanago.PublicKey, threshold uint64) (solanago.Signature, error) {
	if err := c.checkAuthority(ctx, dashboard); err != nil {
		return solanago.Signature{}, err
	}

	instruction, err := NewSetAlertThresholdInstruction(c.programID, dashboard, c.Authority(), threshold)
	if err != nil {
		return solanago.Signature{}, fmt.Errorf("failed to build set_alert_threshold instruction: %w", err)
	}

	signature, err := c.send(ctx, instruction)
	if err != nil {
		return signature, fmt.Errorf("failed to set alert threshold: %w", err)
	}

	c.logger.Info().
		Str("dashboard", dashboard.String()).
		Uint64("alert_threshold", threshold).
		Str("signature", signature.String()).
		Msg("alert threshold set")

	return signature, nil
}

// FetchDashboard reads and decodes a dashboard account, checking it is owned by the program
func (c *Client) FetchDashboard(ctx context.Context, dashboard solanago.PublicKey) (*ValidatorDashboard, error) {
	owner, data, err := c.solanaClient.GetAccount(ctx, dashboard)
	if err != nil {
		if errors.Is(err, solana.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, dashboard)
		}
		return nil, err
	}
	if !owner.Equals(c.programID) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAccountOwner, owner)
	}
	return DecodeValidatorDashboard(data)
}

// AlertEvents returns the AlertTriggered events emitted by a confirmed transaction
func (c *Client) AlertEvents(ctx context.Context, signature solanago.Signature) ([]AlertTriggered, error) {
	logs, err := c.solanaClient.GetTransactionLogs(ctx, signature)
	if err != nil {
		return nil, err
	}
	return ParseAlertEvents(logs), nil
}

// checkAuthority fails before sending when the client authority cannot pass the has_one check
func (c *Client) checkAuthority(ctx context.Context, dashboard solanago.PublicKey) error {
	record, err := c.FetchDashboard(ctx, dashboard)
	if err != nil {
		return err
	}
	if !record.Authority.Equals(c.Authority()) {
		return fmt.Errorf("%w: dashboard authority is %s, client authority is %s", ErrUnauthorized, record.Authority, c.Authority())
	}
	return nil
}

func (c *Client) send(ctx context.Context, instruction solanago.Instruction) (solanago.Signature, error) {
	return c.solanaClient.SendAndConfirm(ctx, solana.SendParams{
		Instructions:   []solanago.Instruction{instruction},
		Payer:          c.authority,
		ConfirmTimeout: c.confirmTimeout,
	})
}
