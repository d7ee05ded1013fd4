package dashboard

import (
	"context"
	"errors"
	"testing"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/sol-strategies/solana-validator-dashboard/internal/solana"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newProgramBackedMock returns a mock solana client that executes submitted instructions against a local
// program, so the client is exercised end to end without a cluster
func newProgramBackedMock(t *testing.T, program *Program, store *MemoryStore) *solana.MockClient {
	t.Helper()

	logsBySignature := map[solanago.Signature][]string{}

	return solana.NewMockClient().
		WithGetAccount(func(ctx context.Context, address solanago.PublicKey) (solanago.PublicKey, []byte, error) {
			owner, data, err := store.Get(address)
			if errors.Is(err, ErrAccountNotFound) {
				return solanago.PublicKey{}, nil, solana.ErrAccountNotFound
			}
			return owner, data, err
		}).
		WithSendAndConfirm(func(ctx context.Context, params solana.SendParams) (solanago.Signature, error) {
			signers := []solanago.PublicKey{params.Payer.PublicKey()}
			for _, signer := range params.Signers {
				signers = append(signers, signer.PublicKey())
			}

			var logs []string
			for _, instruction := range params.Instructions {
				result, err := program.Execute(instruction, signers...)
				if err != nil {
					return solanago.Signature{}, err
				}
				logs = append(logs, result.Logs...)
			}

			signature, err := params.Payer.Sign([]byte(logs[len(logs)-2]))
			require.NoError(t, err)
			logsBySignature[signature] = logs
			return signature, nil
		}).
		WithGetTransactionLogs(func(ctx context.Context, signature solanago.Signature) ([]string, error) {
			return logsBySignature[signature], nil
		})
}

func newTestClient(t *testing.T) (*Client, *Program, *solana.MockClient) {
	t.Helper()

	store := NewMemoryStore()
	program := NewProgram(ProgramConfig{
		Store: store,
		Clock: func() int64 { return testTimestamp },
	})
	mock := newProgramBackedMock(t, program, store)

	client, err := NewClient(ClientConfig{
		SolanaClient: mock,
		Authority:    solanago.NewWallet().PrivateKey,
	})
	require.NoError(t, err)
	return client, program, mock
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(ClientConfig{Authority: solanago.NewWallet().PrivateKey})
	assert.Error(t, err)

	_, err = NewClient(ClientConfig{SolanaClient: solana.NewMockClient()})
	assert.Error(t, err)

	client, err := NewClient(ClientConfig{SolanaClient: solana.NewMockClient(), Authority: solanago.NewWallet().PrivateKey})
	require.NoError(t, err)
	assert.Equal(t, "9KxB22cPSBkKXJJ9wusjQkfeVUrbT5qzCWdhCpnW5dpC", client.ProgramID().String())
}

func TestClient_InitializeUpdateAndFetch(t *testing.T) {
	client, _, mock := newTestClient(t)
	ctx := context.Background()

	initialized, err := client.Initialize(ctx)
	require.NoError(t, err)
	require.Len(t, mock.SentParams, 1)
	assert.Len(t, mock.SentParams[0].Signers, 1)
	assert.Equal(t, initialized.Dashboard, mock.SentParams[0].Signers[0].PublicKey())

	record, err := client.FetchDashboard(ctx, initialized.Dashboard)
	require.NoError(t, err)
	assert.Equal(t, client.Authority(), record.Authority)
	assert.Equal(t, uint64(95), record.AlertThreshold)

	updated, err := client.UpdateValidatorStats(ctx, initialized.Dashboard, UpdateValidatorStatsArgs{
		Uptime:      90,
		StakeAmount: 1000,
		Commission:  5,
		Rewards:     50,
	})
	require.NoError(t, err)
	require.Len(t, updated.Alerts, 1)
	assert.Equal(t, AlertTriggered{Validator: initialized.Dashboard, Uptime: 90, Threshold: 95}, updated.Alerts[0])

	record, err = client.FetchDashboard(ctx, initialized.Dashboard)
	require.NoError(t, err)
	assert.Equal(t, uint64(90), record.Uptime)
	assert.Equal(t, testTimestamp, record.LastUpdated)
}

func TestClient_SetAlertThreshold(t *testing.T) {
	client, _, _ := newTestClient(t)
	ctx := context.Background()

	initialized, err := client.Initialize(ctx)
	require.NoError(t, err)

	_, err = client.SetAlertThreshold(ctx, initialized.Dashboard, 80)
	require.NoError(t, err)

	updated, err := client.UpdateValidatorStats(ctx, initialized.Dashboard, UpdateValidatorStatsArgs{Uptime: 85})
	require.NoError(t, err)
	assert.Empty(t, updated.Alerts)
}

func TestClient_UnauthorizedFailsBeforeSending(t *testing.T) {
	client, program, mock := newTestClient(t)
	ctx := context.Background()

	dashboard := solanago.NewWallet().PublicKey()
	require.NoError(t, program.Initialize(solanago.NewWallet().PublicKey(), dashboard))

	_, err := client.UpdateValidatorStats(ctx, dashboard, UpdateValidatorStatsArgs{Uptime: 1})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = client.SetAlertThreshold(ctx, dashboard, 1)
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.Empty(t, mock.SentParams)
}

func TestClient_FetchDashboard_NotFound(t *testing.T) {
	client, _, _ := newTestClient(t)

	_, err := client.FetchDashboard(context.Background(), solanago.NewWallet().PublicKey())
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestClient_FetchDashboard_WrongOwner(t *testing.T) {
	record := newValidatorDashboard(solanago.NewWallet().PublicKey(), 95)
	data, err := record.Encode()
	require.NoError(t, err)

	mock := solana.NewMockClient().WithGetAccount(func(ctx context.Context, address solanago.PublicKey) (solanago.PublicKey, []byte, error) {
		return solanago.SystemProgramID, data, nil
	})
	client, err := NewClient(ClientConfig{SolanaClient: mock, Authority: solanago.NewWallet().PrivateKey})
	require.NoError(t, err)

	_, err = client.FetchDashboard(context.Background(), solanago.NewWallet().PublicKey())
	assert.ErrorIs(t, err, ErrInvalidAccountOwner)
}

func TestClient_SendError(t *testing.T) {
	mock := solana.NewMockClient().WithSendAndConfirm(func(ctx context.Context, params solana.SendParams) (solanago.Signature, error) {
		return solanago.Signature{}, errors.New("blockhash not found")
	})
	client, err := NewClient(ClientConfig{SolanaClient: mock, Authority: solanago.NewWallet().PrivateKey})
	require.NoError(t, err)

	_, err = client.Initialize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blockhash not found")
}
