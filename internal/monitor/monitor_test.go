package monitor

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sol-strategies/solana-validator-dashboard/internal/hooks"
	"github.com/sol-strategies/solana-validator-dashboard/internal/metrics"
	"github.com/sol-strategies/solana-validator-dashboard/internal/solana"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	mu     sync.Mutex
	stats  []ValidatorStats
	alerts []Alert
	errs   []error
}

func (r *recordingReporter) ReportStats(validatorPubkey string, stats ValidatorStats, threshold float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = append(r.stats, stats)
}

func (r *recordingReporter) ReportAlert(alert Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, alert)
}

func (r *recordingReporter) ReportError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

type recordingRecorder struct {
	samples     []metrics.Sample
	alerts      int
	fetchErrors int
}

func (r *recordingRecorder) ObserveStats(sample metrics.Sample) { r.samples = append(r.samples, sample) }
func (r *recordingRecorder) IncAlerts(string)                   { r.alerts++ }
func (r *recordingRecorder) IncFetchErrors(string)              { r.fetchErrors++ }

func newTestMonitor(t *testing.T, node solanago.PublicKey, client solana.ClientInterface, opts ...Option) (*Monitor, *recordingReporter) {
	t.Helper()

	reporter := &recordingReporter{}
	m, err := New(Config{
		ValidatorPubkey: node.String(),
		Interval:        10 * time.Millisecond,
	}, append([]Option{WithSolanaClient(client), WithReporter(reporter)}, opts...)...)
	require.NoError(t, err)
	return m, reporter
}

func voteAccount(node solanago.PublicKey, stake uint64, credits [][]int64) rpc.VoteAccountsResult {
	return rpc.VoteAccountsResult{
		VotePubkey:     solanago.NewWallet().PublicKey(),
		NodePubkey:     node,
		ActivatedStake: stake,
		Commission:     5,
		EpochCredits:   credits,
	}
}

func TestNew_Defaults(t *testing.T) {
	m, err := New(Config{ValidatorPubkey: solanago.NewWallet().PublicKey().String()}, WithSolanaClient(solana.NewMockClient()))
	require.NoError(t, err)

	cfg := m.Config()
	assert.Equal(t, "https://api.mainnet-beta.solana.com", cfg.RPCURL)
	assert.Equal(t, 60*time.Second, cfg.Interval)
	assert.Equal(t, 95.0, cfg.UptimeAlertThreshold)
}

func TestNew_ConfigurationErrors(t *testing.T) {
	valid := solanago.NewWallet().PublicKey().String()

	tests := map[string]Config{
		"empty pubkey":       {},
		"invalid base58":     {ValidatorPubkey: "not-a-key!"},
		"wrong length":       {ValidatorPubkey: "abc"},
		"bad rpc url":        {ValidatorPubkey: valid, RPCURL: "ftp://example.com"},
		"negative interval":  {ValidatorPubkey: valid, Interval: -time.Second},
		"negative threshold": {ValidatorPubkey: valid, UptimeAlertThreshold: -1},
	}
	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := New(cfg)
			var configErr *ConfigurationError
			assert.ErrorAs(t, err, &configErr)
		})
	}
}

func TestFetchValidatorStats_Current(t *testing.T) {
	node := solanago.NewWallet().PublicKey()
	client := solana.NewMockClient().WithVoteAccounts(
		[]rpc.VoteAccountsResult{voteAccount(solanago.NewWallet().PublicKey(), 1, nil), voteAccount(node, 1000, epochCredits(432, 1))},
		nil,
	)
	m, _ := newTestMonitor(t, node, client)

	stats, err := m.FetchValidatorStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100.0, stats.Uptime)
	assert.Equal(t, uint64(1000), stats.StakeAmount)
	assert.Equal(t, uint64(432), stats.Rewards)
	assert.Equal(t, 1, client.VoteAccountCalls)
}

func TestFetchValidatorStats_CurrentWinsOverDelinquent(t *testing.T) {
	node := solanago.NewWallet().PublicKey()
	client := solana.NewMockClient().WithVoteAccounts(
		[]rpc.VoteAccountsResult{voteAccount(node, 1000, epochCredits(432, 1))},
		[]rpc.VoteAccountsResult{voteAccount(node, 5, epochCredits(1, 1))},
	)
	m, _ := newTestMonitor(t, node, client)

	stats, err := m.FetchValidatorStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), stats.StakeAmount)
}

func TestFetchValidatorStats_Delinquent(t *testing.T) {
	node := solanago.NewWallet().PublicKey()
	client := solana.NewMockClient().WithVoteAccounts(
		nil,
		[]rpc.VoteAccountsResult{voteAccount(node, 5, epochCredits(216, 2))},
	)
	m, _ := newTestMonitor(t, node, client)

	stats, err := m.FetchValidatorStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50.0, stats.Uptime)
	assert.Equal(t, uint64(5), stats.StakeAmount)
}

func TestFetchValidatorStats_NotFound(t *testing.T) {
	client := solana.NewMockClient().WithVoteAccounts(
		[]rpc.VoteAccountsResult{voteAccount(solanago.NewWallet().PublicKey(), 1, nil)},
		nil,
	)
	m, _ := newTestMonitor(t, solanago.NewWallet().PublicKey(), client)

	_, err := m.FetchValidatorStats(context.Background())
	assert.ErrorIs(t, err, ErrValidatorNotFound)
	assert.Contains(t, err.Error(), "validator not found")
}

func TestFetchValidatorStats_FetchError(t *testing.T) {
	client := solana.NewMockClient().WithGetVoteAccounts(func(ctx context.Context) (*rpc.GetVoteAccountsResult, error) {
		return nil, errors.New("connection refused")
	})
	m, _ := newTestMonitor(t, solanago.NewWallet().PublicKey(), client)

	_, err := m.FetchValidatorStats(context.Background())
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, fetchErr.Error(), "connection refused")
	assert.Equal(t, 1, client.VoteAccountCalls)
}

func TestTick_AlertBelowThreshold(t *testing.T) {
	node := solanago.NewWallet().PublicKey()
	client := solana.NewMockClient().WithVoteAccounts(
		[]rpc.VoteAccountsResult{voteAccount(node, 1000, epochCredits(400, 1))},
		nil,
	)
	recorder := &recordingRecorder{}
	m, reporter := newTestMonitor(t, node, client, WithRecorder(recorder))

	stats, err := m.Tick(context.Background())
	require.NoError(t, err)
	assert.Less(t, stats.Uptime, 95.0)

	require.Len(t, reporter.alerts, 1)
	assert.Equal(t, node.String(), reporter.alerts[0].ValidatorPubkey)
	assert.Equal(t, 95.0, reporter.alerts[0].Threshold)
	assert.Equal(t, 1, recorder.alerts)
	require.Len(t, recorder.samples, 1)
	assert.Equal(t, stats.Uptime, recorder.samples[0].Uptime)
}

func TestTick_NoAlertAtThreshold(t *testing.T) {
	node := solanago.NewWallet().PublicKey()
	client := solana.NewMockClient().WithVoteAccounts(
		[]rpc.VoteAccountsResult{voteAccount(node, 1000, epochCredits(432, 1))},
		nil,
	)
	m, reporter := newTestMonitor(t, node, client)

	_, err := m.Tick(context.Background())
	require.NoError(t, err)
	assert.Len(t, reporter.stats, 1)
	assert.Empty(t, reporter.alerts)
}

func TestTick_AlertRunsHooks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hook uses /bin/sh")
	}
	node := solanago.NewWallet().PublicKey()
	client := solana.NewMockClient().WithVoteAccounts(
		[]rpc.VoteAccountsResult{voteAccount(node, 1000, epochCredits(10, 1))},
		nil,
	)
	marker := filepath.Join(t.TempDir(), "alerted")
	m, _ := newTestMonitor(t, node, client, WithAlertHooks(hooks.AlertHooks{OnAlert: hooks.Hooks{{
		Name:    "marker",
		Command: "/bin/sh",
		Args:    []string{"-c", `echo "$SOLANA_VALIDATOR_DASHBOARD_VALIDATOR_PUBKEY" > ` + marker},
	}}}))

	_, err := m.Tick(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, marker)
}

func TestTick_ErrorReported(t *testing.T) {
	client := solana.NewMockClient().WithGetVoteAccounts(func(ctx context.Context) (*rpc.GetVoteAccountsResult, error) {
		return nil, errors.New("timeout")
	})
	recorder := &recordingRecorder{}
	m, reporter := newTestMonitor(t, solanago.NewWallet().PublicKey(), client, WithRecorder(recorder))

	_, err := m.Tick(context.Background())
	assert.Error(t, err)
	assert.Len(t, reporter.errs, 1)
	assert.Empty(t, reporter.stats)
	assert.Equal(t, 1, recorder.fetchErrors)
}

func TestRun_ContinuesAfterErrorsAndStopsOnCancel(t *testing.T) {
	node := solanago.NewWallet().PublicKey()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	calls := 0
	client := solana.NewMockClient().WithGetVoteAccounts(func(ctx context.Context) (*rpc.GetVoteAccountsResult, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		switch {
		case calls == 1:
			return nil, errors.New("rpc unavailable")
		case calls >= 3:
			cancel()
		}
		return &rpc.GetVoteAccountsResult{
			Current: []rpc.VoteAccountsResult{voteAccount(node, 1000, epochCredits(432, 1))},
		}, nil
	})
	m, reporter := newTestMonitor(t, node, client)

	done := make(chan error, 1)
	go func() {
		done <- m.Run(ctx)
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("monitor did not stop after cancellation")
	}

	reporter.mu.Lock()
	defer reporter.mu.Unlock()
	assert.Len(t, reporter.errs, 1)
	assert.GreaterOrEqual(t, len(reporter.stats), 1)
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := solana.NewMockClient().WithGetVoteAccounts(func(ctx context.Context) (*rpc.GetVoteAccountsResult, error) {
		return nil, ctx.Err()
	})
	m, reporter := newTestMonitor(t, solanago.NewWallet().PublicKey(), client)

	require.NoError(t, m.Run(ctx))
	assert.Empty(t, reporter.errs)
}

func TestConsoleReporter(t *testing.T) {
	var out bytes.Buffer
	reporter := NewConsoleReporter(&out)

	reporter.ReportStats("node", ValidatorStats{Uptime: 90, StakeAmount: 1_000_000_000, Commission: 5, Rewards: 50, APR: 1.5}, 95)
	reporter.ReportAlert(Alert{ValidatorPubkey: "node", Uptime: 90, Threshold: 95})

	assert.Contains(t, out.String(), "Validator Stats: node")
	assert.Contains(t, out.String(), "90.00%")
	assert.Contains(t, out.String(), "ALERT: Validator uptime below threshold: 90.00%")
}
