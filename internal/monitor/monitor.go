package monitor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sol-strategies/solana-validator-dashboard/internal/constants"
	"github.com/sol-strategies/solana-validator-dashboard/internal/hooks"
	"github.com/sol-strategies/solana-validator-dashboard/internal/metrics"
	"github.com/sol-strategies/solana-validator-dashboard/internal/solana"
	"github.com/sol-strategies/solana-validator-dashboard/internal/utils"
)

// Config is the configuration for a Monitor
type Config struct {
	RPCURL               string
	ValidatorPubkey      string
	Interval             time.Duration
	UptimeAlertThreshold float64
}

// StatsRecorder receives readings for export
type StatsRecorder interface {
	ObserveStats(sample metrics.Sample)
	IncAlerts(validator string)
	IncFetchErrors(validator string)
}

// Option customizes a Monitor
type Option func(m *Monitor)

// WithSolanaClient replaces the rpc client built from Config.RPCURL
func WithSolanaClient(client solana.ClientInterface) Option {
	return func(m *Monitor) {
		m.solanaClient = client
	}
}

// WithReporter replaces the console reporter
func WithReporter(reporter Reporter) Option {
	return func(m *Monitor) {
		m.reporter = reporter
	}
}

// WithRecorder exports readings to recorder
func WithRecorder(recorder StatsRecorder) Option {
	return func(m *Monitor) {
		m.recorder = recorder
	}
}

// WithAlertHooks runs hooks whenever an alert is raised
func WithAlertHooks(alertHooks hooks.AlertHooks) Option {
	return func(m *Monitor) {
		m.hooks = alertHooks
	}
}

// Monitor polls the vote accounts of a cluster for one validator
type Monitor struct {
	cfg             Config
	validatorPubkey solanago.PublicKey
	solanaClient    solana.ClientInterface
	reporter        Reporter
	recorder        StatsRecorder
	hooks           hooks.AlertHooks
	logger          zerolog.Logger
}

// New creates a Monitor, applying defaults for zero values. Invalid values return a *ConfigurationError
func New(cfg Config, opts ...Option) (*Monitor, error) {
	if cfg.RPCURL == "" {
		cfg.RPCURL = constants.DefaultRPCURL
	}
	if cfg.Interval == 0 {
		cfg.Interval = constants.DefaultMonitorInterval
	}
	if cfg.UptimeAlertThreshold == 0 {
		cfg.UptimeAlertThreshold = constants.DefaultUptimeAlertThreshold
	}

	if !utils.IsValidRPCURL(cfg.RPCURL) {
		return nil, &ConfigurationError{Field: "rpc_url", Reason: fmt.Sprintf("%q is not an http(s) url", cfg.RPCURL)}
	}
	if cfg.Interval < 0 {
		return nil, &ConfigurationError{Field: "interval", Reason: fmt.Sprintf("must be positive, got %s", cfg.Interval)}
	}
	if cfg.UptimeAlertThreshold < 0 {
		return nil, &ConfigurationError{Field: "uptime_alert_threshold", Reason: fmt.Sprintf("must not be negative, got %.2f", cfg.UptimeAlertThreshold)}
	}
	if cfg.ValidatorPubkey == "" {
		return nil, &ConfigurationError{Field: "validator_pubkey", Reason: "is required"}
	}
	validatorPubkey, err := solanago.PublicKeyFromBase58(cfg.ValidatorPubkey)
	if err != nil {
		return nil, &ConfigurationError{Field: "validator_pubkey", Reason: "must be a base58 encoded 32 byte public key", Err: err}
	}

	m := &Monitor{
		cfg:             cfg,
		validatorPubkey: validatorPubkey,
		logger: log.With().
			Str("component", "monitor").
			Str("validator", validatorPubkey.String()).
			Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.solanaClient == nil {
		m.solanaClient = solana.NewRPCClient(solana.NewClientParams{RPCURL: cfg.RPCURL})
	}
	if m.reporter == nil {
		m.reporter = NewConsoleReporter(os.Stdout)
	}

	return m, nil
}

// Config returns the effective configuration, defaults applied
func (m *Monitor) Config() Config {
	return m.cfg
}

// FetchValidatorStats queries the cluster once and computes the validator stats. The current set is
// searched before the delinquent one
func (m *Monitor) FetchValidatorStats(ctx context.Context) (*ValidatorStats, error) {
	voteAccounts, err := m.solanaClient.GetVoteAccounts(ctx)
	if err != nil {
		return nil, &FetchError{Err: err}
	}

	voteAccount, delinquent, found := m.findVoteAccount(voteAccounts)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrValidatorNotFound, m.validatorPubkey)
	}

	m.logger.Debug().
		Str("vote_pubkey", voteAccount.VotePubkey.String()).
		Bool("delinquent", delinquent).
		Int("epoch_credits", len(voteAccount.EpochCredits)).
		Msg("found vote account")

	stats := ComputeStats(voteAccount)
	return &stats, nil
}

func (m *Monitor) findVoteAccount(voteAccounts *rpc.GetVoteAccountsResult) (voteAccount rpc.VoteAccountsResult, delinquent bool, found bool) {
	for _, candidate := range voteAccounts.Current {
		if candidate.NodePubkey.Equals(m.validatorPubkey) {
			return candidate, false, true
		}
	}
	for _, candidate := range voteAccounts.Delinquent {
		if candidate.NodePubkey.Equals(m.validatorPubkey) {
			return candidate, true, true
		}
	}
	return voteAccount, false, false
}

// Tick runs one monitor iteration: fetch, report and alert. Errors are reported and returned
func (m *Monitor) Tick(ctx context.Context) (*ValidatorStats, error) {
	validator := m.validatorPubkey.String()

	stats, err := m.FetchValidatorStats(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if m.recorder != nil {
			m.recorder.IncFetchErrors(validator)
		}
		m.reporter.ReportError(err)
		return nil, err
	}

	m.logger.Info().
		Float64("uptime", stats.Uptime).
		Uint64("stake_amount", stats.StakeAmount).
		Uint8("commission", stats.Commission).
		Uint64("rewards", stats.Rewards).
		Float64("apr", stats.APR).
		Msg("validator stats")

	m.reporter.ReportStats(validator, *stats, m.cfg.UptimeAlertThreshold)
	if m.recorder != nil {
		m.recorder.ObserveStats(metrics.Sample{
			Validator:   validator,
			Uptime:      stats.Uptime,
			StakeAmount: stats.StakeAmount,
			Commission:  stats.Commission,
			Rewards:     stats.Rewards,
			APR:         stats.APR,
		})
	}

	if stats.Uptime < m.cfg.UptimeAlertThreshold {
		m.alert(ctx, Alert{
			ValidatorPubkey: validator,
			Uptime:          stats.Uptime,
			Threshold:       m.cfg.UptimeAlertThreshold,
			Stats:           *stats,
		})
	}

	return stats, nil
}

func (m *Monitor) alert(ctx context.Context, alert Alert) {
	m.logger.Warn().
		Float64("uptime", alert.Uptime).
		Float64("threshold", alert.Threshold).
		Msg("validator uptime below threshold")

	m.reporter.ReportAlert(alert)
	if m.recorder != nil {
		m.recorder.IncAlerts(alert.ValidatorPubkey)
	}

	if !m.hooks.HasOnAlert() {
		return
	}
	err := m.hooks.RunOnAlert(ctx, map[string]string{
		"VALIDATOR_PUBKEY": alert.ValidatorPubkey,
		"UPTIME":           fmt.Sprintf("%.2f", alert.Uptime),
		"ALERT_THRESHOLD":  fmt.Sprintf("%.2f", alert.Threshold),
		"STAKE_AMOUNT":     fmt.Sprintf("%d", alert.Stats.StakeAmount),
		"COMMISSION":       fmt.Sprintf("%d", alert.Stats.Commission),
		"REWARDS":          fmt.Sprintf("%d", alert.Stats.Rewards),
		"APR":              fmt.Sprintf("%.2f", alert.Stats.APR),
	})
	if err != nil {
		m.logger.Error().Err(err).Msg("on_alert hooks failed")
	}
}

// Run ticks immediately and then every interval until ctx is cancelled. Tick errors never stop the loop
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info().
		Str("interval", m.cfg.Interval.String()).
		Float64("uptime_alert_threshold", m.cfg.UptimeAlertThreshold).
		Msgf("Starting validator monitoring for: %s", m.validatorPubkey)

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		if _, err := m.Tick(ctx); err != nil && !errors.Is(err, ctx.Err()) {
			m.logger.Debug().Err(err).Msg("tick failed, waiting for next interval")
		}

		select {
		case <-ctx.Done():
			m.logger.Info().Msg("validator monitoring stopped")
			return nil
		case <-ticker.C:
		}
	}
}
