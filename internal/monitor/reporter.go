package monitor

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/sol-strategies/solana-validator-dashboard/internal/constants"
	"github.com/sol-strategies/solana-validator-dashboard/internal/style"
)

// Alert describes an uptime reading below the configured threshold
type Alert struct {
	ValidatorPubkey string
	Uptime          float64
	Threshold       float64
	Stats           ValidatorStats
}

// Reporter receives the outcome of every monitor tick
type Reporter interface {
	ReportStats(validatorPubkey string, stats ValidatorStats, threshold float64)
	ReportAlert(alert Alert)
	ReportError(err error)
}

// ConsoleReporter renders ticks to a terminal
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a ConsoleReporter writing stats and alerts to out. Errors go to the logger
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

// ReportStats implements Reporter.ReportStats
func (r *ConsoleReporter) ReportStats(validatorPubkey string, stats ValidatorStats, threshold float64) {
	fmt.Fprintln(r.out, style.RenderPurpleString("Validator Stats: "+validatorPubkey))
	fmt.Fprintln(r.out, style.RenderKeyValueTable(StatsRows(stats), map[int]bool{0: stats.Uptime < threshold}))
}

// ReportAlert implements Reporter.ReportAlert
func (r *ConsoleReporter) ReportAlert(alert Alert) {
	fmt.Fprintln(r.out, style.RenderAlertStringf("🚨 ALERT: Validator uptime below threshold: %.2f%%", alert.Uptime))
}

// ReportError implements Reporter.ReportError
func (r *ConsoleReporter) ReportError(err error) {
	log.Error().Err(err).Msg("Error fetching stats")
}

// StatsRows formats stats as label/value rows
func StatsRows(stats ValidatorStats) [][]string {
	return [][]string{
		{"Uptime", fmt.Sprintf("%.2f%%", stats.Uptime)},
		{"Stake", FormatLamports(stats.StakeAmount)},
		{"Commission", fmt.Sprintf("%d%%", stats.Commission)},
		{"Rewards", humanize.Comma(clampInt64(stats.Rewards)) + " credits"},
		{"APR", fmt.Sprintf("%.2f%%", stats.APR)},
	}
}

// FormatLamports renders a lamport amount as SOL with thousands separators
func FormatLamports(lamports uint64) string {
	sol := float64(lamports) / constants.LamportsPerSOL
	return fmt.Sprintf("%s SOL (%s lamports)", humanize.CommafWithDigits(sol, 4), humanize.Comma(clampInt64(lamports)))
}

func clampInt64(v uint64) int64 {
	if v > 1<<63-1 {
		return 1<<63 - 1
	}
	return int64(v)
}
