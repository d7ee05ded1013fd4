package solanavalidatordashboard

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/mailgun/holster/v4/syncutil"
	"github.com/rs/zerolog/log"
	"github.com/sol-strategies/solana-validator-dashboard/internal/metrics"
	"github.com/sol-strategies/solana-validator-dashboard/internal/monitor"
	"github.com/spf13/cobra"
)

var (
	monitorValidatorPubkey string
	monitorRPCURL          string
	monitorInterval        string
	monitorThreshold       float64
	monitorMetrics         bool
	monitorCmd             = &cobra.Command{
		Use:          "monitor",
		Short:        "poll the cluster vote accounts and report uptime, stake, commission, rewards and APR for a validator",
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()

			flags := cmd.Flags()
			if flags.Changed("validator-pubkey") {
				cfg.Monitor.ValidatorPubkey = monitorValidatorPubkey
			}
			if flags.Changed("rpc-url") {
				cfg.RPCURL = monitorRPCURL
			}
			if flags.Changed("interval") {
				interval, err := parseDurationFlag("interval", monitorInterval)
				if err != nil {
					log.Fatal().Err(err).Msg("invalid flag")
				}
				cfg.Monitor.Interval = interval
			}
			if flags.Changed("threshold") {
				cfg.Monitor.UptimeAlertThreshold = monitorThreshold
			}
			if flags.Changed("metrics") {
				cfg.Metrics.Enabled = monitorMetrics
			}

			opts := []monitor.Option{
				monitor.WithAlertHooks(cfg.Monitor.Hooks),
			}
			var recorder *metrics.Recorder
			if cfg.Metrics.Enabled {
				recorder = metrics.NewRecorder()
				opts = append(opts, monitor.WithRecorder(recorder))
			}

			m, err := monitor.New(cfg.MonitorConfig(), opts...)
			if err != nil {
				var configErr *monitor.ConfigurationError
				if errors.As(err, &configErr) {
					log.Fatal().Err(err).Msg("invalid monitor configuration")
				}
				log.Fatal().Err(err).Msg("failed to create monitor")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var wg syncutil.WaitGroup
			wg.Run(func(any) error {
				return m.Run(ctx)
			}, nil)
			if recorder != nil {
				wg.Run(func(address any) error {
					err := recorder.Serve(ctx, address.(string))
					if err != nil {
						// without the exporter there is nothing left to serve, stop the loop too
						stop()
					}
					return err
				}, cfg.Metrics.Address)
			}

			if errs := wg.Wait(); len(errs) > 0 {
				log.Fatal().Errs("errors", errs).Msg("monitor stopped with errors")
			}
		},
	}
)

func init() {
	monitorCmd.Flags().StringVar(&monitorValidatorPubkey, "validator-pubkey", "", "validator identity to monitor (default from config monitor.validator_pubkey or VALIDATOR_PUBKEY)")
	monitorCmd.Flags().StringVar(&monitorRPCURL, "rpc-url", "", "rpc endpoint (default from config rpc_url, SOLANA_RPC_URL or the cluster endpoint)")
	monitorCmd.Flags().StringVar(&monitorInterval, "interval", "", "time between polls, e.g. 30s (default from config monitor.interval, 60s)")
	monitorCmd.Flags().Float64Var(&monitorThreshold, "threshold", 0, "uptime percentage below which an alert is raised (default from config monitor.uptime_alert_threshold, 95)")
	monitorCmd.Flags().BoolVar(&monitorMetrics, "metrics", false, "serve prometheus metrics on config metrics.address")
	rootCmd.AddCommand(monitorCmd)
}
