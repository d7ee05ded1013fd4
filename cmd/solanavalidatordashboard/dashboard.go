package solanavalidatordashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/dustin/go-humanize"
	solanago "github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog/log"
	"github.com/sol-strategies/solana-validator-dashboard/internal/config"
	"github.com/sol-strategies/solana-validator-dashboard/internal/dashboard"
	"github.com/sol-strategies/solana-validator-dashboard/internal/identities"
	"github.com/sol-strategies/solana-validator-dashboard/internal/monitor"
	"github.com/sol-strategies/solana-validator-dashboard/internal/solana"
	"github.com/sol-strategies/solana-validator-dashboard/internal/style"
	"github.com/spf13/cobra"
)

var (
	dashboardAddress  string
	dashboardKeyfile  string
	dashboardYes      bool
	updateUptime      uint64
	updateStake       uint64
	updateCommission  uint8
	updateRewards     uint64
	updateFromMonitor bool
	setThresholdValue uint64
	dashboardCmd      = &cobra.Command{
		Use:   "dashboard",
		Short: "manage the on-chain validator dashboard record",
	}
	dashboardInitCmd = &cobra.Command{
		Use:          "init",
		Short:        "create a new dashboard record with the authority keypair as its authority",
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			client := newDashboardClient(cfg)

			if !confirm(fmt.Sprintf("Create a new dashboard owned by %s with authority %s?",
				style.RenderBlueString(client.ProgramID().String()),
				style.RenderBlueString(client.Authority().String()),
			)) {
				log.Fatal().Msg("dashboard init cancelled")
			}

			var result *dashboard.InitializeResult
			err := runWithSpinner("initializing dashboard...", func(ctx context.Context) (err error) {
				result, err = client.Initialize(ctx)
				return err
			})
			if err != nil {
				log.Fatal().Err(err).Msg("failed to initialize dashboard")
			}

			fmt.Println(style.RenderKeyValueTable([][]string{
				{"Dashboard", result.Dashboard.String()},
				{"Signature", result.Signature.String()},
			}, nil))
			fmt.Println(style.RenderHealthyStringf("set dashboard.address to %s to use it in later commands", result.Dashboard))
		},
	}
	dashboardUpdateCmd = &cobra.Command{
		Use:          "update",
		Short:        "submit validator stats to the dashboard, raising an AlertTriggered event when uptime is below its threshold",
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			client := newDashboardClient(cfg)
			address := dashboardAddressOrFatal(cfg)

			statsArgs := dashboard.UpdateValidatorStatsArgs{
				Uptime:      updateUptime,
				StakeAmount: updateStake,
				Commission:  updateCommission,
				Rewards:     updateRewards,
			}
			if updateFromMonitor {
				statsArgs = statsFromMonitor(cfg)
			}

			if !confirm(fmt.Sprintf("Submit uptime=%d stake=%d commission=%d rewards=%d to %s?",
				statsArgs.Uptime, statsArgs.StakeAmount, statsArgs.Commission, statsArgs.Rewards,
				style.RenderBlueString(address.String()),
			)) {
				log.Fatal().Msg("dashboard update cancelled")
			}

			var result *dashboard.UpdateResult
			err := runWithSpinner("submitting validator stats...", func(ctx context.Context) (err error) {
				result, err = client.UpdateValidatorStats(ctx, address, statsArgs)
				return err
			})
			if err != nil {
				log.Fatal().Err(err).Msg("failed to update validator stats")
			}

			fmt.Println(style.RenderHealthyStringf("validator stats updated: %s", result.Signature))
			printAlerts(result.Alerts)
		},
	}
	dashboardSetThresholdCmd = &cobra.Command{
		Use:          "set-threshold",
		Short:        "overwrite the dashboard alert threshold",
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			client := newDashboardClient(cfg)
			address := dashboardAddressOrFatal(cfg)

			if !confirm(fmt.Sprintf("Set alert threshold of %s to %d?", style.RenderBlueString(address.String()), setThresholdValue)) {
				log.Fatal().Msg("set-threshold cancelled")
			}

			var signature solanago.Signature
			err := runWithSpinner("setting alert threshold...", func(ctx context.Context) (err error) {
				signature, err = client.SetAlertThreshold(ctx, address, setThresholdValue)
				return err
			})
			if err != nil {
				log.Fatal().Err(err).Msg("failed to set alert threshold")
			}

			fmt.Println(style.RenderHealthyStringf("alert threshold set to %d: %s", setThresholdValue, signature))
		},
	}
	dashboardShowCmd = &cobra.Command{
		Use:          "show",
		Short:        "show the dashboard record",
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			address := dashboardAddressOrFatal(cfg)
			client := newReadOnlyDashboardClient(cfg)

			ctx, cancel := context.WithTimeout(context.Background(), cfg.Dashboard.ConfirmTimeout)
			defer cancel()

			record, err := client.FetchDashboard(ctx, address)
			if err != nil {
				log.Fatal().Err(err).Msg("failed to fetch dashboard")
			}

			fmt.Println(style.RenderPurpleString("Dashboard: " + address.String()))
			fmt.Println(style.RenderKeyValueTable(dashboardRows(record), map[int]bool{1: record.Uptime < record.AlertThreshold}))
		},
	}
	dashboardWatchEventsCmd = &cobra.Command{
		Use:          "watch-events <signature> [signature...]",
		Short:        "decode the AlertTriggered events emitted by dashboard transactions",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			client := newReadOnlyDashboardClient(cfg)

			for _, arg := range args {
				signature, err := solanago.SignatureFromBase58(arg)
				if err != nil {
					log.Fatal().Err(err).Str("signature", arg).Msg("invalid signature")
				}

				ctx, cancel := context.WithTimeout(context.Background(), cfg.Dashboard.ConfirmTimeout)
				events, err := client.AlertEvents(ctx, signature)
				cancel()
				if err != nil {
					log.Error().Err(err).Str("signature", arg).Msg("failed to read transaction")
					continue
				}

				log.Info().Str("signature", arg).Int("events", len(events)).Msg("decoded transaction events")
				printAlerts(events)
			}
		},
	}
)

func init() {
	dashboardCmd.PersistentFlags().StringVar(&dashboardAddress, "address", "", "dashboard record address (default from config dashboard.address)")
	dashboardCmd.PersistentFlags().StringVar(&dashboardKeyfile, "authority-keyfile", "", "authority solana keygen file (default from config dashboard.authority_keyfile)")
	dashboardCmd.PersistentFlags().BoolVarP(&dashboardYes, "yes", "y", false, "skip confirmation prompts")

	dashboardUpdateCmd.Flags().Uint64Var(&updateUptime, "uptime", 0, "uptime value to submit")
	dashboardUpdateCmd.Flags().Uint64Var(&updateStake, "stake", 0, "stake amount in lamports")
	dashboardUpdateCmd.Flags().Uint8Var(&updateCommission, "commission", 0, "commission percentage")
	dashboardUpdateCmd.Flags().Uint64Var(&updateRewards, "rewards", 0, "rewards")
	dashboardUpdateCmd.Flags().BoolVar(&updateFromMonitor, "from-monitor", false, "fetch the monitored validator stats and submit them, uptime in basis points")
	dashboardUpdateCmd.MarkFlagsMutuallyExclusive("from-monitor", "uptime")

	dashboardSetThresholdCmd.Flags().Uint64Var(&setThresholdValue, "threshold", 0, "new alert threshold")
	_ = dashboardSetThresholdCmd.MarkFlagRequired("threshold")

	dashboardCmd.AddCommand(
		dashboardInitCmd,
		dashboardUpdateCmd,
		dashboardSetThresholdCmd,
		dashboardShowCmd,
		dashboardWatchEventsCmd,
	)
	rootCmd.AddCommand(dashboardCmd)
}

// newDashboardClient builds a client signing with the authority keyfile
func newDashboardClient(cfg *config.SolanaValidatorDashboard) *dashboard.Client {
	keyfile := cfg.Dashboard.AuthorityKeyfile
	if dashboardKeyfile != "" {
		keyfile = dashboardKeyfile
	}

	authority, err := identities.NewIdentityFromFile(keyfile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load authority keypair")
	}

	return buildDashboardClient(cfg, authority.Key)
}

// newReadOnlyDashboardClient builds a client for queries, signing with a throwaway key
func newReadOnlyDashboardClient(cfg *config.SolanaValidatorDashboard) *dashboard.Client {
	return buildDashboardClient(cfg, solanago.NewWallet().PrivateKey)
}

func buildDashboardClient(cfg *config.SolanaValidatorDashboard, authority solanago.PrivateKey) *dashboard.Client {
	programID, err := solanago.PublicKeyFromBase58(cfg.Dashboard.ProgramID)
	if err != nil {
		log.Fatal().Err(err).Str("program_id", cfg.Dashboard.ProgramID).Msg("invalid dashboard.program_id")
	}

	client, err := dashboard.NewClient(dashboard.ClientConfig{
		SolanaClient:   solana.NewRPCClient(solana.NewClientParams{RPCURL: cfg.ResolvedRPCURL()}),
		ProgramID:      programID,
		Authority:      authority,
		ConfirmTimeout: cfg.Dashboard.ConfirmTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create dashboard client")
	}
	return client
}

func dashboardAddressOrFatal(cfg *config.SolanaValidatorDashboard) solanago.PublicKey {
	address := cfg.Dashboard.Address
	if dashboardAddress != "" {
		address = dashboardAddress
	}
	if address == "" {
		log.Fatal().Msg("dashboard address is required, set --address or dashboard.address")
	}

	pubkey, err := solanago.PublicKeyFromBase58(address)
	if err != nil {
		log.Fatal().Err(err).Str("address", address).Msg("invalid dashboard address")
	}
	return pubkey
}

// statsFromMonitor fetches the monitored validator once and converts it into update arguments
func statsFromMonitor(cfg *config.SolanaValidatorDashboard) dashboard.UpdateValidatorStatsArgs {
	m, err := monitor.New(cfg.MonitorConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("invalid monitor configuration")
	}

	var stats *monitor.ValidatorStats
	err = runWithSpinner("fetching validator stats...", func(ctx context.Context) (err error) {
		stats, err = m.FetchValidatorStats(ctx)
		return err
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to fetch validator stats")
	}

	fmt.Println(style.RenderKeyValueTable(monitor.StatsRows(*stats), nil))

	return dashboard.UpdateValidatorStatsArgs{
		Uptime:      monitor.UptimeToBasisPoints(stats.Uptime),
		StakeAmount: stats.StakeAmount,
		Commission:  stats.Commission,
		Rewards:     stats.Rewards,
	}
}

func dashboardRows(record *dashboard.ValidatorDashboard) [][]string {
	lastUpdated := "never"
	if record.LastUpdated != 0 {
		t := time.Unix(record.LastUpdated, 0)
		lastUpdated = fmt.Sprintf("%s (%s)", t.UTC().Format(time.RFC3339), humanize.Time(t))
	}

	return [][]string{
		{"Authority", record.Authority.String()},
		{"Uptime", humanize.Comma(int64(record.Uptime))},
		{"Stake", monitor.FormatLamports(record.StakeAmount)},
		{"Commission", fmt.Sprintf("%d%%", record.Commission)},
		{"Rewards", humanize.Comma(int64(record.Rewards))},
		{"Alert threshold", humanize.Comma(int64(record.AlertThreshold))},
		{"Last updated", lastUpdated},
		{"Fingerprint", record.Fingerprint()},
	}
}

func printAlerts(alerts []dashboard.AlertTriggered) {
	for _, alert := range alerts {
		fmt.Println(style.RenderAlertStringf(
			"🚨 ALERT: dashboard %s uptime %d below threshold %d",
			alert.Validator, alert.Uptime, alert.Threshold,
		))
	}
}

// confirm asks for confirmation unless --yes was given
func confirm(title string) bool {
	if dashboardYes {
		return true
	}

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Value(&confirmed),
		),
	)
	if err := form.Run(); err != nil {
		log.Debug().Err(err).Msg("confirmation aborted")
		return false
	}
	return confirmed
}

// runWithSpinner runs action behind a spinner
func runWithSpinner(title string, action func(ctx context.Context) error) error {
	sp := spinner.New().
		TitleStyle(style.SpinnerTitleStyle).
		Title(title)

	sp.ActionWithErr(func(ctx context.Context) error {
		return action(ctx)
	})

	return sp.Run()
}

func parseDurationFlag(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid --%s %q: %w", name, value, err)
	}
	return d, nil
}
