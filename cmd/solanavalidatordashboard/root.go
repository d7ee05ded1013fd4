package solanavalidatordashboard

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sol-strategies/solana-validator-dashboard/internal/config"
	"github.com/sol-strategies/solana-validator-dashboard/internal/style"
	"github.com/sol-strategies/solana-validator-dashboard/pkg/constants"
	"github.com/spf13/cobra"
)

var (
	// available to all commands
	configPath string
	logLevel   string
	rootCmd    = &cobra.Command{
		Aliases: []string{},
		Use:     constants.AppName,
		Version: constants.AppVersion,
		Short: fmt.Sprintf(
			"%s (%s) - 📈 %s",
			style.RenderPurpleString(constants.AppName),
			style.RenderPurpleString(constants.AppVersion),
			style.RenderHealthyString("solana validator uptime monitor and on-chain dashboard", false),
		),
		Long: fmt.Sprintf(`
%s - %s

Version:
    %s
`, style.RenderPurpleString(constants.AppName),
			style.RenderHealthyString("📈 solana validator uptime monitor and on-chain dashboard", false),
			style.RenderPurpleString(constants.AppVersion),
		),
		PersistentPreRunE: persistentPreRun,
	}
)

// Execute ...
func Execute() {
	// config flag
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", fmt.Sprintf("path to config file (default %s)", config.DefaultConfigPath))
	// log level flag
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", logLevelFromEnv(), "log level")

	// execute
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func init() {
	cobra.OnInitialize(initLog)
}

func logLevelFromEnv() string {
	if level := os.Getenv(constants.AppEnvVarLogLevel); level != "" {
		return level
	}
	return zerolog.InfoLevel.String()
}

func initLog() {
	// configure logger
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:          os.Stderr,
		TimeLocation: time.UTC,
		NoColor:      false,
		TimeFormat:   time.RFC3339Nano, // RFC3339 with UTC timezone and nanoseconds
		FormatLevel: func(i any) string {
			levelStr, _ := i.(string)
			levelStyle, ok := style.LogLevels[levelStr]
			if !ok {
				return strings.ToUpper(levelStr)
			}
			return levelStyle.Bold(true).Width(5).Render(strings.ToUpper(levelStr))
		},
		FormatFieldName: func(i any) string {
			return style.RenderGreyString(fmt.Sprintf("%v=", i), false)
		},
		FormatMessageFromEvent: func(evt map[string]any) zerolog.Formatter {
			return func(i any) string {
				levelStr, _ := evt[zerolog.LevelFieldName].(string)
				msg := fmt.Sprintf("%v", i)
				if i == nil {
					msg = ""
				}
				levelStyle, ok := style.LogLevels[levelStr]
				if !ok {
					return msg
				}
				return levelStyle.Render(msg)
			}
		},
	}).With().Timestamp().Logger()
}

// persistentPreRun sets the log level and loads .env files ahead of any config
func persistentPreRun(cmd *cobra.Command, args []string) (err error) {
	// set zerolog level
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	zerolog.SetGlobalLevel(level)

	return config.LoadDotEnv(config.DotEnvFiles...)
}

// loadConfig loads and validates the config shared by every command
func loadConfig() *config.SolanaValidatorDashboard {
	cfg, err := config.NewFromFile(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}
	return cfg
}
