package hooks

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sol-strategies/solana-validator-dashboard/internal/utils"
	pkgconstants "github.com/sol-strategies/solana-validator-dashboard/pkg/constants"
)

// Hook is a command run when the monitor raises an alert
type Hook struct {
	Name        string   `mapstructure:"name"`
	Command     string   `mapstructure:"command"`
	Args        []string `mapstructure:"args"`
	MustSucceed bool     `mapstructure:"must_succeed"`
}

// Hooks is a collection of hooks
type Hooks []Hook

// AlertHooks are the hooks the monitor runs
type AlertHooks struct {
	OnAlert Hooks `mapstructure:"on_alert"`
}

// HasOnAlert returns true if there are any hooks to run on alert
func (h AlertHooks) HasOnAlert() bool {
	return len(h.OnAlert) > 0
}

// Env builds the environment handed to a hook process from envMap, in key order
func Env(envMap map[string]string) []string {
	env := make([]string, 0, len(envMap))
	for _, k := range utils.SortedKeys(envMap) {
		// Trim newlines and whitespace from the value
		cleanValue := strings.TrimSpace(envMap[k])
		env = append(env, fmt.Sprintf("%s%s=%s", pkgconstants.AppEnvVarPrefix, k, cleanValue))
	}
	return env
}

// Run runs the hook
func (h Hook) Run(ctx context.Context, envMap map[string]string) error {
	hookLogger := log.With().Str("hook", h.Name).Logger()
	// run the command passing in custom env variables about the alert
	cmd := exec.CommandContext(ctx, h.Command, h.Args...)
	cmd.Env = Env(envMap)

	hookLogger.Debug().
		Str("command", h.Command).
		Str("args", fmt.Sprintf("[%s]", strings.Join(h.Args, ", "))).
		Str("env", fmt.Sprintf("[%s]", strings.Join(cmd.Env, ", "))).
		Msg("running hook")

	// Capture stdout and stderr separately
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("hook %s failed to create stdout pipe: %w", h.Name, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("hook %s failed to create stderr pipe: %w", h.Name, err)
	}

	hookLogger.Info().
		Str("command", h.Command).
		Str("args", fmt.Sprintf("[%s]", strings.Join(h.Args, ", "))).
		Msg("🪝  Running hook")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("hook %s failed to start: %w", h.Name, err)
	}

	// streaming goroutines must finish before Wait closes the pipes
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		streamOutput(hookLogger, stdout, "stdout")
	}()
	go func() {
		defer wg.Done()
		streamOutput(hookLogger, stderr, "stderr")
	}()
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("🪝 🔴 hook %s failed: %w", h.Name, err)
	}

	hookLogger.Info().Msg("🪝  Hook completed successfully")
	return nil
}

// streamOutput streams output from a pipe to the logger in real-time
func streamOutput(logger zerolog.Logger, pipe io.Reader, streamType string) {
	scanner := bufio.NewScanner(pipe)
	baseLogger := logger.With().Str("stream", streamType).Logger()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if streamType == "stdout" {
			baseLogger.Info().Msgf("🪝  %s", line)
		} else {
			baseLogger.Error().Msgf("🪝  %s", line)
		}
	}

	if err := scanner.Err(); err != nil {
		// "file already closed" happens when the process exits mid-read
		if !strings.Contains(err.Error(), "file already closed") {
			logger.Error().Err(err).Msg("error reading hook output")
		}
	}
}

// RunOnAlert runs the on_alert hooks in order. A failing hook with must_succeed stops the chain and its
// error is returned, other failures are logged
func (h AlertHooks) RunOnAlert(ctx context.Context, envMap map[string]string) error {
	for _, hook := range h.OnAlert {
		err := hook.Run(ctx, envMap)
		if err != nil && hook.MustSucceed {
			return err
		}
		if err != nil {
			log.Error().Err(err).Msgf("on_alert hook %s failed - must_succeed is false, continuing...", hook.Name)
		}
	}
	return nil
}
