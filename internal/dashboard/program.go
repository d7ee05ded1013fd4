package dashboard

import (
	"fmt"
	"slices"
	"time"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sol-strategies/solana-validator-dashboard/internal/constants"
)

// Clock returns the current unix timestamp of the chain
type Clock func() int64

// SystemClock is a Clock backed by the local wall clock
func SystemClock() int64 {
	return time.Now().Unix()
}

// ProgramConfig is the configuration for a Program
type ProgramConfig struct {
	ProgramID             solanago.PublicKey
	Store                 AccountStore
	Clock                 Clock
	DefaultAlertThreshold uint64
}

// Program executes the dashboard entry points against an AccountStore
type Program struct {
	programID             solanago.PublicKey
	store                 AccountStore
	clock                 Clock
	defaultAlertThreshold uint64
	logger                zerolog.Logger
}

// ExecutionResult is what a successful instruction leaves behind
type ExecutionResult struct {
	Kind   InstructionKind
	Events []AlertTriggered
	Logs   []string
}

// NewProgram creates a Program. A zero ProgramID falls back to the deployed program address
func NewProgram(cfg ProgramConfig) *Program {
	p := &Program{
		programID:             cfg.ProgramID,
		store:                 cfg.Store,
		clock:                 cfg.Clock,
		defaultAlertThreshold: cfg.DefaultAlertThreshold,
		logger:                log.With().Str("component", "dashboard_program").Logger(),
	}
	if p.programID.IsZero() {
		p.programID = solanago.MustPublicKeyFromBase58(constants.DefaultDashboardProgramID)
	}
	if p.store == nil {
		p.store = NewMemoryStore()
	}
	if p.clock == nil {
		p.clock = SystemClock
	}
	if p.defaultAlertThreshold == 0 {
		p.defaultAlertThreshold = constants.DefaultDashboardAlertThreshold
	}
	return p
}

// ProgramID returns the address the program answers to
func (p *Program) ProgramID() solanago.PublicKey {
	return p.programID
}

// Initialize creates a dashboard record at the given address with the payer as its authority
func (p *Program) Initialize(payer, dashboard solanago.PublicKey) error {
	record := newValidatorDashboard(payer, p.defaultAlertThreshold)
	data, err := record.Encode()
	if err != nil {
		return err
	}

	if err := p.store.Create(dashboard, p.programID, data); err != nil {
		return err
	}

	p.logger.Debug().
		Str("dashboard", dashboard.String()).
		Str("authority", payer.String()).
		Uint64("alert_threshold", record.AlertThreshold).
		Msg("dashboard initialized")
	return nil
}

// UpdateValidatorStats overwrites the reported metrics and stamps last_updated. It returns the
// AlertTriggered event when the supplied uptime is below the threshold in force before the update
func (p *Program) UpdateValidatorStats(signer, dashboard solanago.PublicKey, args UpdateValidatorStatsArgs) (event *AlertTriggered, err error) {
	var updated ValidatorDashboard
	err = p.mutate(signer, dashboard, func(record *ValidatorDashboard) {
		record.Uptime = args.Uptime
		record.StakeAmount = args.StakeAmount
		record.Commission = args.Commission
		record.Rewards = args.Rewards
		record.LastUpdated = p.clock()

		if args.Uptime < record.AlertThreshold {
			event = &AlertTriggered{
				Validator: dashboard,
				Uptime:    args.Uptime,
				Threshold: record.AlertThreshold,
			}
		}
		updated = *record
	})
	if err != nil {
		return nil, err
	}

	p.logger.Debug().
		Str("dashboard", dashboard.String()).
		Uint64("uptime", updated.Uptime).
		Uint64("stake_amount", updated.StakeAmount).
		Uint8("commission", updated.Commission).
		Uint64("rewards", updated.Rewards).
		Int64("last_updated", updated.LastUpdated).
		Str("fingerprint", updated.Fingerprint()).
		Bool("alert", event != nil).
		Msg("validator stats updated")

	return event, nil
}

// SetAlertThreshold overwrites the alert threshold. No bounds are enforced
func (p *Program) SetAlertThreshold(signer, dashboard solanago.PublicKey, threshold uint64) error {
	err := p.mutate(signer, dashboard, func(record *ValidatorDashboard) {
		record.AlertThreshold = threshold
	})
	if err != nil {
		return err
	}

	p.logger.Debug().
		Str("dashboard", dashboard.String()).
		Uint64("alert_threshold", threshold).
		Msg("alert threshold set")
	return nil
}

// Dashboard returns the decoded record stored at the given address
func (p *Program) Dashboard(dashboard solanago.PublicKey) (*ValidatorDashboard, error) {
	owner, data, err := p.store.Get(dashboard)
	if err != nil {
		return nil, err
	}
	if !owner.Equals(p.programID) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAccountOwner, owner)
	}
	return DecodeValidatorDashboard(data)
}

// mutate runs fn against the decoded record after checking ownership and authority. Nothing is written
// when a check fails
func (p *Program) mutate(signer, dashboard solanago.PublicKey, fn func(record *ValidatorDashboard)) error {
	return p.store.Update(dashboard, func(owner solanago.PublicKey, data []byte) ([]byte, error) {
		if !owner.Equals(p.programID) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidAccountOwner, owner)
		}

		record, err := DecodeValidatorDashboard(data)
		if err != nil {
			return nil, err
		}

		if !record.Authority.Equals(signer) {
			p.logger.Debug().
				Str("dashboard", dashboard.String()).
				Str("signer", signer.String()).
				Str("authority", record.Authority.String()).
				Msg("rejected: signer is not the authority")
			return nil, fmt.Errorf("%w: signer %s", ErrUnauthorized, signer)
		}

		fn(record)
		return record.Encode()
	})
}

// Execute runs a dashboard instruction the way the runtime would: it checks the program id, the account
// list and that every account flagged as signer is in signers, then dispatches to the handler
func (p *Program) Execute(instruction solanago.Instruction, signers ...solanago.PublicKey) (*ExecutionResult, error) {
	if !instruction.ProgramID().Equals(p.programID) {
		return nil, fmt.Errorf("%w: program id %s", ErrInvalidInstruction, instruction.ProgramID())
	}

	data, err := instruction.Data()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInstruction, err)
	}
	decoded, err := DecodeInstructionData(data)
	if err != nil {
		return nil, err
	}

	accounts := instruction.Accounts()
	for _, account := range accounts {
		if account.IsSigner && !slices.ContainsFunc(signers, account.PublicKey.Equals) {
			return nil, fmt.Errorf("%w: %s", ErrMissingSignature, account.PublicKey)
		}
	}

	result := &ExecutionResult{
		Kind: decoded.Kind,
		Logs: []string{
			fmt.Sprintf("Program %s invoke [1]", p.programID),
			fmt.Sprintf("Program log: Instruction: %s", decoded.Kind),
		},
	}

	switch decoded.Kind {
	case InstructionInitialize:
		if len(accounts) < 3 || !accounts[0].IsSigner || !accounts[1].IsSigner {
			return nil, fmt.Errorf("%w: initialize needs signing dashboard and authority accounts", ErrInvalidInstruction)
		}
		err = p.Initialize(accounts[1].PublicKey, accounts[0].PublicKey)
	case InstructionUpdateValidatorStats:
		if len(accounts) < 2 || !accounts[1].IsSigner {
			return nil, fmt.Errorf("%w: update_validator_stats needs dashboard and signing authority accounts", ErrInvalidInstruction)
		}
		var event *AlertTriggered
		event, err = p.UpdateValidatorStats(accounts[1].PublicKey, accounts[0].PublicKey, decoded.UpdateStats)
		if err == nil && event != nil {
			var line string
			if line, err = event.LogLine(); err == nil {
				result.Events = append(result.Events, *event)
				result.Logs = append(result.Logs, line)
			}
		}
	case InstructionSetAlertThreshold:
		if len(accounts) < 2 || !accounts[1].IsSigner {
			return nil, fmt.Errorf("%w: set_alert_threshold needs dashboard and signing authority accounts", ErrInvalidInstruction)
		}
		err = p.SetAlertThreshold(accounts[1].PublicKey, accounts[0].PublicKey, decoded.Threshold)
	}
	if err != nil {
		return nil, err
	}

	result.Logs = append(result.Logs, fmt.Sprintf("Program %s success", p.programID))
	return result, nil
}
