package dashboard

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	solanago "github.com/gagliardetto/solana-go"
)

// Instruction discriminators, sha256("global:<name>")[:8]
var (
	InitializeDiscriminator           = [8]byte{175, 175, 109, 31, 13, 152, 155, 237}
	UpdateValidatorStatsDiscriminator = [8]byte{69, 30, 242, 213, 134, 125, 215, 211}
	SetAlertThresholdDiscriminator    = [8]byte{143, 67, 31, 100, 94, 85, 252, 130}
)

// InstructionKind identifies a dashboard program entry point
type InstructionKind string

const (
	// InstructionInitialize creates a dashboard record
	InstructionInitialize InstructionKind = "initialize"
	// InstructionUpdateValidatorStats overwrites the reported metrics
	InstructionUpdateValidatorStats InstructionKind = "update_validator_stats"
	// InstructionSetAlertThreshold overwrites the alert threshold
	InstructionSetAlertThreshold InstructionKind = "set_alert_threshold"
)

// UpdateValidatorStatsArgs are the arguments of update_validator_stats
type UpdateValidatorStatsArgs struct {
	Uptime      uint64 `json:"uptime"`
	StakeAmount uint64 `json:"stake_amount"`
	Commission  uint8  `json:"commission"`
	Rewards     uint64 `json:"rewards"`
}

// DecodedInstruction is a dashboard instruction with its arguments decoded
type DecodedInstruction struct {
	Kind        InstructionKind
	UpdateStats UpdateValidatorStatsArgs
	Threshold   uint64
}

// NewInitializeInstruction creates the initialize instruction. Both the new dashboard account and the
// authority (payer) must sign
func NewInitializeInstruction(programID, dashboard, authority solanago.PublicKey) solanago.Instruction {
	return solanago.NewInstruction(
		programID,
		solanago.AccountMetaSlice{
			solanago.Meta(dashboard).WRITE().SIGNER(),
			solanago.Meta(authority).WRITE().SIGNER(),
			solanago.Meta(solanago.SystemProgramID),
		},
		bytes.Clone(InitializeDiscriminator[:]),
	)
}

// NewUpdateValidatorStatsInstruction creates the update_validator_stats instruction
func NewUpdateValidatorStatsInstruction(programID, dashboard, authority solanago.PublicKey, args UpdateValidatorStatsArgs) (solanago.Instruction, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 8+8+8+1+8))
	buf.Write(UpdateValidatorStatsDiscriminator[:])
	encoder := bin.NewBorshEncoder(buf)
	if err := encoder.WriteUint64(args.Uptime, bin.LE); err != nil {
		return nil, err
	}
	if err := encoder.WriteUint64(args.StakeAmount, bin.LE); err != nil {
		return nil, err
	}
	if err := encoder.WriteUint8(args.Commission); err != nil {
		return nil, err
	}
	if err := encoder.WriteUint64(args.Rewards, bin.LE); err != nil {
		return nil, err
	}

	return solanago.NewInstruction(
		programID,
		authorityAccounts(dashboard, authority),
		buf.Bytes(),
	), nil
}

// NewSetAlertThresholdInstruction creates the set_alert_threshold instruction
func NewSetAlertThresholdInstruction(programID, dashboard, authority solanago.PublicKey, threshold uint64) (solanago.Instruction, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 8+8))
	buf.Write(SetAlertThresholdDiscriminator[:])
	if err := bin.NewBorshEncoder(buf).WriteUint64(threshold, bin.LE); err != nil {
		return nil, err
	}

	return solanago.NewInstruction(
		programID,
		authorityAccounts(dashboard, authority),
		buf.Bytes(),
	), nil
}

// authorityAccounts is the account list shared by instructions guarded by has_one = authority
func authorityAccounts(dashboard, authority solanago.PublicKey) solanago.AccountMetaSlice {
	return solanago.AccountMetaSlice{
		solanago.Meta(dashboard).WRITE(),
		solanago.Meta(authority).SIGNER(),
	}
}

// DecodeInstructionData decodes dashboard instruction data
func DecodeInstructionData(data []byte) (*DecodedInstruction, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("%w: data too short for discriminator: %d bytes", ErrInvalidInstruction, len(data))
	}

	var discriminator [8]byte
	copy(discriminator[:], data[:8])
	decoder := bin.NewBorshDecoder(data[8:])

	var err error
	decoded := &DecodedInstruction{}
	switch discriminator {
	case InitializeDiscriminator:
		decoded.Kind = InstructionInitialize
	case UpdateValidatorStatsDiscriminator:
		decoded.Kind = InstructionUpdateValidatorStats
		args := &decoded.UpdateStats
		if args.Uptime, err = decoder.ReadUint64(bin.LE); err != nil {
			return nil, fmt.Errorf("%w: uptime: %v", ErrInvalidInstruction, err)
		}
		if args.StakeAmount, err = decoder.ReadUint64(bin.LE); err != nil {
			return nil, fmt.Errorf("%w: stake_amount: %v", ErrInvalidInstruction, err)
		}
		if args.Commission, err = decoder.ReadUint8(); err != nil {
			return nil, fmt.Errorf("%w: commission: %v", ErrInvalidInstruction, err)
		}
		if args.Rewards, err = decoder.ReadUint64(bin.LE); err != nil {
			return nil, fmt.Errorf("%w: rewards: %v", ErrInvalidInstruction, err)
		}
	case SetAlertThresholdDiscriminator:
		decoded.Kind = InstructionSetAlertThreshold
		if decoded.Threshold, err = decoder.ReadUint64(bin.LE); err != nil {
			return nil, fmt.Errorf("%w: threshold: %v", ErrInvalidInstruction, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown discriminator %x", ErrInvalidInstruction, discriminator)
	}

	return decoded, nil
}
