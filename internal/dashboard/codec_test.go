package dashboard

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anchorDiscriminator(preimage string) [8]byte {
	sum := sha256.Sum256([]byte(preimage))
	var discriminator [8]byte
	copy(discriminator[:], sum[:8])
	return discriminator
}

func TestDiscriminators(t *testing.T) {
	assert.Equal(t, anchorDiscriminator("global:initialize"), InitializeDiscriminator)
	assert.Equal(t, anchorDiscriminator("global:update_validator_stats"), UpdateValidatorStatsDiscriminator)
	assert.Equal(t, anchorDiscriminator("global:set_alert_threshold"), SetAlertThresholdDiscriminator)
	assert.Equal(t, anchorDiscriminator("account:ValidatorDashboard"), AccountDiscriminator)
	assert.Equal(t, anchorDiscriminator("event:AlertTriggered"), AlertTriggeredDiscriminator)
}

func TestValidatorDashboard_Layout(t *testing.T) {
	record := ValidatorDashboard{
		Authority:      solanago.NewWallet().PublicKey(),
		Uptime:         90,
		StakeAmount:    1000,
		Commission:     5,
		Rewards:        50,
		AlertThreshold: 95,
		LastUpdated:    -1,
	}

	data, err := record.Encode()
	require.NoError(t, err)
	require.Len(t, data, AccountSize)
	assert.Equal(t, 81, AccountSize)
	assert.Equal(t, AccountDiscriminator[:], data[:8])
	assert.Equal(t, record.Authority[:], data[8:40])
	assert.Equal(t, byte(90), data[40])
	assert.Equal(t, byte(5), data[56])

	decoded, err := DecodeValidatorDashboard(data)
	require.NoError(t, err)
	assert.Equal(t, record, *decoded)
}

func TestDecodeValidatorDashboard_Invalid(t *testing.T) {
	_, err := DecodeValidatorDashboard(make([]byte, 10))
	assert.ErrorIs(t, err, ErrInvalidAccountData)

	_, err = DecodeValidatorDashboard(make([]byte, AccountSize))
	assert.ErrorIs(t, err, ErrInvalidAccountData)
}

func TestValidatorDashboard_Fingerprint(t *testing.T) {
	record := newValidatorDashboard(solanago.NewWallet().PublicKey(), 95)
	fingerprint := record.Fingerprint()
	assert.Contains(t, fingerprint, "xxh3:")
	assert.Equal(t, fingerprint, record.Fingerprint())

	record.Uptime = 1
	assert.NotEqual(t, fingerprint, record.Fingerprint())
}

func TestParseAlertEvents(t *testing.T) {
	event := AlertTriggered{Validator: solanago.NewWallet().PublicKey(), Uptime: 90, Threshold: 95}
	line, err := event.LogLine()
	require.NoError(t, err)

	logs := []string{
		"Program 9KxB22cPSBkKXJJ9wusjQkfeVUrbT5qzCWdhCpnW5dpC invoke [1]",
		"Program log: Instruction: UpdateValidatorStats",
		"Program data: " + base64.StdEncoding.EncodeToString([]byte("not an event at all")),
		"Program data: %%%",
		line,
		"Program 9KxB22cPSBkKXJJ9wusjQkfeVUrbT5qzCWdhCpnW5dpC success",
	}

	events := ParseAlertEvents(logs)
	require.Len(t, events, 1)
	assert.Equal(t, event, events[0])
}

func TestDecodeInstructionData(t *testing.T) {
	programID := solanago.NewWallet().PublicKey()
	dashboard := solanago.NewWallet().PublicKey()
	authority := solanago.NewWallet().PublicKey()
	args := UpdateValidatorStatsArgs{Uptime: 9_950, StakeAmount: 42 * 1_000_000_000, Commission: 7, Rewards: 123}

	instruction, err := NewUpdateValidatorStatsInstruction(programID, dashboard, authority, args)
	require.NoError(t, err)
	data, err := instruction.Data()
	require.NoError(t, err)
	assert.Len(t, data, 8+8+8+1+8)

	decoded, err := DecodeInstructionData(data)
	require.NoError(t, err)
	assert.Equal(t, InstructionUpdateValidatorStats, decoded.Kind)
	assert.Equal(t, args, decoded.UpdateStats)

	accounts := instruction.Accounts()
	require.Len(t, accounts, 2)
	assert.True(t, accounts[0].IsWritable)
	assert.False(t, accounts[0].IsSigner)
	assert.True(t, accounts[1].IsSigner)

	_, err = DecodeInstructionData([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	assert.ErrorIs(t, err, ErrInvalidInstruction)

	_, err = DecodeInstructionData(SetAlertThresholdDiscriminator[:])
	assert.ErrorIs(t, err, ErrInvalidInstruction)
}
