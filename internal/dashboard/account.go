package dashboard

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	solanago "github.com/gagliardetto/solana-go"
	"github.com/zeebo/xxh3"
)

// AccountSize is the size of a dashboard account: discriminator + authority + uptime + stake_amount +
// commission + rewards + alert_threshold + last_updated
const AccountSize = 8 + 32 + 8 + 8 + 1 + 8 + 8 + 8

// AccountDiscriminator is sha256("account:ValidatorDashboard")[:8]
var AccountDiscriminator = [8]byte{187, 63, 30, 91, 97, 125, 214, 221}

// ValidatorDashboard is the persisted record holding the latest reported validator metrics
type ValidatorDashboard struct {
	Authority      solanago.PublicKey `json:"authority"`
	Uptime         uint64             `json:"uptime"`
	StakeAmount    uint64             `json:"stake_amount"`
	Commission     uint8              `json:"commission"`
	Rewards        uint64             `json:"rewards"`
	AlertThreshold uint64             `json:"alert_threshold"`
	LastUpdated    int64              `json:"last_updated"`
}

// MarshalWithEncoder writes the borsh encoding of the record, without discriminator
func (d ValidatorDashboard) MarshalWithEncoder(encoder *bin.Encoder) (err error) {
	if err = encoder.WriteBytes(d.Authority[:], false); err != nil {
		return err
	}
	if err = encoder.WriteUint64(d.Uptime, bin.LE); err != nil {
		return err
	}
	if err = encoder.WriteUint64(d.StakeAmount, bin.LE); err != nil {
		return err
	}
	if err = encoder.WriteUint8(d.Commission); err != nil {
		return err
	}
	if err = encoder.WriteUint64(d.Rewards, bin.LE); err != nil {
		return err
	}
	if err = encoder.WriteUint64(d.AlertThreshold, bin.LE); err != nil {
		return err
	}
	return encoder.WriteInt64(d.LastUpdated, bin.LE)
}

// UnmarshalWithDecoder reads the borsh encoding of the record, without discriminator
func (d *ValidatorDashboard) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	authority, err := decoder.ReadNBytes(solanago.PublicKeyLength)
	if err != nil {
		return err
	}
	d.Authority = solanago.PublicKeyFromBytes(authority)
	if d.Uptime, err = decoder.ReadUint64(bin.LE); err != nil {
		return err
	}
	if d.StakeAmount, err = decoder.ReadUint64(bin.LE); err != nil {
		return err
	}
	if d.Commission, err = decoder.ReadUint8(); err != nil {
		return err
	}
	if d.Rewards, err = decoder.ReadUint64(bin.LE); err != nil {
		return err
	}
	if d.AlertThreshold, err = decoder.ReadUint64(bin.LE); err != nil {
		return err
	}
	d.LastUpdated, err = decoder.ReadInt64(bin.LE)
	return err
}

// Encode returns the account bytes as stored on chain: discriminator followed by the borsh encoded fields
func (d ValidatorDashboard) Encode() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, AccountSize))
	buf.Write(AccountDiscriminator[:])
	if err := d.MarshalWithEncoder(bin.NewBorshEncoder(buf)); err != nil {
		return nil, fmt.Errorf("failed to encode dashboard: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeValidatorDashboard decodes account bytes into a ValidatorDashboard
func DecodeValidatorDashboard(data []byte) (*ValidatorDashboard, error) {
	if len(data) < AccountSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAccountData, AccountSize, len(data))
	}
	if !bytes.Equal(data[:8], AccountDiscriminator[:]) {
		return nil, fmt.Errorf("%w: unexpected discriminator %x", ErrInvalidAccountData, data[:8])
	}

	d := &ValidatorDashboard{}
	if err := d.UnmarshalWithDecoder(bin.NewBorshDecoder(data[8:AccountSize])); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccountData, err)
	}
	return d, nil
}

// newValidatorDashboard returns a record with creation defaults for the given authority
func newValidatorDashboard(authority solanago.PublicKey, alertThreshold uint64) ValidatorDashboard {
	return ValidatorDashboard{
		Authority:      authority,
		AlertThreshold: alertThreshold,
	}
}

// Fingerprint returns an xxh3 digest of the encoded record, handy to tell whether an update changed anything
func (d ValidatorDashboard) Fingerprint() string {
	data, err := d.Encode()
	if err != nil {
		return ""
	}
	return fmt.Sprintf("xxh3:%x", xxh3.Hash(data))
}
