package dashboard

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	bin "github.com/gagliardetto/binary"
	solanago "github.com/gagliardetto/solana-go"
)

// programDataLogPrefix is how anchor emits events into the transaction log
const programDataLogPrefix = "Program data: "

// AlertTriggeredDiscriminator is sha256("event:AlertTriggered")[:8]
var AlertTriggeredDiscriminator = [8]byte{53, 35, 91, 122, 2, 60, 83, 248}

// AlertTriggered is emitted when a submitted uptime is below the dashboard alert threshold
type AlertTriggered struct {
	Validator solanago.PublicKey `json:"validator"`
	Uptime    uint64             `json:"uptime"`
	Threshold uint64             `json:"threshold"`
}

// Encode returns the discriminator-prefixed borsh encoding of the event
func (e AlertTriggered) Encode() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 8+32+8+8))
	buf.Write(AlertTriggeredDiscriminator[:])
	encoder := bin.NewBorshEncoder(buf)
	if err := encoder.WriteBytes(e.Validator[:], false); err != nil {
		return nil, err
	}
	if err := encoder.WriteUint64(e.Uptime, bin.LE); err != nil {
		return nil, err
	}
	if err := encoder.WriteUint64(e.Threshold, bin.LE); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LogLine renders the event as the runtime would log it
func (e AlertTriggered) LogLine() (string, error) {
	data, err := e.Encode()
	if err != nil {
		return "", err
	}
	return programDataLogPrefix + base64.StdEncoding.EncodeToString(data), nil
}

// DecodeAlertTriggered decodes discriminator-prefixed event bytes
func DecodeAlertTriggered(data []byte) (*AlertTriggered, error) {
	if len(data) < 8+32+8+8 {
		return nil, fmt.Errorf("event data too short: %d bytes", len(data))
	}
	if !bytes.Equal(data[:8], AlertTriggeredDiscriminator[:]) {
		return nil, fmt.Errorf("unknown event discriminator: %x", data[:8])
	}

	decoder := bin.NewBorshDecoder(data[8:])
	validator, err := decoder.ReadNBytes(solanago.PublicKeyLength)
	if err != nil {
		return nil, fmt.Errorf("failed to read validator: %w", err)
	}
	event := &AlertTriggered{Validator: solanago.PublicKeyFromBytes(validator)}
	if event.Uptime, err = decoder.ReadUint64(bin.LE); err != nil {
		return nil, fmt.Errorf("failed to read uptime: %w", err)
	}
	if event.Threshold, err = decoder.ReadUint64(bin.LE); err != nil {
		return nil, fmt.Errorf("failed to read threshold: %w", err)
	}
	return event, nil
}

// ParseAlertEvents extracts every AlertTriggered event from transaction log messages. Program data lines
// that are not AlertTriggered events are skipped
func ParseAlertEvents(logs []string) []AlertTriggered {
	var events []AlertTriggered
	for _, line := range logs {
		payload, ok := strings.CutPrefix(line, programDataLogPrefix)
		if !ok {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
		if err != nil {
			continue
		}
		if len(data) < 8 || !bytes.Equal(data[:8], AlertTriggeredDiscriminator[:]) {
			continue
		}
		event, err := DecodeAlertTriggered(data)
		if err != nil {
			continue
		}
		events = append(events, *event)
	}
	return events
}
