// Package strkey encodes and decodes the human-readable address form
// used on the target ledger: a version byte, a 32-byte payload and a
// CRC16 checksum, base32-encoded. Account addresses start with 'G',
// contract addresses with 'C'.
package strkey

import (
	"encoding/base32"
	"errors"
	"fmt"
)

// Version selects the address flavor carried in the leading byte.
type Version byte

const (
	// VersionAccount is an ed25519 account public key ('G...').
	VersionAccount Version = 6 << 3
	// VersionContract is a deployed contract identifier ('C...').
	VersionContract Version = 2 << 3
)

// PayloadLen is the raw payload size for every supported version.
const PayloadLen = 32

var (
	// ErrChecksum is returned when the trailing checksum does not match.
	ErrChecksum = errors.New("strkey checksum mismatch")
	// ErrLength is returned when the decoded data has the wrong size.
	ErrLength = errors.New("strkey has invalid length")
)

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// Encode produces the text form of a 32-byte payload under the given
// version byte.
func Encode(version Version, payload []byte) (string, error) {
	if len(payload) != PayloadLen {
		return "", fmt.Errorf("%w: payload is %d bytes, want %d", ErrLength, len(payload), PayloadLen)
	}
	switch version {
	case VersionAccount, VersionContract:
	default:
		return "", fmt.Errorf("unsupported strkey version 0x%02x", byte(version))
	}
	raw := make([]byte, 0, 1+PayloadLen+2)
	raw = append(raw, byte(version))
	raw = append(raw, payload...)
	sum := checksum(raw)
	raw = append(raw, byte(sum), byte(sum>>8))
	return b32.EncodeToString(raw), nil
}

// Decode parses s, requiring the given version. The returned slice is
// the 32-byte payload.
func Decode(version Version, s string) ([]byte, error) {
	gotVersion, payload, err := DecodeAny(s)
	if err != nil {
		return nil, err
	}
	if gotVersion != version {
		return nil, fmt.Errorf("strkey version 0x%02x, want 0x%02x", byte(gotVersion), byte(version))
	}
	return payload, nil
}

// DecodeAny parses s, accepting any supported version.
func DecodeAny(s string) (Version, []byte, error) {
	raw, err := b32.DecodeString(s)
	if err != nil {
		return 0, nil, fmt.Errorf("strkey base32: %w", err)
	}
	if len(raw) != 1+PayloadLen+2 {
		return 0, nil, fmt.Errorf("%w: %d bytes decoded", ErrLength, len(raw))
	}
	body := raw[:len(raw)-2]
	want := uint16(raw[len(raw)-2]) | uint16(raw[len(raw)-1])<<8
	if checksum(body) != want {
		return 0, nil, ErrChecksum
	}
	version := Version(raw[0])
	switch version {
	case VersionAccount, VersionContract:
	default:
		return 0, nil, fmt.Errorf("unsupported strkey version 0x%02x", raw[0])
	}
	return version, body[1:], nil
}

// IsValidAccount reports whether s is a well-formed account address.
func IsValidAccount(s string) bool {
	_, err := Decode(VersionAccount, s)
	return err == nil
}

// IsValidContract reports whether s is a well-formed contract address.
func IsValidContract(s string) bool {
	_, err := Decode(VersionContract, s)
	return err == nil
}

// checksum is CRC16-XMODEM (poly 0x1021, zero initial value), the
// polynomial the ledger's address format specifies.
func checksum(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
