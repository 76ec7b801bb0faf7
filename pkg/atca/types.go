// Package atca provides access to ATECC-class secure elements for
// ECDSA P-256 operations over protected key slots.
//
// # Model
//
// A Device represents one physical (or software-emulated) chip. Key
// material never leaves the chip; callers resolve a slot to a KeyToken
// and ask it to sign or verify 32-byte digests. Signatures cross this
// boundary in the chip's raw form: R || S, 64 bytes.
//
// The actual wire communication is behind the Transport interface so
// the same Device logic serves an I2C-attached chip and the in-process
// software transport used for development and tests.
package atca

import "fmt"

// KeyID identifies a key slot on the device.
type KeyID uint16

func (id KeyID) String() string {
	return fmt.Sprintf("slot %d", id)
}

// Status is a device-reported status code.
type Status uint8

// Device status codes, as reported in the response packet.
const (
	StatusOK         Status = 0x00
	StatusVerifyMiss Status = 0x01
	StatusParseError Status = 0x03
	StatusECCFault   Status = 0x05
	StatusExecError  Status = 0x0f
	StatusWatchdog   Status = 0xee
	StatusCommsError Status = 0xff
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusVerifyMiss:
		return "verify miss"
	case StatusParseError:
		return "parse error"
	case StatusECCFault:
		return "ecc fault"
	case StatusExecError:
		return "execution error"
	case StatusWatchdog:
		return "watchdog about to expire"
	case StatusCommsError:
		return "communication error"
	default:
		return fmt.Sprintf("status 0x%02x", uint8(s))
	}
}

// StatusError reports a non-success status from the device. The code is
// preserved so callers can log it, but is otherwise opaque: any
// StatusError means the operation failed.
type StatusError struct {
	Op   string
	Code Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("atca: %s failed: %s", e.Op, e.Code)
}

// DeviceInfo describes the chip behind a Device.
type DeviceInfo struct {
	Serial   string // chip serial number, hex
	Revision string // silicon revision
	Part     string // part number, e.g. ATECC608B
}
