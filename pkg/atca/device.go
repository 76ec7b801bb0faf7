package atca

import (
	"crypto/ecdsa"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

var (
	// ErrKeyNotFound is returned when a key identifier does not resolve
	// to a provisioned slot on the device.
	ErrKeyNotFound = errors.New("atca: key not found")

	// ErrBadSignature is returned by KeyToken.Verify when the device
	// reports a signature mismatch, as opposed to an operational fault.
	ErrBadSignature = errors.New("atca: signature verification failed")

	// ErrReleased is returned when a KeyToken is used after Release.
	ErrReleased = errors.New("atca: key token released")

	// ErrClosed is returned when the device has been closed.
	ErrClosed = errors.New("atca: device closed")
)

// Transport is the low-level chip communication contract. Digest inputs
// are 32 bytes; raw signatures are 64 bytes (R || S). Implementations
// report chip failures as *StatusError.
type Transport interface {
	Sign(slot KeyID, digest []byte) ([]byte, error)
	Verify(slot KeyID, raw, digest []byte) error
	PublicKey(slot KeyID) (*ecdsa.PublicKey, error)
	HasKey(slot KeyID) bool
	Info() (*DeviceInfo, error)
	Close() error
}

// Device is a handle to one secure element. A Device serializes all
// transport access internally: the chip processes one command at a time.
type Device struct {
	mu     sync.Mutex
	tr     Transport
	log    zerolog.Logger
	closed bool
}

// Open wraps a transport in a Device. The logger is tagged with the
// component name; pass zerolog.Nop() to discard.
func Open(tr Transport, logger zerolog.Logger) (*Device, error) {
	if tr == nil {
		return nil, errors.New("atca: nil transport")
	}
	d := &Device{
		tr:  tr,
		log: logger.With().Str("component", "atca").Logger(),
	}

	info, err := tr.Info()
	if err != nil {
		return nil, err
	}
	d.log.Debug().Str("serial", info.Serial).Str("part", info.Part).Msg("device opened")
	return d, nil
}

// Info returns the chip identification data.
func (d *Device) Info() (*DeviceInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	return d.tr.Info()
}

// KeyToken resolves a key identifier to a token bound to this device.
// The caller owns the token and must call Release exactly once when done.
func (d *Device) KeyToken(id KeyID) (*KeyToken, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	if !d.tr.HasKey(id) {
		return nil, ErrKeyNotFound
	}
	d.log.Debug().Stringer("key", id).Msg("key token issued")
	return &KeyToken{dev: d, id: id}, nil
}

// Close shuts down the transport. Outstanding key tokens become unusable.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.closed = true
	d.log.Debug().Msg("device closed")
	return d.tr.Close()
}

// sign runs one sign transaction under the device lock.
func (d *Device) sign(id KeyID, digest []byte) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	return d.tr.Sign(id, digest)
}

// verify runs one verify transaction under the device lock.
func (d *Device) verify(id KeyID, raw, digest []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	return d.tr.Verify(id, raw, digest)
}

func (d *Device) publicKey(id KeyID) (*ecdsa.PublicKey, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	return d.tr.PublicKey(id)
}
