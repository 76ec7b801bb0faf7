package atca

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
)

// SoftwareTransport emulates a secure element in process using
// crypto/ecdsa. It exists for development and tests; production builds
// use a hardware transport instead. Keys are generated at construction
// and, matching the hardware, never exposed.
type SoftwareTransport struct {
	mu   sync.Mutex
	keys map[KeyID]*ecdsa.PrivateKey
	info DeviceInfo
}

// NewSoftwareTransport creates an emulated chip with a fresh P-256 key
// in each of the given slots.
func NewSoftwareTransport(slots ...KeyID) (*SoftwareTransport, error) {
	tr := &SoftwareTransport{
		keys: make(map[KeyID]*ecdsa.PrivateKey, len(slots)),
		info: DeviceInfo{
			Serial:   "0123d0c0ffee5107ee",
			Revision: "0.0",
			Part:     "software",
		},
	}
	for _, slot := range slots {
		key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to generate key for %s: %w", slot, err)
		}
		tr.keys[slot] = key
	}
	return tr, nil
}

func (tr *SoftwareTransport) key(slot KeyID) (*ecdsa.PrivateKey, bool) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	key, ok := tr.keys[slot]
	return key, ok
}

// Sign signs a digest with the slot key and returns the raw R || S pair.
func (tr *SoftwareTransport) Sign(slot KeyID, digest []byte) ([]byte, error) {
	key, ok := tr.key(slot)
	if !ok {
		return nil, &StatusError{Op: "sign", Code: StatusExecError}
	}

	r, s, err := ecdsa.Sign(rand.Reader, key, digest)
	if err != nil {
		return nil, &StatusError{Op: "sign", Code: StatusECCFault}
	}

	raw := make([]byte, RawSigLen)
	r.FillBytes(raw[:RawSigLen/2])
	s.FillBytes(raw[RawSigLen/2:])
	return raw, nil
}

// Verify checks a raw signature over a digest against the slot key.
func (tr *SoftwareTransport) Verify(slot KeyID, raw, digest []byte) error {
	key, ok := tr.key(slot)
	if !ok {
		return &StatusError{Op: "verify", Code: StatusExecError}
	}

	r := new(big.Int).SetBytes(raw[:RawSigLen/2])
	s := new(big.Int).SetBytes(raw[RawSigLen/2:])
	if !ecdsa.Verify(&key.PublicKey, digest, r, s) {
		return ErrBadSignature
	}
	return nil
}

// PublicKey returns the slot's public key.
func (tr *SoftwareTransport) PublicKey(slot KeyID) (*ecdsa.PublicKey, error) {
	key, ok := tr.key(slot)
	if !ok {
		return nil, &StatusError{Op: "read public key", Code: StatusExecError}
	}
	return &key.PublicKey, nil
}

// HasKey reports whether a slot holds a key.
func (tr *SoftwareTransport) HasKey(slot KeyID) bool {
	_, ok := tr.key(slot)
	return ok
}

// Info returns the emulated chip identification.
func (tr *SoftwareTransport) Info() (*DeviceInfo, error) {
	info := tr.info
	return &info, nil
}

// Close discards the emulated keys.
func (tr *SoftwareTransport) Close() error {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.keys = nil
	return nil
}
