package atca

import (
	"crypto/ecdsa"
	"fmt"
)

// RawSigLen is the length of a raw device signature: 32-byte R followed
// by 32-byte S.
const RawSigLen = 64

// DigestLen is the digest length the device signs and verifies.
const DigestLen = 32

// KeyToken is the holder of one key slot. A token is owned by exactly
// one caller, used serially, and released exactly once. A token does not
// survive its Device being closed.
type KeyToken struct {
	dev      *Device
	id       KeyID
	released bool
}

// ID returns the slot this token is bound to.
func (k *KeyToken) ID() KeyID {
	return k.id
}

// Sign asks the device to sign a 32-byte digest with the slot's private
// key. The result is the raw 64-byte R || S pair.
func (k *KeyToken) Sign(digest []byte) ([]byte, error) {
	if k.released {
		return nil, ErrReleased
	}
	if len(digest) != DigestLen {
		return nil, fmt.Errorf("atca: digest must be %d bytes, got %d", DigestLen, len(digest))
	}
	return k.dev.sign(k.id, digest)
}

// Verify asks the device to check a raw 64-byte signature over a
// 32-byte digest against the slot's public key. It returns nil on a
// match, ErrBadSignature on a mismatch, and a *StatusError on any
// operational fault.
func (k *KeyToken) Verify(raw, digest []byte) error {
	if k.released {
		return ErrReleased
	}
	if len(raw) != RawSigLen {
		return fmt.Errorf("atca: raw signature must be %d bytes, got %d", RawSigLen, len(raw))
	}
	if len(digest) != DigestLen {
		return fmt.Errorf("atca: digest must be %d bytes, got %d", DigestLen, len(digest))
	}
	return k.dev.verify(k.id, raw, digest)
}

// Public reads the slot's public key from the device.
func (k *KeyToken) Public() (*ecdsa.PublicKey, error) {
	if k.released {
		return nil, ErrReleased
	}
	return k.dev.publicKey(k.id)
}

// Release gives the token back. The token must not be used afterwards;
// a second Release returns ErrReleased.
func (k *KeyToken) Release() error {
	if k.released {
		return ErrReleased
	}
	k.released = true
	k.dev.log.Debug().Stringer("key", k.id).Msg("key token released")
	return nil
}
