// Package pk is the generic public-key dispatch layer. A pk.Key is a
// capability object: callers ask it to sign or verify digests without
// knowing whether the private material lives in process memory or in a
// secure element. Concrete variants are chosen at construction time and
// installed into a Context exactly once.
package pk

import (
	"crypto"
	"errors"
	"io"
)

var (
	// ErrNilContext is returned when a nil context is passed to a
	// binding function.
	ErrNilContext = errors.New("pk: nil context")

	// ErrNotBound is returned when a context is used before a key has
	// been installed.
	ErrNotBound = errors.New("pk: no key bound to context")

	// ErrAlreadyBound is returned on an attempt to install a second key
	// into a context. A context binding is immutable once made.
	ErrAlreadyBound = errors.New("pk: context already bound")

	// ErrUnsupportedAlgorithm is returned by keys asked to operate with
	// a hash or algorithm they do not implement.
	ErrUnsupportedAlgorithm = errors.New("pk: unsupported algorithm")

	// ErrVerifyFailed is returned by VerifyDigest when a well-formed
	// signature does not match the digest.
	ErrVerifyFailed = errors.New("pk: signature verification failed")
)

// Algorithm tags the key families the dispatch layer knows about.
type Algorithm int

const (
	AlgorithmNone Algorithm = iota
	AlgorithmRSA
	AlgorithmECKey
	AlgorithmECDSA
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmRSA:
		return "RSA"
	case AlgorithmECKey:
		return "EC"
	case AlgorithmECDSA:
		return "ECDSA"
	default:
		return "NONE"
	}
}

// Key is the capability contract every key variant implements.
//
// SignDigest signs an already-hashed message and returns the signature
// in the DER interchange encoding. The rand argument is part of the
// uniform contract; hardware-backed variants ignore it. VerifyDigest
// checks a DER signature the same way. Close releases whatever the
// variant holds; a Key must not be used after Close.
type Key interface {
	CanDo(alg Algorithm) bool
	SignDigest(rand io.Reader, hash crypto.Hash, digest []byte) ([]byte, error)
	VerifyDigest(hash crypto.Hash, digest, sig []byte) error
	Close() error
}

// Context holds one bound key. The binding is made once, at setup, and
// never replaced; this mirrors how dispatch tables for other key types
// are installed.
type Context struct {
	key Key
}

// Install binds a key to the context. It fails with ErrAlreadyBound if
// a key is already installed.
func (c *Context) Install(key Key) error {
	if c.key != nil {
		return ErrAlreadyBound
	}
	c.key = key
	return nil
}

// Key returns the bound key, or nil before Install.
func (c *Context) Key() Key {
	return c.key
}

// CanDo reports whether the bound key supports an algorithm family.
// An unbound context can do nothing.
func (c *Context) CanDo(alg Algorithm) bool {
	return c.key != nil && c.key.CanDo(alg)
}

// SignDigest dispatches to the bound key.
func (c *Context) SignDigest(rand io.Reader, hash crypto.Hash, digest []byte) ([]byte, error) {
	if c.key == nil {
		return nil, ErrNotBound
	}
	return c.key.SignDigest(rand, hash, digest)
}

// VerifyDigest dispatches to the bound key.
func (c *Context) VerifyDigest(hash crypto.Hash, digest, sig []byte) error {
	if c.key == nil {
		return ErrNotBound
	}
	return c.key.VerifyDigest(hash, digest, sig)
}

// Close releases the bound key, if any, and unbinds it.
func (c *Context) Close() error {
	if c.key == nil {
		return nil
	}
	key := c.key
	c.key = nil
	return key.Close()
}
