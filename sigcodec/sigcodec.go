// Package sigcodec converts ECDSA signatures between the fixed-width raw
// representation used by secure-element hardware and the ASN.1 DER
// interchange encoding.
//
// # Formats
//
// The raw representation is the concatenation R || S, where R and S are
// big-endian unsigned integers padded to the curve field size (32 bytes
// each for P-256, 64 bytes total).
//
// The interchange representation is the standard DER structure used by
// TLS, X.509 and friends:
//
//	SEQUENCE {
//		INTEGER r,
//		INTEGER s
//	}
//
// # Why hand-rolled
//
// Signature parsing sits on an attacker-reachable boundary, and the
// callers need to distinguish exactly why a decode failed (truncated
// outer length vs. oversized integer vs. trailing garbage). encoding/asn1
// collapses those cases into a single structural error, so the
// tag-length-value handling is implemented here directly with exhaustive
// bounds checks.
//
// # Usage
//
//	codec := sigcodec.P256()
//	der, err := codec.Marshal(raw)       // raw -> DER
//	raw, err := codec.Unmarshal(der)     // DER -> raw
package sigcodec

import (
	"errors"
	"fmt"
)

// Decode and encode failure kinds. Unmarshal never returns a partially
// decoded signature together with one of these.
var (
	// ErrBufferTooSmall is returned by MarshalTo when the destination
	// cannot hold the encoded signature.
	ErrBufferTooSmall = errors.New("sigcodec: output buffer too small")

	// ErrLengthMismatch is returned when the outer sequence length does
	// not exactly span the rest of the input.
	ErrLengthMismatch = errors.New("sigcodec: sequence length does not match input")

	// ErrMalformedField is returned on a missing or invalid tag, an
	// invalid length octet, or a field truncated by the end of input.
	ErrMalformedField = errors.New("sigcodec: malformed integer field")

	// ErrFieldTooLarge is returned when an integer's magnitude does not
	// fit the fixed field size.
	ErrFieldTooLarge = errors.New("sigcodec: integer exceeds field size")

	// ErrTrailingData is returned when bytes remain after both integers.
	ErrTrailingData = errors.New("sigcodec: trailing bytes after signature")
)

const (
	tagInteger  = 0x02
	tagSequence = 0x30 // constructed | sequence
)

// Codec encodes and decodes signatures for one fixed field size.
// The zero value is not usable; construct with P256.
type Codec struct {
	// FieldSize is the width in bytes of each of R and S in the raw
	// representation (the byte length of the curve order).
	FieldSize int
}

// P256 returns a Codec for the NIST P-256 curve (32-byte fields).
func P256() Codec {
	return Codec{FieldSize: 32}
}

// RawLen returns the exact length of a raw signature: R and S halves.
func (c Codec) RawLen() int {
	return 2 * c.FieldSize
}

// MaxEncodedLen returns the worst-case DER length: each integer carries
// tag and length octets plus an optional sign byte on top of the field,
// and the sequence adds its own tag and length octets.
func (c Codec) MaxEncodedLen() int {
	return 2*(c.FieldSize+3) + 2
}

// Marshal encodes a raw R || S signature as DER. The encoding is
// deterministic and minimal: leading zero bytes are stripped from each
// half and a single zero byte is reinserted only when the top bit of the
// minimal encoding is set.
func (c Codec) Marshal(raw []byte) ([]byte, error) {
	dst := make([]byte, c.MaxEncodedLen())
	n, err := c.MarshalTo(dst, raw)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

// MarshalTo encodes like Marshal into dst and returns the number of
// bytes written. It returns ErrBufferTooSmall when dst cannot hold the
// encoding.
func (c Codec) MarshalTo(dst, raw []byte) (int, error) {
	if len(raw) != c.RawLen() {
		return 0, fmt.Errorf("sigcodec: raw signature must be %d bytes, got %d", c.RawLen(), len(raw))
	}

	r := minimalInt(raw[:c.FieldSize])
	s := minimalInt(raw[c.FieldSize:])

	body := 2 + len(r) + 2 + len(s)
	total := 2 + body
	if len(dst) < total {
		return 0, ErrBufferTooSmall
	}

	dst[0] = tagSequence
	dst[1] = byte(body)
	off := 2
	off += putInt(dst[off:], r)
	off += putInt(dst[off:], s)
	return off, nil
}

// Unmarshal decodes a DER signature into the raw R || S representation,
// zero-padding each half on the left to the field size. On any failure
// the returned slice is nil and the error identifies the first violation
// found.
func (c Codec) Unmarshal(der []byte) ([]byte, error) {
	if len(der) < 2 || der[0] != tagSequence {
		return nil, ErrMalformedField
	}
	body := int(der[1])
	if body >= 0x80 {
		// The sequence body can never reach 128 bytes for a single
		// curve, so a long-form or indefinite length octet is not a
		// valid DER encoding of a signature.
		return nil, ErrMalformedField
	}
	rest := der[2:]
	if body != len(rest) {
		return nil, ErrLengthMismatch
	}

	raw := make([]byte, c.RawLen())
	n, err := c.readInt(rest, raw[:c.FieldSize])
	if err != nil {
		return nil, err
	}
	rest = rest[n:]
	n, err = c.readInt(rest, raw[c.FieldSize:])
	if err != nil {
		return nil, err
	}
	rest = rest[n:]

	if len(rest) != 0 {
		return nil, ErrTrailingData
	}
	return raw, nil
}

// readInt parses one DER INTEGER from the front of in and writes its
// magnitude right-aligned into out. It returns the number of input bytes
// consumed.
func (c Codec) readInt(in, out []byte) (int, error) {
	if len(in) < 2 || in[0] != tagInteger {
		return 0, ErrMalformedField
	}
	n := int(in[1])
	if n == 0 || n >= 0x80 {
		return 0, ErrMalformedField
	}
	if len(in) < 2+n {
		return 0, ErrMalformedField
	}

	val := in[2 : 2+n]
	// Drop leading zero bytes (at most the sign-safety byte in a
	// canonical encoding) before the width check, so that a 33-byte
	// encoding of a 32-byte value still fits the field.
	for len(val) > 1 && val[0] == 0x00 {
		val = val[1:]
	}
	if len(val) > len(out) {
		return 0, ErrFieldTooLarge
	}

	copy(out[len(out)-len(val):], val)
	return 2 + n, nil
}

// minimalInt strips leading zero bytes from a fixed-width unsigned value
// and prepends the sign-safety zero byte when the top bit of the result
// is set. Zero encodes as a single zero byte.
func minimalInt(field []byte) []byte {
	i := 0
	for i < len(field)-1 && field[i] == 0x00 {
		i++
	}
	val := field[i:]
	if val[0]&0x80 != 0 {
		padded := make([]byte, 1+len(val))
		copy(padded[1:], val)
		return padded
	}
	return val
}

// putInt writes one DER INTEGER and returns the number of bytes written.
// The caller has already sized dst.
func putInt(dst, val []byte) int {
	dst[0] = tagInteger
	dst[1] = byte(len(val))
	copy(dst[2:], val)
	return 2 + len(val)
}
