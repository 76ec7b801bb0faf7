package atca

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/cryptoauthkit/atecc-client/sigcodec"
)

// Report is a device-issued statement binding a key slot to its public
// key. It is serialized as canonical CBOR and signed by the key it
// describes, so any holder of the public key can check the binding.
type Report struct {
	ReportID  string    `cbor:"report_id"`
	Serial    string    `cbor:"serial"`
	Slot      uint16    `cbor:"slot"`
	PublicKey []byte    `cbor:"public_key"` // uncompressed: 0x04 || X || Y
	IssuedAt  time.Time `cbor:"issued_at"`
}

// Attest builds and signs an attestation report for a key slot. It
// returns the canonical CBOR report bytes and a DER signature over
// their SHA-256 digest.
func (d *Device) Attest(id KeyID) (report, sig []byte, err error) {
	token, err := d.KeyToken(id)
	if err != nil {
		return nil, nil, err
	}
	defer token.Release()

	pub, err := token.Public()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read public key: %w", err)
	}

	info, err := d.Info()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read device info: %w", err)
	}

	uncompressed := make([]byte, 65)
	uncompressed[0] = 0x04
	pub.X.FillBytes(uncompressed[1:33])
	pub.Y.FillBytes(uncompressed[33:])

	enc, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build CBOR encoder: %w", err)
	}
	report, err = enc.Marshal(Report{
		ReportID:  uuid.NewString(),
		Serial:    info.Serial,
		Slot:      uint16(id),
		PublicKey: uncompressed,
		IssuedAt:  time.Now().UTC().Truncate(time.Second),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode report: %w", err)
	}

	digest := sha256.Sum256(report)
	raw, err := token.Sign(digest[:])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sign report: %w", err)
	}

	sig, err = sigcodec.P256().Marshal(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode report signature: %w", err)
	}
	return report, sig, nil
}

// DecodeReport parses the CBOR report bytes produced by Attest.
func DecodeReport(data []byte) (*Report, error) {
	var r Report
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &r, nil
}
