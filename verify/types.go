// Package verify checks detached DER signatures over arbitrary
// messages using a bound public-key capability, and renders the outcome
// for display.
//
// A failed check and a failed operation are different things: Verify
// returns a Result with Valid=false when the signature is well-formed
// but wrong, or cannot be decoded at all, and an error only when the
// underlying key operation itself failed.
package verify

// Request carries one message and its detached signature.
type Request struct {
	Message   []byte
	Signature []byte // DER: SEQUENCE { INTEGER r, INTEGER s }
}

// Result is the outcome of one verification.
type Result struct {
	Valid        bool   `json:"valid"`
	Reason       string `json:"reason,omitempty"` // set when Valid is false
	DigestHex    string `json:"digest"`
	SignatureLen int    `json:"signatureLen"`
}
