package verify

import (
	"fmt"
	"strings"
)

// Formatter renders verification results for display.
type Formatter struct{}

// NewFormatter creates a new formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

// FormatResult renders a result as a short human-readable block.
func (f *Formatter) FormatResult(r *Result) string {
	var sb strings.Builder

	if r.Valid {
		sb.WriteString("Signature: VALID\n")
	} else {
		sb.WriteString("Signature: INVALID\n")
		sb.WriteString(fmt.Sprintf("  Reason: %s\n", r.Reason))
	}
	sb.WriteString(fmt.Sprintf("  SHA-256: %s\n", r.DigestHex))
	sb.WriteString(fmt.Sprintf("  Signature length: %d bytes\n", r.SignatureLen))
	return sb.String()
}
