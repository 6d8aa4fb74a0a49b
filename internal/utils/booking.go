package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewBookingCode returns an opaque ticket code such as "TKT-1F0C9A2B7D3E".
// It is the first twelve hex digits of a random UUID, upper-cased.
func NewBookingCode() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "TKT-" + strings.ToUpper(hex[:12])
}
