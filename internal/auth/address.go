package auth

import (
	"fmt"
	"strings"

	"github.com/osse101/HarvestRealm_Go/internal/domain"
)

const addressHexLen = 40

// IsAddress reports whether s is 0x followed by 40 hex digits, in any case.
func IsAddress(s string) bool {
	if len(s) != 2+addressHexLen || (s[:2] != "0x" && s[:2] != "0X") {
		return false
	}
	for _, c := range s[2:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// NormalizeAddress validates s as an address and lowercases it.
func NormalizeAddress(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !IsAddress(s) {
		return "", fmt.Errorf("%w: %s", domain.ErrValidation, ErrMsgMalformedID)
	}
	return strings.ToLower(s), nil
}

// NormalizeWorldID sanitizes a world identifier taken from a URL. Empty and
// "default" map to fallback; anything else must be an address.
func NormalizeWorldID(raw, fallback string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, domain.DefaultWorldID) {
		return fallback, nil
	}
	return NormalizeAddress(raw)
}

// ShortAddress renders 0x1234…abcd for display names.
func ShortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
