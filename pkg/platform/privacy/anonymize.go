// Package privacy reduces network origins and subject identifiers to values
// that no longer single out a person before they are written to the audit log.
package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/netip"
	"strings"
)

// AnonymizeIP keeps the /24 network of an IPv4 address and the /48 prefix of
// an IPv6 address. Ports are stripped. Empty input yields "unknown" and
// unparseable input yields "invalid".
func AnonymizeIP(origin string) string {
	origin = strings.TrimSpace(origin)
	if origin == "" || origin == "unknown" {
		return "unknown"
	}
	if ap, err := netip.ParseAddrPort(origin); err == nil {
		origin = ap.Addr().String()
	}

	addr, err := netip.ParseAddr(origin)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap()

	if addr.Is4() {
		b := addr.As4()
		return fmt.Sprintf("%d.%d.%d.0", b[0], b[1], b[2])
	}
	b := addr.As16()
	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::", b[0], b[1], b[2], b[3], b[4], b[5])
}

// SubjectDigest returns a short stable digest of a data-subject identifier for
// use in operational logs, where the raw identifier must not appear.
func SubjectDigest(subjectID string) string {
	sum := sha256.Sum256([]byte(subjectID))
	return hex.EncodeToString(sum[:6])
}
