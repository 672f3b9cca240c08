// Package privacy keeps personal data (client IPs, names, document numbers)
// out of logs, traces, cache keys and audit records.
package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/netip"
	"strings"

	strutil "kycgate/pkg/string"
)

// Prefix lengths kept by AnonymizeIP.
const (
	ipv4Prefix = 24
	ipv6Prefix = 48
)

// AnonymizeIP reduces an address to its network in CIDR form:
// "192.168.1.47" becomes "192.168.1.0/24" and IPv6 keeps the /48. A trailing
// port is ignored. Empty input yields "unknown", anything unparseable "invalid".
func AnonymizeIP(ip string) string {
	ip = strings.TrimSpace(ip)
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap().WithZone("")

	bits := ipv6Prefix
	if addr.Is4() {
		bits = ipv4Prefix
	}
	return netip.PrefixFrom(addr, bits).Masked().String()
}

// Fingerprint is a short stable hash of a personal value, for correlating
// records without disclosing it. Case and whitespace runs are folded, so
// "Jane  DOE" and "jane doe" collide. Blank input yields "".
func Fingerprint(value string) string {
	normalized := strings.ToLower(strutil.CollapseSpaces(value))
	if normalized == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:8])
}

// MaskDocumentNumber keeps the last four characters of a document number.
func MaskDocumentNumber(number string) string {
	n := strings.TrimSpace(number)
	if len(n) <= 4 {
		return strings.Repeat("*", len(n))
	}
	return strings.Repeat("*", len(n)-4) + n[len(n)-4:]
}
