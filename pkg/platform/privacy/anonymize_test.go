package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"192.168.1.47", "192.168.1.0/24"},
		{"172.16.50.255", "172.16.50.0/24"},
		{"10.0.0.0", "10.0.0.0/24"},
		{"203.0.113.9:51234", "203.0.113.0/24"},
		{"::ffff:198.51.100.7", "198.51.100.0/24"},
		{"2001:db8:85a3::8a2e:370:7334", "2001:db8:85a3::/48"},
		{"2001:db8:85a3:0000:0000:8a2e:0370:7334", "2001:db8:85a3::/48"},
		{"[2001:db8:1:2::1]:443", "2001:db8:1::/48"},
		{"fe80::1%eth0", "fe80::/48"},
		{"::1", "::/48"},
		{"", "unknown"},
		{" unknown ", "unknown"},
		{"not-an-ip", "invalid"},
		{"192.168.1", "invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, AnonymizeIP(tt.in))
		})
	}
}

func TestAnonymizeIPGroupsByNetwork(t *testing.T) {
	for _, ip := range []string{"192.168.1.1", "192.168.1.100", "192.168.1.255"} {
		assert.Equal(t, AnonymizeIP("192.168.1.47"), AnonymizeIP(ip))
	}
	assert.NotEqual(t, AnonymizeIP("192.168.1.47"), AnonymizeIP("192.168.2.47"))
}

func TestFingerprint(t *testing.T) {
	jane := Fingerprint("Jane Doe")

	assert.Len(t, jane, 16)
	assert.Equal(t, jane, Fingerprint("JANE DOE"))
	assert.Equal(t, jane, Fingerprint("  jane \t doe "))
	assert.NotEqual(t, jane, Fingerprint("John Doe"))
	assert.Empty(t, Fingerprint("   "))
}

func TestMaskDocumentNumber(t *testing.T) {
	for in, want := range map[string]string{
		"AB123456":   "****3456",
		" X9876543 ": "****6543",
		"1234":       "****",
		"12":         "**",
		"":           "",
	} {
		assert.Equal(t, want, MaskDocumentNumber(in), in)
	}
}
