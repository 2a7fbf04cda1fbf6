package reporting

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		error string
		want  string
	}{
		{
			name:  "connection reset by peer",
			error: `failed to send request: Get "https://challenges.qluv.io/items/cRF2dvDZQsmu37WGgK6MTcL7XjH": read tcp [dead:beef:feb1:d745::c001]:64079->[dead:beef::6811:112a]:443: read: connection reset by peer`,
			want:  `failed to send request: Get "https://challenges.qluv.io/items/<key>": read tcp <host>-><host>: read: connection reset by peer`,
		},
		{
			name:  "client timeout",
			error: `failed to send request: Get "https://challenges.qluv.io/items/deadbeef-8315-465d-9d44-cfc238c64f71": context deadline exceeded (Client.Timeout exceeded while awaiting headers)`,
			want:  `failed to send request: Get "https://challenges.qluv.io/items/<uuid>": context deadline exceeded (Client.Timeout exceeded while awaiting headers)`,
		},
		{
			name:  "key outside of url",
			error: `unexpected status code 500 for key`,
			want:  `unexpected status code 500 for key`,
		},
		{
			name:  "bare ipv6 host",
			error: `dial tcp [::1]:443: connect: connection refused`,
			want:  `dial tcp <host>: connect: connection refused`,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, c.want, sanitizeError(c.error))
		})
	}
}
