package orm

import (
	"testing"

	"github.com/iov-one/custody/custodytest/assert"
)

func TestPrefixRange(t *testing.T) {
	cases := map[string]struct {
		prefix    []byte
		wantStart []byte
		wantEnd   []byte
	}{
		"nil prefix": {},
		"simple": {
			prefix:    []byte("vault:"),
			wantStart: []byte("vault:"),
			wantEnd:   []byte("vault;"),
		},
		"overflow": {
			prefix:    []byte{0x01, 0xff, 0xff},
			wantStart: []byte{0x01, 0xff, 0xff},
			wantEnd:   []byte{0x02, 0x00, 0x00},
		},
		"no end": {
			prefix:    []byte{0xff, 0xff},
			wantStart: []byte{0xff, 0xff},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			start, end := PrefixRange(tc.prefix)
			assert.Equal(t, tc.wantStart, start)
			assert.Equal(t, tc.wantEnd, end)
		})
	}
}
