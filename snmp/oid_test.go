package snmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOIDRoundTrip(t *testing.T) {
	cases := []string{
		"1.3.6.1.2.1.1.1.0",
		".1.3.6.1.2.1.1.1.0",
		"0.0",
		"1.3.6.1.2.1.2.2.1.10.1",
	}
	for _, s := range cases {
		t.Run(s, func(t *testing.T) {
			oid, err := ParseOID(s)
			require.NoError(t, err)
			want := s
			if want[0] == '.' {
				want = want[1:]
			}
			assert.Equal(t, want, oid.String())
		})
	}
}

func TestParseOIDRejectsInvalid(t *testing.T) {
	_, err := ParseOID("")
	assert.ErrorIs(t, err, ErrEmptyOID)

	_, err = ParseOID("1.-3.6")
	assert.ErrorIs(t, err, ErrInvalidOID)

	_, err = ParseOID("1.a.6")
	assert.ErrorIs(t, err, ErrInvalidOID)
}

func TestOIDTotalOrder(t *testing.T) {
	a := MustParseOID("1.3.6.1.2.1.1.1.0")
	b := MustParseOID("1.3.6.1.2.1.1.2.0")
	c := MustParseOID("1.3.6.1.2.1.1.1.0")

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(c))

	// A shorter OID that is a strict prefix of a longer one sorts first.
	short := MustParseOID("1.3.6.1.2.1.1")
	long := MustParseOID("1.3.6.1.2.1.1.1.0")
	assert.Equal(t, -1, short.Compare(long))
	assert.Equal(t, 1, long.Compare(short))
}

func TestOIDHasPrefix(t *testing.T) {
	oid := MustParseOID("1.3.6.1.2.1.2.2.1.10.1")
	prefix := MustParseOID("1.3.6.1.2.1.2.2.1.10")
	assert.True(t, oid.HasPrefix(prefix))
	assert.False(t, prefix.HasPrefix(oid))
	assert.True(t, oid.HasPrefix(oid))
}

func TestOIDEqual(t *testing.T) {
	a := MustParseOID("1.3.6.1")
	b := MustParseOID("1.3.6.1")
	c := MustParseOID("1.3.6.2")
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
