package credx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	enc := Encode("carol", "s3cret")
	user, pass, err := Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, "carol", user)
	assert.Equal(t, "s3cret", pass)
}

func TestDecode_SplitsOnFirstColonOnly(t *testing.T) {
	enc := Encode("carol", "pa:ss:word")
	user, pass, err := Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, "carol", user)
	assert.Equal(t, "pa:ss:word", pass)
}

func TestDecode_Malformed(t *testing.T) {
	_, _, err := Decode("%%%not-base64%%%")
	assert.ErrorIs(t, err, ErrMalformed)

	// valid base64 but no separator
	_, _, err = Decode("bm9zZXBhcmF0b3I=")
	assert.ErrorIs(t, err, ErrMalformed)
}
