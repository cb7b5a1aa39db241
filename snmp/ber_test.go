package snmp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeLengthShortForm(t *testing.T) {
	for _, n := range []int{0, 1, 42, 127} {
		buf := encodeLength(n)
		assert.Len(t, buf, 1)
		got, err := decodeLength(bytes.NewReader(buf), 0)
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}
}

func TestEncodeDecodeLengthLongForm(t *testing.T) {
	for _, n := range []int{128, 255, 256, 65535, 100000} {
		buf := encodeLength(n)
		assert.Greater(t, buf[0], byte(0x80))
		got, err := decodeLength(bytes.NewReader(buf), 0)
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}
}

func TestDecodeLengthRejectsIndefinite(t *testing.T) {
	_, err := decodeLength(bytes.NewReader([]byte{0x80}), 0)
	assert.ErrorIs(t, err, ErrIndefiniteLength)
}

func TestDecodeLengthRejectsNonMinimal(t *testing.T) {
	// long form encoding a value that fits in one byte, with an explicit
	// leading zero byte -- not the minimal encoding.
	_, err := decodeLength(bytes.NewReader([]byte{0x82, 0x00, 0x01}), 0)
	assert.ErrorIs(t, err, ErrNonMinimalLength)
}

func TestEncodeDecodeIntegerRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 127, 128, -128, -129, 255, 256, 1 << 30, -(1 << 30)} {
		buf := encodeInteger(v)
		got, err := decodeInteger(buf, 0)
		require.NoError(t, err)
		assert.Equal(t, int32(v), got)
	}
}

func TestDecodeIntegerRejectsNonMinimal(t *testing.T) {
	// 0x00 0x7F would encode fine as a single byte 0x7F.
	_, err := decodeInteger([]byte{0x00, 0x7F}, 0)
	assert.ErrorIs(t, err, ErrNonMinimalLength)
}

func TestEncodeDecodeUnsignedIntegerRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 255, 256, 1 << 31, 1<<32 - 1} {
		buf := encodeUnsignedInteger(v)
		got, err := decodeUnsignedInteger(buf, 0)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestEncodeDecodeOIDRoundTrip(t *testing.T) {
	cases := []OID{
		{1, 3, 6, 1, 2, 1, 1, 1, 0},
		{0, 0},
		{2, 999, 3},
		{1, 3, 6, 1, 2, 1, 2, 2, 1, 10, 1},
	}
	for _, oid := range cases {
		buf := encodeOID(oid)
		got, err := decodeOID(buf, 0)
		require.NoError(t, err)
		assert.True(t, oid.Equal(got), "got %v want %v", got, oid)
	}
}

func TestDecodeOIDRejectsTooLong(t *testing.T) {
	oid := make(OID, MaxOIDLen+1)
	for i := range oid {
		oid[i] = 1
	}
	oid[0], oid[1] = 1, 3
	buf := encodeOID(oid)
	_, err := decodeOID(buf, 0)
	assert.ErrorIs(t, err, ErrOIDTooLong)
}

func TestEncodeDecodeTLVRoundTrip(t *testing.T) {
	tlv := encodeTLV(TypeOctetString, []byte("hello"))
	typ, val, err := decodeTLV(bytes.NewReader(tlv))
	require.NoError(t, err)
	assert.Equal(t, TypeOctetString, typ)
	assert.Equal(t, []byte("hello"), val)
}

func TestDecodeTLVTruncated(t *testing.T) {
	_, _, err := decodeTLV(bytes.NewReader([]byte{byte(TypeInteger), 0x05, 0x01}))
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestFrameLengthNeedsMoreBytes(t *testing.T) {
	_, ok, err := FrameLength([]byte{byte(TypeSequence)})
	require.NoError(t, err)
	assert.False(t, ok)

	// long-form length header itself still incomplete (0x82 says 2 more
	// length bytes follow; only one is buffered).
	_, ok, err = FrameLength([]byte{byte(TypeSequence), 0x82, 0x01})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFrameLengthCompleteShortForm(t *testing.T) {
	tlv := encodeTLV(TypeSequence, []byte("hello"))
	total, ok, err := FrameLength(tlv)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, len(tlv), total)
}

func TestFrameLengthCompleteLongForm(t *testing.T) {
	body := bytes.Repeat([]byte{0x01}, 300)
	tlv := encodeTLV(TypeSequence, body)
	total, ok, err := FrameLength(tlv[:4])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, len(tlv), total)
}

func TestFrameLengthRejectsMalformedHeader(t *testing.T) {
	_, _, err := FrameLength([]byte{byte(TypeSequence), 0x80, 0x00})
	assert.ErrorIs(t, err, ErrIndefiniteLength)
}
