package snmp

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariableRoundTrip(t *testing.T) {
	vars := []Variable{
		{OID: MustParseOID("1.3.6.1.2.1.1.1.0"), Value: NewOctetString([]byte("mini-snmpd"))},
		{OID: MustParseOID("1.3.6.1.2.1.1.3.0"), Value: NewTimeTicks(12345)},
		{OID: MustParseOID("1.3.6.1.2.1.1.7.0"), Value: NewInteger(72)},
		{OID: MustParseOID("1.3.6.1.2.1.2.2.1.6.1"), Value: NewOctetString([]byte{0, 1, 2, 3, 4, 5})},
		{OID: MustParseOID("1.3.6.1.2.1.4.20.1.1.1"), Value: NewIPAddress(net.IPv4(192, 168, 1, 1))},
		{OID: MustParseOID("1.3.6.1.2.1.2.2.1.10.1"), Value: NewCounter32(4294967295)},
		{OID: MustParseOID("1.3.6.1.2.1.2.2.1.20.1"), Value: NewGauge32(100)},
		{OID: MustParseOID("1.3.6.1.2.1.1.99.0"), Value: NewNoSuchObject()},
		{OID: MustParseOID("1.3.6.1.2.1.1.99.1"), Value: NewEndOfMibView()},
	}

	encoded := encodeVariableBindings(vars)
	decoded, err := decodeVariableBindings(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, len(vars))

	for i, want := range vars {
		got := decoded[i]
		assert.True(t, want.OID.Equal(got.OID))
		assert.Equal(t, want.Value.Type, got.Value.Type)
		assert.Equal(t, want.Value.String(), got.Value.String())
	}
}

func TestPDURoundTripGet(t *testing.T) {
	pdu := NewGetRequest(7, MustParseOID("1.3.6.1.2.1.1.1.0"), MustParseOID("1.3.6.1.2.1.1.3.0"))
	encoded := pdu.Encode()

	got, err := DecodePDU(encoded)
	require.NoError(t, err)
	assert.Equal(t, PDUGetRequest, got.Type)
	assert.EqualValues(t, 7, got.RequestID)
	require.Len(t, got.Variables, 2)
	assert.True(t, got.Variables[0].OID.Equal(pdu.Variables[0].OID))
}

func TestPDURoundTripGetBulk(t *testing.T) {
	pdu := NewGetBulkRequest(42, 1, 5, MustParseOID("1.3.6.1.2.1.1.1.0"), MustParseOID("1.3.6.1.2.1.2.2.1.10.1"))
	encoded := pdu.Encode()

	got, err := DecodePDU(encoded)
	require.NoError(t, err)
	assert.Equal(t, PDUGetBulkRequest, got.Type)
	assert.Equal(t, 1, got.NonRepeaters)
	assert.Equal(t, 5, got.MaxRepetitions)
}

func TestMessageRoundTrip(t *testing.T) {
	pdu := NewGetRequest(1, MustParseOID("1.3.6.1.2.1.1.5.0"))
	msg := &Message{Version: Version2c, Community: "public", PDU: pdu}
	encoded := msg.Encode()

	got, err := DecodeMessage(encoded)
	require.NoError(t, err)
	assert.Equal(t, Version2c, got.Version)
	assert.Equal(t, "public", got.Community)
	assert.Equal(t, PDUGetRequest, got.PDU.Type)
}

func TestDecodeMessageRejectsUnsupportedVersion(t *testing.T) {
	pdu := NewGetRequest(1, MustParseOID("1.3.6.1.2.1.1.5.0"))
	msg := &Message{Version: SNMPVersion(3), Community: "public", PDU: pdu}
	encoded := msg.Encode()

	_, err := DecodeMessage(encoded)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestDecodePDURejectsResponseTag(t *testing.T) {
	pdu := &PDU{Type: PDUGetResponse, RequestID: 1}
	encoded := pdu.Encode()
	_, err := DecodePDU(encoded)
	assert.ErrorIs(t, err, ErrUnexpectedTag)
}
