// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package snmp

import (
	"bytes"
	"io"
)

// PDU is a decoded SNMP protocol data unit. GetBulkRequest reuses the
// wire slots that every other PDU type spends on ErrorStatus/ErrorIndex
// to instead carry NonRepeaters/MaxRepetitions (RFC 1905 §4.2.3); both
// pairs are kept as separate fields here and Encode/decodePDU pick the
// right pair based on Type.
type PDU struct {
	Type        PDUType
	RequestID   int32
	ErrorStatus ErrorStatus
	ErrorIndex  int
	Variables   []Variable

	NonRepeaters   int
	MaxRepetitions int
}

// Encode serializes the PDU, including its outer PDU-type tag.
func (p *PDU) Encode() []byte {
	var buf bytes.Buffer
	buf.Write(encodeTLV(TypeInteger, encodeInteger(int64(p.RequestID))))

	if p.Type == PDUGetBulkRequest {
		buf.Write(encodeTLV(TypeInteger, encodeInteger(int64(p.NonRepeaters))))
		buf.Write(encodeTLV(TypeInteger, encodeInteger(int64(p.MaxRepetitions))))
	} else {
		buf.Write(encodeTLV(TypeInteger, encodeInteger(int64(p.ErrorStatus))))
		buf.Write(encodeTLV(TypeInteger, encodeInteger(int64(p.ErrorIndex))))
	}

	buf.Write(encodeVariableBindings(p.Variables))
	return encodeTLV(BERType(p.Type), buf.Bytes())
}

// DecodePDU decodes a single PDU, used by the dispatcher to parse
// inbound requests. Only the four request PDU types the agent accepts
// (GetRequest, GetNextRequest, GetBulkRequest, SetRequest) are valid;
// anything else (e.g. a GetResponse sent to us, or a trap tag) is
// rejected with ErrUnexpectedTag — the agent never decodes a response
// or a notification, it only ever produces them.
func DecodePDU(data []byte) (*PDU, error) {
	return decodePDU(bytes.NewReader(data))
}

func decodePDU(r *bytes.Reader) (*PDU, error) {
	offset := tlvOffset(r)
	pduType, pduData, err := decodeTLV(r)
	if err != nil {
		return nil, err
	}
	switch PDUType(pduType) {
	case PDUGetRequest, PDUGetNextRequest, PDUGetBulkRequest, PDUSetRequest:
	default:
		return nil, newDecodeError(offset, ErrUnexpectedTag)
	}

	pdu := &PDU{Type: PDUType(pduType)}
	pduReader := bytes.NewReader(pduData)

	ridOffset := tlvOffset(pduReader)
	_, requestIDData, err := decodeTLV(pduReader)
	if err != nil {
		return nil, err
	}
	rid, err := decodeInteger(requestIDData, ridOffset)
	if err != nil {
		return nil, err
	}
	pdu.RequestID = rid

	slotAOffset := tlvOffset(pduReader)
	_, slotAData, err := decodeTLV(pduReader)
	if err != nil {
		return nil, err
	}
	slotA, err := decodeInteger(slotAData, slotAOffset)
	if err != nil {
		return nil, err
	}

	slotBOffset := tlvOffset(pduReader)
	_, slotBData, err := decodeTLV(pduReader)
	if err != nil {
		return nil, err
	}
	slotB, err := decodeInteger(slotBData, slotBOffset)
	if err != nil {
		return nil, err
	}

	if pdu.Type == PDUGetBulkRequest {
		pdu.NonRepeaters = int(slotA)
		pdu.MaxRepetitions = int(slotB)
	} else {
		pdu.ErrorStatus = ErrorStatus(slotA)
		pdu.ErrorIndex = int(slotB)
	}

	remaining := make([]byte, pduReader.Len())
	if _, err := io.ReadFull(pduReader, remaining); err != nil {
		return nil, newDecodeError(tlvOffset(pduReader), ErrTruncated)
	}
	pdu.Variables, err = decodeVariableBindings(remaining)
	if err != nil {
		return nil, err
	}

	return pdu, nil
}

// Message is a complete SNMP v1/v2c datagram: version, community string
// and one PDU.
type Message struct {
	Version   SNMPVersion
	Community string
	PDU       *PDU
}

func (m *Message) Encode() []byte {
	var buf bytes.Buffer
	buf.Write(encodeTLV(TypeInteger, encodeInteger(int64(m.Version))))
	buf.Write(encodeTLV(TypeOctetString, []byte(m.Community)))
	buf.Write(m.PDU.Encode())
	return encodeTLV(TypeSequence, buf.Bytes())
}

// DecodeMessage decodes a full SNMP message as received on the wire.
func DecodeMessage(data []byte) (*Message, error) {
	r := bytes.NewReader(data)
	offset := tlvOffset(r)
	seqType, seqData, err := decodeTLV(r)
	if err != nil {
		return nil, err
	}
	if seqType != TypeSequence {
		return nil, newDecodeError(offset, ErrUnexpectedTag)
	}
	if r.Len() != 0 {
		return nil, newDecodeError(tlvOffset(r), ErrTruncated)
	}

	seqReader := bytes.NewReader(seqData)
	msg := &Message{}

	versionOffset := tlvOffset(seqReader)
	_, versionData, err := decodeTLV(seqReader)
	if err != nil {
		return nil, err
	}
	version, err := decodeInteger(versionData, versionOffset)
	if err != nil {
		return nil, err
	}
	msg.Version = SNMPVersion(version)
	if msg.Version != Version1 && msg.Version != Version2c {
		return nil, newDecodeError(versionOffset, ErrUnsupportedVersion)
	}

	commOffset := tlvOffset(seqReader)
	commType, communityData, err := decodeTLV(seqReader)
	if err != nil {
		return nil, err
	}
	if commType != TypeOctetString {
		return nil, newDecodeError(commOffset, ErrUnexpectedTag)
	}
	msg.Community = string(communityData)

	msg.PDU, err = decodePDU(seqReader)
	if err != nil {
		return nil, err
	}
	if seqReader.Len() != 0 {
		return nil, newDecodeError(tlvOffset(seqReader), ErrTruncated)
	}

	return msg, nil
}

// NewGetRequest builds a GetRequest PDU (used by tests driving the
// dispatcher directly, in the teacher's NewGetRequest idiom).
func NewGetRequest(requestID int32, oids ...OID) *PDU {
	return newOIDOnlyPDU(PDUGetRequest, requestID, oids)
}

func NewGetNextRequest(requestID int32, oids ...OID) *PDU {
	return newOIDOnlyPDU(PDUGetNextRequest, requestID, oids)
}

func NewGetBulkRequest(requestID int32, nonRepeaters, maxRepetitions int, oids ...OID) *PDU {
	pdu := newOIDOnlyPDU(PDUGetBulkRequest, requestID, oids)
	pdu.NonRepeaters = nonRepeaters
	pdu.MaxRepetitions = maxRepetitions
	return pdu
}

func NewSetRequest(requestID int32, variables ...Variable) *PDU {
	return &PDU{Type: PDUSetRequest, RequestID: requestID, Variables: variables}
}

func newOIDOnlyPDU(t PDUType, requestID int32, oids []OID) *PDU {
	variables := make([]Variable, len(oids))
	for i, oid := range oids {
		variables[i] = Variable{OID: oid, Value: NewNull()}
	}
	return &PDU{Type: t, RequestID: requestID, Variables: variables}
}
