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
	"errors"
	"io"
)

// BER encode/decode primitives. Decoding is deliberately strict: SNMP's
// wire format uses the Distinguished Encoding Rules subset of BER, which
// forbids indefinite lengths and requires every length and integer to be
// encoded in its minimal form. A lenient decoder accepting non-minimal
// encodings would let two different byte strings decode to the same
// value, breaking the "well-formed packet has exactly one parse" property
// the dispatcher relies on when validating requests.

// encodeLength encodes a BER length in its minimal short- or long-form.
func encodeLength(length int) []byte {
	if length < 128 {
		return []byte{byte(length)}
	}
	buf := make([]byte, 0, 4)
	temp := length
	for temp > 0 {
		buf = append([]byte{byte(temp & 0xff)}, buf...)
		temp >>= 8
	}
	return append([]byte{byte(0x80 | len(buf))}, buf...)
}

// decodeLength reads a BER length, rejecting the indefinite form (0x80)
// and any non-minimal long form: a leading zero byte, or a single length
// byte below 128 that the short form could have carried.
func decodeLength(r *bytes.Reader, offset int) (int, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, newDecodeError(offset, ErrTruncated)
	}
	if b < 128 {
		return int(b), nil
	}
	if b == 0x80 {
		return 0, newDecodeError(offset, ErrIndefiniteLength)
	}

	numBytes := int(b & 0x7f)
	if numBytes > 4 {
		return 0, newDecodeError(offset, ErrLengthTooLarge)
	}
	lenBytes := make([]byte, numBytes)
	if _, err := io.ReadFull(r, lenBytes); err != nil {
		return 0, newDecodeError(offset, ErrTruncated)
	}
	if lenBytes[0] == 0 || (numBytes == 1 && lenBytes[0] < 128) {
		return 0, newDecodeError(offset, ErrNonMinimalLength)
	}

	length := 0
	for _, lb := range lenBytes {
		length = (length << 8) | int(lb)
	}
	return length, nil
}

// encodeInteger encodes a signed integer in minimal two's-complement form.
func encodeInteger(value int64) []byte {
	if value == 0 {
		return []byte{0}
	}
	var buf []byte
	if value > 0 {
		temp := value
		for temp > 0 {
			buf = append([]byte{byte(temp & 0xff)}, buf...)
			temp >>= 8
		}
		if buf[0]&0x80 != 0 {
			buf = append([]byte{0}, buf...)
		}
	} else {
		temp := value
		for temp < -1 || (temp == -1 && len(buf) == 0) {
			buf = append([]byte{byte(temp & 0xff)}, buf...)
			temp >>= 8
		}
		if len(buf) > 0 && buf[0]&0x80 == 0 {
			buf = append([]byte{0xff}, buf...)
		}
	}
	return buf
}

// decodeInteger decodes a BER INTEGER, rejecting widths beyond int32 and
// non-minimal encodings (a leading 0x00 or 0xff byte that adds no
// information).
func decodeInteger(data []byte, offset int) (int32, error) {
	if len(data) == 0 {
		return 0, nil
	}
	if len(data) > 1 {
		if (data[0] == 0x00 && data[1]&0x80 == 0) || (data[0] == 0xff && data[1]&0x80 != 0) {
			return 0, newDecodeError(offset, ErrNonMinimalLength)
		}
	}
	if len(data) > 5 || (len(data) == 5 && data[0] != 0) {
		return 0, newDecodeError(offset, ErrIntegerOverflow)
	}

	var value int64
	if data[0]&0x80 != 0 {
		value = -1
	}
	for _, b := range data {
		value = (value << 8) | int64(b)
	}
	if value < -(1<<31) || value > (1<<31-1) {
		return 0, newDecodeError(offset, ErrIntegerOverflow)
	}
	return int32(value), nil
}

// encodeUnsignedInteger encodes a non-negative value in minimal form,
// inserting a leading zero byte when needed to keep the high bit clear.
func encodeUnsignedInteger(value uint64) []byte {
	if value == 0 {
		return []byte{0}
	}
	var buf []byte
	temp := value
	for temp > 0 {
		buf = append([]byte{byte(temp & 0xff)}, buf...)
		temp >>= 8
	}
	if buf[0]&0x80 != 0 {
		buf = append([]byte{0}, buf...)
	}
	return buf
}

// decodeUnsignedInteger decodes an unsigned BER integer of up to 9 bytes
// (the extra leading zero byte Counter64 may carry to stay non-negative).
func decodeUnsignedInteger(data []byte, offset int) (uint64, error) {
	if len(data) > 9 || (len(data) == 9 && data[0] != 0) {
		return 0, newDecodeError(offset, ErrIntegerOverflow)
	}
	if len(data) > 1 && data[0] == 0x00 && data[1]&0x80 == 0 {
		return 0, newDecodeError(offset, ErrNonMinimalLength)
	}
	var value uint64
	for _, b := range data {
		value = (value << 8) | uint64(b)
	}
	return value, nil
}

// encodeOID encodes an OID using the BER 40*a+b convention: the first two
// arcs form one sub-identifier, base-128 encoded like the rest.
func encodeOID(oid OID) []byte {
	if len(oid) < 2 {
		return nil
	}
	buf := encodeOIDComponent(oid[0]*40 + oid[1])
	for i := 2; i < len(oid); i++ {
		buf = append(buf, encodeOIDComponent(oid[i])...)
	}
	return buf
}

func encodeOIDComponent(value int) []byte {
	if value < 128 {
		return []byte{byte(value)}
	}
	var buf []byte
	temp := value
	for temp > 0 {
		buf = append([]byte{byte(temp & 0x7f)}, buf...)
		temp >>= 7
	}
	for i := 0; i < len(buf)-1; i++ {
		buf[i] |= 0x80
	}
	return buf
}

// decodeOID decodes a BER OID, enforcing MaxOIDLen (spec redesign: the
// length is checked at decode time rather than left to the caller).
func decodeOID(data []byte, offset int) (OID, error) {
	if len(data) == 0 {
		return nil, newDecodeError(offset, ErrEmptyOID)
	}
	var oid OID
	var current int
	for i := 0; i < len(data); i++ {
		current = (current << 7) | int(data[i]&0x7f)
		if data[i]&0x80 == 0 {
			switch {
			case len(oid) > 0:
				oid = append(oid, current)
			case current < 80:
				oid = append(oid, current/40, current%40)
			default:
				oid = append(oid, 2, current-80)
			}
			current = 0
			if len(oid) > MaxOIDLen {
				return nil, newDecodeError(offset, ErrOIDTooLong)
			}
		}
	}
	if data[len(data)-1]&0x80 != 0 {
		return nil, newDecodeError(offset, ErrTruncated)
	}
	return oid, nil
}

// encodeTLV wraps value in a tag/length/value triple.
func encodeTLV(berType BERType, value []byte) []byte {
	length := encodeLength(len(value))
	result := make([]byte, 1+len(length)+len(value))
	result[0] = byte(berType)
	copy(result[1:], length)
	copy(result[1+len(length):], value)
	return result
}

// decodeTLV reads one tag/length/value triple from r.
func decodeTLV(r *bytes.Reader) (BERType, []byte, error) {
	offset := tlvOffset(r)
	typeByte, err := r.ReadByte()
	if err != nil {
		return 0, nil, newDecodeError(offset, ErrTruncated)
	}
	berType := BERType(typeByte)

	length, err := decodeLength(r, offset)
	if err != nil {
		return 0, nil, err
	}
	if length > r.Len() {
		return 0, nil, newDecodeError(offset, ErrTruncated)
	}

	value := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, value); err != nil {
			return 0, nil, newDecodeError(offset, ErrTruncated)
		}
	}
	return berType, value, nil
}

// tlvOffset reports how many bytes of the original packet have already
// been consumed by r, for error reporting only.
func tlvOffset(r *bytes.Reader) int {
	return int(r.Size()) - r.Len()
}

// FrameLength inspects the header of a buffered TCP byte stream and
// reports the total size (tag + length header + body) of the next
// complete BER TLV. ok=false means buf doesn't yet contain a full length
// header — the caller should buffer more bytes and try again, not treat
// it as an error (spec.md §4.6 step 7: "test for a complete BER SEQUENCE
// by reading the outer tag-length and comparing buffered bytes to
// declared length"). A non-nil err means the header itself is malformed
// and the connection should be closed rather than kept waiting.
func FrameLength(buf []byte) (total int, ok bool, err error) {
	if len(buf) < 2 {
		return 0, false, nil
	}

	r := bytes.NewReader(buf[1:])
	length, lerr := decodeLength(r, 1)
	if lerr != nil {
		var de *DecodeError
		if errors.As(lerr, &de) && errors.Is(de.Err, ErrTruncated) {
			return 0, false, nil
		}
		return 0, false, lerr
	}

	headerLen := 1 + (len(buf) - 1 - r.Len())
	return headerLen + length, true, nil
}
