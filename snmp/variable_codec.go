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
	"net"
)

// encodeValue encodes the typed value portion of a variable binding.
func encodeValue(v Value) []byte {
	switch v.Type {
	case TypeNull, TypeNoSuchObject, TypeNoSuchInstance, TypeEndOfMibView:
		return encodeTLV(v.Type, nil)
	case TypeInteger:
		return encodeTLV(TypeInteger, encodeInteger(int64(v.Int)))
	case TypeOctetString:
		return encodeTLV(TypeOctetString, v.Str)
	case TypeObjectIdentifier:
		return encodeTLV(TypeObjectIdentifier, encodeOID(v.Oid))
	case TypeIPAddress:
		ip4 := v.IP.To4()
		if ip4 == nil {
			ip4 = make(net.IP, 4)
		}
		return encodeTLV(TypeIPAddress, ip4)
	case TypeCounter32, TypeGauge32, TypeTimeTicks:
		return encodeTLV(v.Type, encodeUnsignedInteger(uint64(v.Uint)))
	case TypeCounter64:
		return encodeTLV(TypeCounter64, encodeUnsignedInteger(v.Counter64))
	default:
		// Unreachable for values constructed through the New* helpers;
		// the sum type is closed, so any other tag is a programming error.
		panic("snmp: unsupported value type in encode")
	}
}

// decodeValue decodes the typed value portion of a variable binding.
func decodeValue(valType BERType, data []byte, offset int) (Value, error) {
	switch valType {
	case TypeNull:
		return NewNull(), nil
	case TypeNoSuchObject:
		return NewNoSuchObject(), nil
	case TypeNoSuchInstance:
		return NewNoSuchInstance(), nil
	case TypeEndOfMibView:
		return NewEndOfMibView(), nil
	case TypeInteger:
		n, err := decodeInteger(data, offset)
		if err != nil {
			return Value{}, err
		}
		return NewInteger(n), nil
	case TypeOctetString:
		return NewOctetString(append([]byte(nil), data...)), nil
	case TypeObjectIdentifier:
		oid, err := decodeOID(data, offset)
		if err != nil {
			return Value{}, err
		}
		return NewOid(oid), nil
	case TypeIPAddress:
		if len(data) != 4 {
			return Value{}, newDecodeError(offset, ErrUnexpectedTag)
		}
		return NewIPAddress(net.IP(append([]byte(nil), data...))), nil
	case TypeCounter32:
		n, err := decodeUnsignedInteger(data, offset)
		if err != nil {
			return Value{}, err
		}
		return NewCounter32(uint32(n)), nil
	case TypeGauge32:
		n, err := decodeUnsignedInteger(data, offset)
		if err != nil {
			return Value{}, err
		}
		return NewGauge32(uint32(n)), nil
	case TypeTimeTicks:
		n, err := decodeUnsignedInteger(data, offset)
		if err != nil {
			return Value{}, err
		}
		return NewTimeTicks(uint32(n)), nil
	case TypeCounter64:
		n, err := decodeUnsignedInteger(data, offset)
		if err != nil {
			return Value{}, err
		}
		return NewCounter64(n), nil
	default:
		return Value{}, newDecodeError(offset, ErrUnexpectedTag)
	}
}

// encodeVariable encodes one OID/value binding as a SEQUENCE.
func encodeVariable(v Variable) []byte {
	var buf bytes.Buffer
	buf.Write(encodeTLV(TypeObjectIdentifier, encodeOID(v.OID)))
	buf.Write(encodeValue(v.Value))
	return encodeTLV(TypeSequence, buf.Bytes())
}

// decodeVariable decodes one OID/value binding SEQUENCE.
func decodeVariable(r *bytes.Reader) (Variable, error) {
	offset := tlvOffset(r)
	seqType, seqData, err := decodeTLV(r)
	if err != nil {
		return Variable{}, err
	}
	if seqType != TypeSequence {
		return Variable{}, newDecodeError(offset, ErrUnexpectedTag)
	}

	seqReader := bytes.NewReader(seqData)
	oidOffset := tlvOffset(seqReader)
	oidType, oidData, err := decodeTLV(seqReader)
	if err != nil {
		return Variable{}, err
	}
	if oidType != TypeObjectIdentifier {
		return Variable{}, newDecodeError(oidOffset, ErrUnexpectedTag)
	}
	oid, err := decodeOID(oidData, oidOffset)
	if err != nil {
		return Variable{}, err
	}

	valOffset := tlvOffset(seqReader)
	valType, valData, err := decodeTLV(seqReader)
	if err != nil {
		return Variable{}, err
	}
	val, err := decodeValue(valType, valData, valOffset)
	if err != nil {
		return Variable{}, err
	}

	return Variable{OID: oid, Value: val}, nil
}

// encodeVariableBindings encodes the full varbind list of a PDU.
func encodeVariableBindings(variables []Variable) []byte {
	var buf bytes.Buffer
	for _, v := range variables {
		buf.Write(encodeVariable(v))
	}
	return encodeTLV(TypeSequence, buf.Bytes())
}

// decodeVariableBindings decodes the full varbind list of a PDU.
func decodeVariableBindings(data []byte) ([]Variable, error) {
	r := bytes.NewReader(data)
	offset := tlvOffset(r)
	seqType, seqData, err := decodeTLV(r)
	if err != nil {
		return nil, err
	}
	if seqType != TypeSequence {
		return nil, newDecodeError(offset, ErrUnexpectedTag)
	}

	var variables []Variable
	seqReader := bytes.NewReader(seqData)
	for seqReader.Len() > 0 {
		v, err := decodeVariable(seqReader)
		if err != nil {
			return nil, err
		}
		variables = append(variables, v)
	}
	return variables, nil
}
