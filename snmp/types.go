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

// Package snmp implements the wire format of SNMP v1 and v2c: BER/ASN.1
// encoding, object identifiers, typed variable values and the PDU/message
// envelopes carried over UDP and TCP.
package snmp

import "fmt"

// BERType is an ASN.1/BER tag byte as used on the wire by SNMP.
type BERType byte

const (
	TypeInteger          BERType = 0x02
	TypeOctetString      BERType = 0x04
	TypeNull             BERType = 0x05
	TypeObjectIdentifier BERType = 0x06
	TypeSequence         BERType = 0x30

	// Application types (SNMP-specific, RFC 1155 §6.1).
	TypeIPAddress BERType = 0x40
	TypeCounter32 BERType = 0x41
	TypeGauge32   BERType = 0x42
	TypeTimeTicks BERType = 0x43
	TypeOpaque    BERType = 0x44
	TypeCounter64 BERType = 0x46

	// Context-specific PDU tags.
	TypeGetRequest     BERType = 0xA0
	TypeGetNextRequest BERType = 0xA1
	TypeGetResponse    BERType = 0xA2
	TypeSetRequest     BERType = 0xA3
	TypeGetBulkRequest BERType = 0xA5

	// Exception values (RFC 1905 §3), encoded in the value slot of a
	// variable binding in place of a real typed value.
	TypeNoSuchObject   BERType = 0x80
	TypeNoSuchInstance BERType = 0x81
	TypeEndOfMibView   BERType = 0x82
)

func (t BERType) String() string {
	switch t {
	case TypeInteger:
		return "INTEGER"
	case TypeOctetString:
		return "OCTET STRING"
	case TypeNull:
		return "NULL"
	case TypeObjectIdentifier:
		return "OBJECT IDENTIFIER"
	case TypeSequence:
		return "SEQUENCE"
	case TypeIPAddress:
		return "IpAddress"
	case TypeCounter32:
		return "Counter32"
	case TypeGauge32:
		return "Gauge32"
	case TypeTimeTicks:
		return "TimeTicks"
	case TypeOpaque:
		return "Opaque"
	case TypeCounter64:
		return "Counter64"
	case TypeGetRequest:
		return "GetRequest-PDU"
	case TypeGetNextRequest:
		return "GetNextRequest-PDU"
	case TypeGetResponse:
		return "GetResponse-PDU"
	case TypeSetRequest:
		return "SetRequest-PDU"
	case TypeGetBulkRequest:
		return "GetBulkRequest-PDU"
	case TypeNoSuchObject:
		return "noSuchObject"
	case TypeNoSuchInstance:
		return "noSuchInstance"
	case TypeEndOfMibView:
		return "endOfMibView"
	default:
		return fmt.Sprintf("Unknown(0x%02X)", byte(t))
	}
}

// PDUType identifies the operation carried by a PDU.
type PDUType byte

const (
	PDUGetRequest     PDUType = PDUType(TypeGetRequest)
	PDUGetNextRequest PDUType = PDUType(TypeGetNextRequest)
	PDUGetResponse    PDUType = PDUType(TypeGetResponse)
	PDUSetRequest     PDUType = PDUType(TypeSetRequest)
	PDUGetBulkRequest PDUType = PDUType(TypeGetBulkRequest)
)

func (p PDUType) String() string { return BERType(p).String() }

// ErrorStatus is the SNMP error-status field (RFC 1157 §4.1.1, extended
// by RFC 1905 §3 with tooBig reused for both versions).
type ErrorStatus int

const (
	NoError    ErrorStatus = 0
	TooBig     ErrorStatus = 1
	NoSuchName ErrorStatus = 2
	BadValue   ErrorStatus = 3
	ReadOnly   ErrorStatus = 4
	GenErr     ErrorStatus = 5
	NoAccess   ErrorStatus = 6
	NotWritable ErrorStatus = 17
)

func (e ErrorStatus) String() string {
	switch e {
	case NoError:
		return "noError"
	case TooBig:
		return "tooBig"
	case NoSuchName:
		return "noSuchName"
	case BadValue:
		return "badValue"
	case ReadOnly:
		return "readOnly"
	case GenErr:
		return "genErr"
	case NoAccess:
		return "noAccess"
	case NotWritable:
		return "notWritable"
	default:
		return fmt.Sprintf("unknown(%d)", int(e))
	}
}

// SNMPVersion is the message-level version field.
type SNMPVersion int

const (
	Version1  SNMPVersion = 0
	Version2c SNMPVersion = 1
)

func (v SNMPVersion) String() string {
	switch v {
	case Version1:
		return "1"
	case Version2c:
		return "2c"
	default:
		return fmt.Sprintf("unknown(%d)", int(v))
	}
}

// Default protocol values (RFC 1157 §4, and the agent's own defaults).
const (
	DefaultPort            = 161
	DefaultCommunity       = "public"
	DefaultMaxRepetitions  = 10
	DefaultNonRepeaters    = 0
	MaxOIDLen              = 128
	MaxMessageSize         = 65507 // largest UDP payload over IPv4
)
