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
	"fmt"
	"net"
	"time"
)

// Value is the closed set of typed values a variable binding can carry.
// Exactly one of the fields is meaningful, selected by Type; Encode and
// the MIB store only ever construct a Value through the New* helpers
// below, so a value is always internally consistent with its Type.
type Value struct {
	Type     BERType
	Int      int32
	Str      []byte
	Oid      OID
	IP       net.IP
	Uint     uint32
	Counter64 uint64
}

func NewInteger(v int32) Value              { return Value{Type: TypeInteger, Int: v} }
func NewOctetString(v []byte) Value         { return Value{Type: TypeOctetString, Str: v} }
func NewNull() Value                        { return Value{Type: TypeNull} }
func NewOid(v OID) Value                    { return Value{Type: TypeObjectIdentifier, Oid: v} }
func NewIPAddress(v net.IP) Value           { return Value{Type: TypeIPAddress, IP: v.To4()} }
func NewCounter32(v uint32) Value           { return Value{Type: TypeCounter32, Uint: v} }
func NewGauge32(v uint32) Value             { return Value{Type: TypeGauge32, Uint: v} }
func NewTimeTicks(v uint32) Value           { return Value{Type: TypeTimeTicks, Uint: v} }
func NewCounter64(v uint64) Value           { return Value{Type: TypeCounter64, Counter64: v} }

// Exception markers (RFC 1905 §3.2.1), used in place of a real value
// when a requested instance cannot be satisfied.
func NewNoSuchObject() Value   { return Value{Type: TypeNoSuchObject} }
func NewNoSuchInstance() Value { return Value{Type: TypeNoSuchInstance} }
func NewEndOfMibView() Value   { return Value{Type: TypeEndOfMibView} }

// IsException reports whether v is one of the three exception markers.
func (v Value) IsException() bool {
	switch v.Type {
	case TypeNoSuchObject, TypeNoSuchInstance, TypeEndOfMibView:
		return true
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.Type {
	case TypeInteger:
		return fmt.Sprintf("%d", v.Int)
	case TypeOctetString:
		return string(v.Str)
	case TypeNull:
		return ""
	case TypeObjectIdentifier:
		return v.Oid.String()
	case TypeIPAddress:
		return v.IP.String()
	case TypeCounter32, TypeGauge32, TypeTimeTicks:
		if v.Type == TypeTimeTicks {
			return TimeTicksToString(v.Uint)
		}
		return fmt.Sprintf("%d", v.Uint)
	case TypeCounter64:
		return fmt.Sprintf("%d", v.Counter64)
	case TypeNoSuchObject, TypeNoSuchInstance, TypeEndOfMibView:
		return v.Type.String()
	default:
		return fmt.Sprintf("<%s>", v.Type)
	}
}

// SecondsToTimeTicks converts an elapsed duration to SNMP TimeTicks
// (hundredths of a second), as carried by sysUpTime.
func SecondsToTimeTicks(d time.Duration) uint32 {
	return uint32(d / (10 * time.Millisecond))
}

// TimeTicksToString renders TimeTicks the way sysUpTime is conventionally
// displayed: "<days> days, <hh>:<mm>:<ss>.<cc>", with the days part
// omitted when it is zero.
func TimeTicksToString(ticks uint32) string {
	totalSeconds := ticks / 100
	days := totalSeconds / 86400
	hours := (totalSeconds % 86400) / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	centiseconds := ticks % 100

	if days > 0 {
		return fmt.Sprintf("%d days, %02d:%02d:%02d.%02d", days, hours, minutes, seconds, centiseconds)
	}
	return fmt.Sprintf("%02d:%02d:%02d.%02d", hours, minutes, seconds, centiseconds)
}

// Variable is a single OID/value binding, the atomic unit carried in
// every SNMP PDU's variable-bindings list.
type Variable struct {
	OID   OID
	Value Value
}

func (v Variable) String() string {
	return fmt.Sprintf("%s = %s: %s", v.OID, v.Value.Type, v.Value)
}
