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
	"errors"
	"fmt"
)

// Sentinel decode failures. DecodeError wraps one of these with the byte
// offset at which the decoder gave up, so callers can match with errors.Is
// while still logging where in the packet it happened.
var (
	ErrTruncated          = errors.New("snmp: truncated BER data")
	ErrIndefiniteLength   = errors.New("snmp: indefinite length not permitted")
	ErrNonMinimalLength   = errors.New("snmp: non-minimal length encoding")
	ErrLengthTooLarge     = errors.New("snmp: length field too large")
	ErrIntegerOverflow    = errors.New("snmp: integer exceeds declared width")
	ErrUnexpectedTag      = errors.New("snmp: unexpected BER tag")
	ErrOIDTooLong         = errors.New("snmp: OID exceeds maximum length")
	ErrInvalidOID         = errors.New("snmp: invalid OID")
	ErrEmptyOID           = errors.New("snmp: empty OID")
	ErrPacketTooLarge     = errors.New("snmp: packet too large")
	ErrUnsupportedVersion = errors.New("snmp: unsupported SNMP version")
)

// DecodeError reports a malformed-encoding failure at a specific offset
// into the packet being decoded. It always wraps one of the Err*
// sentinels above so callers can use errors.Is.
type DecodeError struct {
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("snmp: decode error at offset %d: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func newDecodeError(offset int, err error) *DecodeError {
	return &DecodeError{Offset: offset, Err: err}
}

// ProtocolError is a dispatcher-level SNMP error-status/error-index
// pair, ready to be placed into a GetResponse PDU.
type ProtocolError struct {
	Status ErrorStatus
	Index  int
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("snmp: %s at index %d", e.Status, e.Index)
}

func NewProtocolError(status ErrorStatus, index int) *ProtocolError {
	return &ProtocolError{Status: status, Index: index}
}
