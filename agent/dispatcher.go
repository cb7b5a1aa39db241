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

package agent

import (
	"crypto/subtle"

	"github.com/edgeo-scada/mini-snmpd/mib"
	"github.com/edgeo-scada/mini-snmpd/snmp"
)

// Dispatcher decodes inbound SNMP messages, applies GET/GETNEXT/GETBULK/
// SET semantics against a mib.Store, and encodes a GetResponse message —
// the server-side counterpart of the request-building helpers in
// snmp/pdu.go.
type Dispatcher struct {
	cfg     *Config
	store   *mib.Store
	metrics *Metrics
}

func NewDispatcher(cfg *Config, store *mib.Store, metrics *Metrics) *Dispatcher {
	return &Dispatcher{cfg: cfg, store: store, metrics: metrics}
}

// Handle decodes one raw message and returns its encoded response.
// ok=false means no response should be sent at all: the packet was
// malformed, carried an unsupported version, or failed the community
// check (spec.md §4.5/§7 — these never produce a GetResponse, they are
// simply dropped). The caller (transport.go) decides what "drop" means
// for its framing: discard the UDP datagram, or close the TCP session.
func (d *Dispatcher) Handle(raw []byte) (response []byte, ok bool) {
	msg, err := snmp.DecodeMessage(raw)
	if err != nil {
		d.metrics.MalformedDropped.Add(1)
		d.cfg.logger().Warn("dropping malformed packet", "err", err)
		return nil, false
	}

	if d.cfg.AuthEnabled && !communityMatches(msg.Community, d.cfg.Community) {
		d.metrics.AuthRejected.Add(1)
		d.cfg.logger().Warn("dropping packet with invalid community")
		return nil, false
	}

	respMsg := d.dispatch(msg)
	encoded := respMsg.Encode()

	if len(encoded) > d.cfg.PacketBuffer {
		encoded = d.shrinkToFit(msg, respMsg)
	}

	return encoded, true
}

// communityMatches compares in constant time, grounded on the one SNMP
// *server* in the retrieved pack
// (other_examples/81ffe0de_HouzuoGuo-laitos__daemon-snmpd-snmpd.go),
// which does the same for its own community check.
func communityMatches(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func (d *Dispatcher) dispatch(msg *snmp.Message) *snmp.Message {
	req := msg.PDU
	resp := &snmp.PDU{
		Type:      snmp.PDUGetResponse,
		RequestID: req.RequestID,
	}

	if len(req.Variables) > d.cfg.MaxVarbinds {
		d.metrics.TooBig.Add(1)
		resp.ErrorStatus = snmp.TooBig
		resp.ErrorIndex = 0
		resp.Variables = req.Variables
		return &snmp.Message{Version: msg.Version, Community: msg.Community, PDU: resp}
	}

	switch req.Type {
	case snmp.PDUGetRequest:
		d.metrics.GetRequests.Add(1)
		d.handleGet(msg.Version, req, resp)
	case snmp.PDUGetNextRequest:
		d.metrics.GetNextRequests.Add(1)
		d.handleGetNext(msg.Version, req, resp)
	case snmp.PDUGetBulkRequest:
		d.metrics.GetBulkRequests.Add(1)
		d.handleGetBulk(req, resp)
	case snmp.PDUSetRequest:
		d.metrics.SetRequests.Add(1)
		d.handleSet(msg.Version, req, resp)
	}

	return &snmp.Message{Version: msg.Version, Community: msg.Community, PDU: resp}
}

func (d *Dispatcher) handleGet(version snmp.SNMPVersion, req, resp *snmp.PDU) {
	if version == snmp.Version1 {
		for i, v := range req.Variables {
			if _, found := d.store.Lookup(v.OID); !found {
				resp.ErrorStatus = snmp.NoSuchName
				resp.ErrorIndex = i + 1
				resp.Variables = req.Variables
				return
			}
		}
	}

	resp.Variables = make([]snmp.Variable, len(req.Variables))
	for i, v := range req.Variables {
		entry, found := d.store.Lookup(v.OID)
		if !found {
			resp.Variables[i] = snmp.Variable{OID: v.OID, Value: d.missingValue(v.OID)}
			continue
		}
		resp.Variables[i] = snmp.Variable{OID: entry.OID, Value: entry.Value}
	}
}

func (d *Dispatcher) handleGetNext(version snmp.SNMPVersion, req, resp *snmp.PDU) {
	if version == snmp.Version1 {
		for i, v := range req.Variables {
			if _, found := d.store.Successor(v.OID); !found {
				resp.ErrorStatus = snmp.NoSuchName
				resp.ErrorIndex = i + 1
				resp.Variables = req.Variables
				return
			}
		}
	}

	resp.Variables = make([]snmp.Variable, len(req.Variables))
	for i, v := range req.Variables {
		entry, found := d.store.Successor(v.OID)
		if !found {
			resp.Variables[i] = snmp.Variable{OID: v.OID, Value: snmp.NewEndOfMibView()}
			continue
		}
		resp.Variables[i] = snmp.Variable{OID: entry.OID, Value: entry.Value}
	}
}

// missingValue picks noSuchObject vs noSuchInstance per RFC 1905 §3.2.1:
// noSuchInstance when the requested column exists at some other row,
// noSuchObject when it doesn't exist at all.
func (d *Dispatcher) missingValue(oid snmp.OID) snmp.Value {
	if d.store.HasColumn(oid) {
		return snmp.NewNoSuchInstance()
	}
	return snmp.NewNoSuchObject()
}

func (d *Dispatcher) handleSet(version snmp.SNMPVersion, req, resp *snmp.PDU) {
	resp.ErrorIndex = 1
	resp.Variables = req.Variables
	if version == snmp.Version1 {
		resp.ErrorStatus = snmp.ReadOnly
	} else {
		resp.ErrorStatus = snmp.NoAccess
	}
}

// handleGetBulk implements RFC 1905 §4.2.3: the first NonRepeaters
// bindings step once (GETNEXT semantics); the remaining bindings each
// contribute up to MaxRepetitions successor steps, one full round at a
// time, stopping before a round in which every remaining binding has
// already reached endOfMibView.
func (d *Dispatcher) handleGetBulk(req, resp *snmp.PDU) {
	n := req.NonRepeaters
	if n < 0 {
		n = 0
	}
	if n > len(req.Variables) {
		n = len(req.Variables)
	}

	var result []snmp.Variable
	for i := 0; i < n; i++ {
		entry, found := d.store.Successor(req.Variables[i].OID)
		if !found {
			result = append(result, snmp.Variable{OID: req.Variables[i].OID, Value: snmp.NewEndOfMibView()})
			continue
		}
		result = append(result, snmp.Variable{OID: entry.OID, Value: entry.Value})
	}

	repeaters := req.Variables[n:]
	cursor := make([]snmp.OID, len(repeaters))
	done := make([]bool, len(repeaters))
	for i, v := range repeaters {
		cursor[i] = v.OID
	}

	m := req.MaxRepetitions
	if m < 0 {
		m = 0
	}

	for k := 0; k < m; k++ {
		if allDone(done) {
			break
		}
		round := make([]snmp.Variable, len(repeaters))
		for j := range repeaters {
			if done[j] {
				round[j] = snmp.Variable{OID: cursor[j], Value: snmp.NewEndOfMibView()}
				continue
			}
			entry, found := d.store.Successor(cursor[j])
			if !found {
				done[j] = true
				round[j] = snmp.Variable{OID: cursor[j], Value: snmp.NewEndOfMibView()}
				continue
			}
			cursor[j] = entry.OID
			round[j] = snmp.Variable{OID: entry.OID, Value: entry.Value}
		}
		result = append(result, round...)
	}

	resp.Variables = result
}

func allDone(done []bool) bool {
	for _, b := range done {
		if !b {
			return false
		}
	}
	return len(done) > 0
}

// shrinkToFit applies the oversized-response remedy. For GETBULK,
// trailing repetition rounds are discarded one at a time (a "round" is
// len(req.Variables)-NonRepeaters bindings) until the message fits; only
// if the non-repeaters alone still overflow does it fall back to
// tooBig. Every other operation falls back to tooBig directly, since it
// has no repetitions to trim (spec.md §4.5).
func (d *Dispatcher) shrinkToFit(reqMsg *snmp.Message, respMsg *snmp.Message) []byte {
	req := reqMsg.PDU
	resp := respMsg.PDU

	if req.Type == snmp.PDUGetBulkRequest {
		n := req.NonRepeaters
		if n < 0 {
			n = 0
		}
		if n > len(req.Variables) {
			n = len(req.Variables)
		}
		roundSize := len(req.Variables) - n
		if roundSize > 0 {
			rounds := (len(resp.Variables) - n) / roundSize
			for rounds > 0 {
				rounds--
				trimmed := &snmp.PDU{
					Type:           resp.Type,
					RequestID:      resp.RequestID,
					ErrorStatus:    snmp.NoError,
					ErrorIndex:     0,
					Variables:      resp.Variables[:n+rounds*roundSize],
					NonRepeaters:   0,
					MaxRepetitions: 0,
				}
				candidate := &snmp.Message{Version: reqMsg.Version, Community: reqMsg.Community, PDU: trimmed}
				if encoded := candidate.Encode(); len(encoded) <= d.cfg.PacketBuffer {
					return encoded
				}
			}
		}
	}

	d.metrics.TooBig.Add(1)
	tooBig := &snmp.PDU{
		Type:        snmp.PDUGetResponse,
		RequestID:   req.RequestID,
		ErrorStatus: snmp.TooBig,
		ErrorIndex:  0,
		Variables:   req.Variables,
	}
	return (&snmp.Message{Version: reqMsg.Version, Community: reqMsg.Community, PDU: tooBig}).Encode()
}
