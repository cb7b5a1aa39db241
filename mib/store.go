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

// Package mib implements the in-memory Management Information Base: a
// sorted, append-once table of OID to typed-value entries, built once at
// startup and refreshed from host collectors on a tick.
package mib

import (
	"fmt"
	"sort"
	"sync"

	"github.com/edgeo-scada/mini-snmpd/snmp"
)

// Tier controls how eagerly an entry's value is recomputed. Static
// entries never change after registration (sysObjectID, sysServices).
// Partial entries are cheap enough to recompute every loop iteration.
// Full entries are refreshed only on a full cycle (startup, and every
// time the configured interval elapses) because their collector is
// comparatively expensive (e.g. a statfs(2) per configured disk).
type Tier int

const (
	TierStatic Tier = iota
	TierPartial
	TierFull
)

// RefreshFunc recomputes an entry's value. It returns ok=false on
// collector failure, in which case the entry keeps its last value.
type RefreshFunc func() (snmp.Value, bool)

// Entry is one OID/value pair in the MIB, optionally backed by a
// refresh source.
type Entry struct {
	OID     snmp.OID
	Value   snmp.Value
	Tier    Tier
	refresh RefreshFunc
}

// Store is the sorted, ascending-OID table the dispatcher queries.
// It is safe for concurrent use, though in practice only the agent's
// single owner goroutine ever calls Lookup/Successor/Refresh.
type Store struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewStore builds a Store from entries, sorting them by OID and
// rejecting duplicates — registration bugs (two groups claiming the
// same OID) are a programming error, not a runtime condition to
// recover from.
func NewStore(entries []Entry) (*Store, error) {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].OID.Compare(sorted[j].OID) < 0
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].OID.Compare(sorted[i].OID) == 0 {
			return nil, fmt.Errorf("mib: duplicate OID %s", sorted[i].OID)
		}
	}

	return &Store{entries: sorted}, nil
}

// Len returns the number of entries currently in the MIB.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Lookup returns the entry with exactly the given OID, if present.
func (s *Store) Lookup(oid snmp.OID) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].OID.Compare(oid) >= 0
	})
	if i < len(s.entries) && s.entries[i].OID.Compare(oid) == 0 {
		return s.entries[i], true
	}
	return Entry{}, false
}

// Successor returns the smallest entry whose OID is strictly greater
// than oid, or false if oid is greater than or equal to every entry.
func (s *Store) Successor(oid snmp.OID) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].OID.Compare(oid) > 0
	})
	if i < len(s.entries) {
		return s.entries[i], true
	}
	return Entry{}, false
}

// HasColumn reports whether any entry shares oid's parent OID (oid with
// its last sub-identifier dropped) — i.e. whether the requested object
// exists at some other instance, even though oid itself does not. The
// dispatcher uses this to choose between the noSuchObject and
// noSuchInstance exception markers on a v2c GET miss (RFC 1905
// §3.2.1 distinguishes the two; the C original this agent descends from
// predates v2c exceptions and makes no such distinction).
func (s *Store) HasColumn(oid snmp.OID) bool {
	if len(oid) == 0 {
		return false
	}
	prefix := oid[:len(oid)-1]

	s.mu.RLock()
	defer s.mu.RUnlock()

	i := sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].OID.Compare(prefix) >= 0
	})
	return i < len(s.entries) && s.entries[i].OID.HasPrefix(prefix)
}

// All returns a snapshot copy of every entry, in ascending OID order.
// Used by tests asserting the sort invariant and by GETNEXT-from-zero
// walks.
func (s *Store) All() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Refresh recomputes every entry eligible for this cycle: on a full
// cycle, both TierPartial and TierFull entries run; otherwise only
// TierPartial entries do. TierStatic entries never run. Refresh never
// adds or removes OIDs — only Entry.Value changes — and a collector
// failure leaves the entry's previous value untouched.
func (s *Store) Refresh(full bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		e := &s.entries[i]
		if e.refresh == nil || e.Tier == TierStatic {
			continue
		}
		if !full && e.Tier == TierFull {
			continue
		}
		if v, ok := e.refresh(); ok {
			e.Value = v
		}
	}
}
