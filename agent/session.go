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
	"net"
	"sync"
	"time"
)

// Direction tracks which half of a TCP session is currently active: a
// session reads a request, then switches to writing its response, then
// switches back (spec.md §4.6 steps 7-8).
type Direction int

const (
	DirectionInbound Direction = iota
	DirectionOutbound
)

// Session is one accepted TCP connection, owned exclusively by the
// transport's event loop goroutine — no field here is touched
// concurrently, even though the connection's blocking Read happens on a
// dedicated reader goroutine (see transport.go).
type Session struct {
	conn         net.Conn
	lastActivity time.Time
	direction    Direction
	recvBuf      []byte
	sendBuf      []byte
	closed       bool
}

func (s *Session) touch() { s.lastActivity = time.Now() }

// SessionTable is the bounded, insertion-ordered set of accepted TCP
// sessions. Grounded on the teacher's snmp/pool.go connection pool
// (`poolClient{client, lastUsed, inFlight}` inside an owned slice),
// repurposed here as the server-side accepted-session table spec.md
// §9's "array of pointers with hole-compaction" design note calls for —
// any container whose iteration order is insertion order suffices, so
// the slice-of-pointers shape carries over directly.
type SessionTable struct {
	mu       sync.Mutex
	sessions []*Session
	capacity int
	metrics  *Metrics
}

func NewSessionTable(capacity int, metrics *Metrics) *SessionTable {
	return &SessionTable{capacity: capacity, metrics: metrics}
}

// Accept registers a newly accepted connection, evicting the
// oldest-by-last-activity session first if the table is already at
// capacity (spec.md Testable Property 9).
func (t *SessionTable) Accept(conn net.Conn) *Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.sessions) >= t.capacity {
		t.evictOldestLocked()
	}

	s := &Session{conn: conn, lastActivity: time.Now(), direction: DirectionInbound}
	t.sessions = append(t.sessions, s)
	t.metrics.SessionsAccepted.Add(1)
	t.metrics.ActiveSessions.Set(int64(len(t.sessions)))
	return s
}

func (t *SessionTable) evictOldestLocked() {
	if len(t.sessions) == 0 {
		return
	}
	oldest := 0
	for i, s := range t.sessions {
		if s.lastActivity.Before(t.sessions[oldest].lastActivity) {
			oldest = i
		}
	}
	t.sessions[oldest].conn.Close()
	t.sessions[oldest].closed = true
	t.metrics.SessionsEvicted.Add(1)
	t.compactLocked()
}

// Close marks s closed and closes its connection; the session is
// physically removed from the table on the next Compact.
func (t *SessionTable) Close(s *Session) {
	if s.closed {
		return
	}
	s.closed = true
	s.conn.Close()
	t.metrics.SessionsClosed.Add(1)
}

// Compact removes closed sessions, preserving the insertion order of
// survivors (spec.md §4.6 step 9).
func (t *SessionTable) Compact() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.compactLocked()
}

func (t *SessionTable) compactLocked() {
	survivors := t.sessions[:0]
	for _, s := range t.sessions {
		if !s.closed {
			survivors = append(survivors, s)
		}
	}
	t.sessions = survivors
	t.metrics.ActiveSessions.Set(int64(len(t.sessions)))
}

// All returns the live session list. Only the owner goroutine calls
// this, so the returned slice is safe to range over without copying.
func (t *SessionTable) All() []*Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessions
}
