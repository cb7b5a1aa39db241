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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn is a minimal net.Conn double; only Close is exercised by the
// session table.
type fakeConn struct {
	net.Conn
	closed bool
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func TestSessionTableAcceptTracksActiveSessions(t *testing.T) {
	table := NewSessionTable(3, &Metrics{})

	s1 := table.Accept(&fakeConn{})
	s2 := table.Accept(&fakeConn{})

	assert.Len(t, table.All(), 2)
	assert.Equal(t, int64(2), table.metrics.ActiveSessions.Value())
	assert.NotSame(t, s1, s2)
}

func TestSessionTableEvictsOldestOnCapacity(t *testing.T) {
	table := NewSessionTable(2, &Metrics{})

	first := table.Accept(&fakeConn{})
	first.lastActivity = time.Now().Add(-1 * time.Hour)
	second := table.Accept(&fakeConn{})
	second.lastActivity = time.Now().Add(-30 * time.Minute)

	third := table.Accept(&fakeConn{})

	all := table.All()
	require.Len(t, all, 2)
	assert.Same(t, second, all[0], "oldest session must be evicted, not the newest")
	assert.Same(t, third, all[1])
	assert.True(t, first.conn.(*fakeConn).closed)
	assert.Equal(t, int64(1), table.metrics.SessionsEvicted.Value())
}

func TestSessionTableCloseIsIdempotent(t *testing.T) {
	table := NewSessionTable(3, &Metrics{})
	s := table.Accept(&fakeConn{})

	table.Close(s)
	table.Close(s)

	assert.Equal(t, int64(1), table.metrics.SessionsClosed.Value())
	assert.True(t, s.closed)
}

func TestSessionTableCompactPreservesOrderOfSurvivors(t *testing.T) {
	table := NewSessionTable(5, &Metrics{})
	a := table.Accept(&fakeConn{})
	b := table.Accept(&fakeConn{})
	c := table.Accept(&fakeConn{})

	table.Close(b)
	table.Compact()

	all := table.All()
	require.Len(t, all, 2)
	assert.Same(t, a, all[0])
	assert.Same(t, c, all[1])
	assert.Equal(t, int64(2), table.metrics.ActiveSessions.Value())
}
