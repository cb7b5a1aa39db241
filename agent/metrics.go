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

import "sync/atomic"

// Counter is a simple atomic counter.
type Counter struct {
	value int64
}

func (c *Counter) Add(delta int64) { atomic.AddInt64(&c.value, delta) }
func (c *Counter) Value() int64    { return atomic.LoadInt64(&c.value) }

// Gauge is a simple atomic gauge that can go up and down.
type Gauge struct {
	value int64
}

func (g *Gauge) Set(value int64) { atomic.StoreInt64(&g.value, value) }
func (g *Gauge) Value() int64    { return atomic.LoadInt64(&g.value) }

// Metrics counts requests served and dropped by the agent. The event
// loop is single-threaded, so plain atomics (rather than a mutex) match
// the teacher's snmp.Metrics style without implying contention that
// doesn't exist here.
type Metrics struct {
	GetRequests     Counter
	GetNextRequests Counter
	GetBulkRequests Counter
	SetRequests     Counter

	MalformedDropped Counter
	AuthRejected     Counter
	TooBig           Counter

	SessionsAccepted Counter
	SessionsEvicted  Counter
	SessionsClosed   Counter
	ActiveSessions   Gauge

	FullRefreshes    Counter
	PartialRefreshes Counter
}

// Snapshot is a point-in-time copy of Metrics' counters, safe to log or
// expose without holding a reference to the live agent.
type Snapshot struct {
	GetRequests      int64
	GetNextRequests  int64
	GetBulkRequests  int64
	SetRequests      int64
	MalformedDropped int64
	AuthRejected     int64
	TooBig           int64
	SessionsAccepted int64
	SessionsEvicted  int64
	SessionsClosed   int64
	ActiveSessions   int64
	FullRefreshes    int64
	PartialRefreshes int64
}

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		GetRequests:      m.GetRequests.Value(),
		GetNextRequests:  m.GetNextRequests.Value(),
		GetBulkRequests:  m.GetBulkRequests.Value(),
		SetRequests:      m.SetRequests.Value(),
		MalformedDropped: m.MalformedDropped.Value(),
		AuthRejected:     m.AuthRejected.Value(),
		TooBig:           m.TooBig.Value(),
		SessionsAccepted: m.SessionsAccepted.Value(),
		SessionsEvicted:  m.SessionsEvicted.Value(),
		SessionsClosed:   m.SessionsClosed.Value(),
		ActiveSessions:   m.ActiveSessions.Value(),
		FullRefreshes:    m.FullRefreshes.Value(),
		PartialRefreshes: m.PartialRefreshes.Value(),
	}
}
