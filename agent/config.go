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

// Package agent implements the SNMP agent's request dispatcher, session
// table, and transport event loop: the server-side half of the protocol
// the snmp package encodes and the mib package stores.
package agent

import (
	"log/slog"
	"time"

	"github.com/edgeo-scada/mini-snmpd/snmp"
)

// Default bounds, chosen since original_source/ ships only mini_snmpd.c
// and linux.c, not the header that would define these constants (see
// DESIGN.md).
const (
	DefaultMaxVarbinds  = 16
	DefaultMaxClients   = 16
	DefaultPacketBuffer = 1500
	DefaultRefreshInterval = 5 * time.Second
)

// Config is the agent's fully-resolved, immutable configuration. It is
// built once from CLI flags in cmd/mini-snmpd and threaded through every
// component — nothing in agent, mib, or collect reads package-level
// mutable state (spec.md §9 "Global process state").
type Config struct {
	UDPPort int
	TCPPort int

	Community   string
	AuthEnabled bool

	Description string
	VendorOID   snmp.OID
	Location    string
	Contact     string
	SysName     string

	Disks              []string
	Interfaces         []string
	WirelessInterfaces []string

	ListenDevice string
	UseIPv4      bool
	UseIPv6      bool

	RefreshInterval time.Duration
	MaxVarbinds     int
	MaxClients      int
	PacketBuffer    int

	Logger *slog.Logger
}

// logger returns cfg.Logger, falling back to slog.Default() the way the
// teacher's snmp.Client does when no logger option is supplied.
func (cfg Config) logger() *slog.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return slog.Default()
}
