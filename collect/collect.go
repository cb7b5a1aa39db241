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

// Package collect defines the fixed-shape records the MIB refreshes
// itself from, and the Collector contract that platform-specific code
// (see linux.go) implements to produce them. The MIB package never
// references procfs, ioctl, or any other OS construct directly; it only
// calls through this interface, so the host side can be swapped or
// stubbed in tests without touching MIB logic.
package collect

// Uptime holds the two sysUpTime-shaped quantities the system group
// exposes, both in SNMP TimeTicks (hundredths of a second).
type Uptime struct {
	ProcessTicks uint32
	SystemTicks  uint32
}

// LoadAverage holds the three standard load averages as centivalues
// (value * 100, truncated), matching /proc/loadavg's own fixed-point
// convention.
type LoadAverage struct {
	Load1, Load5, Load15 uint32
}

// Memory holds kibibyte-denominated memory counters.
type Memory struct {
	TotalKB, FreeKB, SharedKB, BufferedKB, CachedKB uint64
}

// CPU holds raw jiffy accumulators plus interrupt/context-switch counts.
type CPU struct {
	User, Nice, System, Idle uint64
	Irqs, ContextSwitches    uint64
}

// Disk holds kibibyte capacity figures plus ceiling-rounded usage
// percentages (so any nonzero occupation reports at least 1%).
type Disk struct {
	TotalKB, UsedKB, FreeKB           uint64
	BlockUsedPercent, InodeUsedPercent uint32
}

// IfStatus is the ifAdminStatus/ifOperStatus enumeration from
// RFC 2863 §3's IF-MIB, with its full value set. The Linux collector
// emits only IfUp, IfDown, IfLowerLayerDown and IfUnknown.
type IfStatus int

const (
	IfUp             IfStatus = 1
	IfDown           IfStatus = 2
	IfTesting        IfStatus = 3
	IfUnknown        IfStatus = 4
	IfDormant        IfStatus = 5
	IfNotPresent     IfStatus = 6
	IfLowerLayerDown IfStatus = 7
)

// Interface types as carried in ifType (RFC 2863's IANAifType).
const (
	IfTypeEthernetCsmacd = 6
	IfTypeIEEE80211      = 71
)

// Interface holds one ifTable row's worth of counters.
type Interface struct {
	Wireless bool
	MAC      [6]byte

	AdminStatus, OperStatus IfStatus
	Mtu, Speed              uint32

	InOctets, InUcastPkts, InErrors, InDiscards    uint64
	OutOctets, OutUcastPkts, OutErrors, OutDiscards uint64
}

// Wireless holds a link's signal/noise. When the radio driver reports
// RCPI or absolute dBm the values are in dBm; when it reports relative
// quality they are a percentage of the driver's maximum, not dBm.
type Wireless struct {
	SignalDBm, NoiseDBm int32
}

// Collector is the pull-based contract the MIB's refresh cycle calls
// through. Every method returns (zero value, false) on failure rather
// than an error. The MIB refresh that calls it keeps the entry's previous
// value on false and does not log the failure; nothing is surfaced on
// the wire.
type Collector interface {
	Uptime() (Uptime, bool)
	LoadAverage() (LoadAverage, bool)
	Memory() (Memory, bool)
	CPU() (CPU, bool)
	Disk(mount string) (Disk, bool)
	Interface(name string) (Interface, bool)
	Wireless(name string) (Wireless, bool)
}
