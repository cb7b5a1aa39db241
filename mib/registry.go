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

package mib

import (
	"github.com/edgeo-scada/mini-snmpd/collect"
	"github.com/edgeo-scada/mini-snmpd/snmp"
)

// RegistryConfig carries the host identity and configured entity lists
// the registry needs to build the MIB. It holds no OS-level state — the
// MIB component never references OS constructs directly (spec Design
// Notes), only the Collector interface.
type RegistryConfig struct {
	Description string
	VendorOID   snmp.OID
	Contact     string
	Name        string
	Location    string

	Disks              []string
	Interfaces         []string
	WirelessInterfaces []string
}

// privateRoot is this agent's placeholder enterprise subtree for
// host-resources-style counters that standard MIB-II does not cover
// (load average, raw CPU jiffies). A real deployment would register a
// PEN with IANA; this agent documents the choice rather than claiming
// one (see DESIGN.md).
var privateRoot = snmp.MustParseOID("1.3.6.1.4.1.99999.1")

// BuildEntries constructs the full deterministic MIB entry set: system,
// interfaces, and host groups, in that order. Table groups (ifTable,
// disks) are registered row by row, so the returned slice is not in
// ascending OID order; NewStore sorts it, which is what establishes the
// store's sort invariant, so registration order here only needs to be
// deterministic and duplicate-free.
func BuildEntries(cfg RegistryConfig, c collect.Collector) []Entry {
	var entries []Entry
	entries = append(entries, systemEntries(cfg, c)...)
	entries = append(entries, interfaceEntries(cfg, c)...)
	entries = append(entries, hostEntries(cfg, c)...)
	return entries
}

func systemEntries(cfg RegistryConfig, c collect.Collector) []Entry {
	return []Entry{
		{OID: snmp.OIDSysDescr, Tier: TierStatic, Value: snmp.NewOctetString([]byte(cfg.Description))},
		{OID: snmp.OIDSysObjectID, Tier: TierStatic, Value: snmp.NewOid(cfg.VendorOID)},
		{
			OID:  snmp.OIDSysUpTime,
			Tier: TierPartial,
			refresh: func() (snmp.Value, bool) {
				u, ok := c.Uptime()
				if !ok {
					return snmp.Value{}, false
				}
				return snmp.NewTimeTicks(u.ProcessTicks), true
			},
		},
		{OID: snmp.OIDSysContact, Tier: TierStatic, Value: snmp.NewOctetString([]byte(cfg.Contact))},
		{OID: snmp.OIDSysName, Tier: TierStatic, Value: snmp.NewOctetString([]byte(cfg.Name))},
		{OID: snmp.OIDSysLocation, Tier: TierStatic, Value: snmp.NewOctetString([]byte(cfg.Location))},
		{OID: snmp.OIDSysServices, Tier: TierStatic, Value: snmp.NewInteger(72)},
	}
}

// IF-MIB column numbers (RFC 2863 §3), reused verbatim so the OIDs this
// agent serves line up with what a standard MIB browser expects.
const (
	colIfIndex        = 1
	colIfDescr        = 2
	colIfType         = 3
	colIfMtu          = 4
	colIfSpeed        = 5
	colIfPhysAddress  = 6
	colIfAdminStatus  = 7
	colIfOperStatus   = 8
	colIfInOctets     = 10
	colIfInUcastPkts  = 11
	colIfInDiscards   = 13
	colIfInErrors     = 14
	colIfOutOctets    = 16
	colIfOutUcastPkts = 17
	colIfOutDiscards  = 19
	colIfOutErrors    = 20
)

var ifTableRoot = snmp.MustParseOID("1.3.6.1.2.1.2.2.1")

func ifColumnOID(col, row int) snmp.OID {
	oid := ifTableRoot.Copy()
	return append(oid, col, row)
}

func interfaceEntries(cfg RegistryConfig, c collect.Collector) []Entry {
	entries := []Entry{
		{OID: snmp.MustParseOID("1.3.6.1.2.1.2.1.0"), Tier: TierStatic, Value: snmp.NewInteger(int32(len(cfg.Interfaces)))},
	}

	wireless := make(map[string]bool, len(cfg.WirelessInterfaces))
	for _, w := range cfg.WirelessInterfaces {
		wireless[w] = true
	}

	for i, name := range cfg.Interfaces {
		row := i + 1
		name := name // capture
		isWireless := wireless[name]

		ifType := int32(collect.IfTypeEthernetCsmacd)
		if isWireless {
			ifType = collect.IfTypeIEEE80211
		}

		fetch := func() (collect.Interface, bool) { return c.Interface(name) }

		entries = append(entries,
			Entry{OID: ifColumnOID(colIfIndex, row), Tier: TierStatic, Value: snmp.NewInteger(int32(row))},
			Entry{OID: ifColumnOID(colIfDescr, row), Tier: TierStatic, Value: snmp.NewOctetString([]byte(name))},
			Entry{OID: ifColumnOID(colIfType, row), Tier: TierStatic, Value: snmp.NewInteger(ifType)},
			Entry{
				OID: ifColumnOID(colIfMtu, row), Tier: TierPartial,
				refresh: func() (snmp.Value, bool) {
					info, ok := fetch()
					if !ok {
						return snmp.Value{}, false
					}
					return snmp.NewInteger(int32(info.Mtu)), true
				},
			},
			Entry{
				OID: ifColumnOID(colIfSpeed, row), Tier: TierPartial,
				refresh: func() (snmp.Value, bool) {
					info, ok := fetch()
					if !ok {
						return snmp.Value{}, false
					}
					return snmp.NewGauge32(info.Speed), true
				},
			},
			Entry{
				OID: ifColumnOID(colIfPhysAddress, row), Tier: TierPartial,
				refresh: func() (snmp.Value, bool) {
					info, ok := fetch()
					if !ok {
						return snmp.Value{}, false
					}
					return snmp.NewOctetString(info.MAC[:]), true
				},
			},
			Entry{
				OID: ifColumnOID(colIfAdminStatus, row), Tier: TierPartial,
				refresh: func() (snmp.Value, bool) {
					info, ok := fetch()
					if !ok {
						return snmp.Value{}, false
					}
					return snmp.NewInteger(int32(info.AdminStatus)), true
				},
			},
			Entry{
				OID: ifColumnOID(colIfOperStatus, row), Tier: TierPartial,
				refresh: func() (snmp.Value, bool) {
					info, ok := fetch()
					if !ok {
						return snmp.Value{}, false
					}
					return snmp.NewInteger(int32(info.OperStatus)), true
				},
			},
			Entry{
				OID: ifColumnOID(colIfInOctets, row), Tier: TierPartial,
				refresh: func() (snmp.Value, bool) {
					info, ok := fetch()
					if !ok {
						return snmp.Value{}, false
					}
					return snmp.NewCounter32(uint32(info.InOctets)), true
				},
			},
			Entry{
				OID: ifColumnOID(colIfInUcastPkts, row), Tier: TierPartial,
				refresh: func() (snmp.Value, bool) {
					info, ok := fetch()
					if !ok {
						return snmp.Value{}, false
					}
					return snmp.NewCounter32(uint32(info.InUcastPkts)), true
				},
			},
			Entry{
				OID: ifColumnOID(colIfInErrors, row), Tier: TierPartial,
				refresh: func() (snmp.Value, bool) {
					info, ok := fetch()
					if !ok {
						return snmp.Value{}, false
					}
					return snmp.NewCounter32(uint32(info.InErrors)), true
				},
			},
			Entry{
				OID: ifColumnOID(colIfInDiscards, row), Tier: TierPartial,
				refresh: func() (snmp.Value, bool) {
					info, ok := fetch()
					if !ok {
						return snmp.Value{}, false
					}
					return snmp.NewCounter32(uint32(info.InDiscards)), true
				},
			},
			Entry{
				OID: ifColumnOID(colIfOutOctets, row), Tier: TierPartial,
				refresh: func() (snmp.Value, bool) {
					info, ok := fetch()
					if !ok {
						return snmp.Value{}, false
					}
					return snmp.NewCounter32(uint32(info.OutOctets)), true
				},
			},
			Entry{
				OID: ifColumnOID(colIfOutUcastPkts, row), Tier: TierPartial,
				refresh: func() (snmp.Value, bool) {
					info, ok := fetch()
					if !ok {
						return snmp.Value{}, false
					}
					return snmp.NewCounter32(uint32(info.OutUcastPkts)), true
				},
			},
			Entry{
				OID: ifColumnOID(colIfOutErrors, row), Tier: TierPartial,
				refresh: func() (snmp.Value, bool) {
					info, ok := fetch()
					if !ok {
						return snmp.Value{}, false
					}
					return snmp.NewCounter32(uint32(info.OutErrors)), true
				},
			},
			Entry{
				OID: ifColumnOID(colIfOutDiscards, row), Tier: TierPartial,
				refresh: func() (snmp.Value, bool) {
					info, ok := fetch()
					if !ok {
						return snmp.Value{}, false
					}
					return snmp.NewCounter32(uint32(info.OutDiscards)), true
				},
			},
		)
	}

	return entries
}

func hostEntries(cfg RegistryConfig, c collect.Collector) []Entry {
	var entries []Entry

	loadRoot := append(privateRoot.Copy(), 1)
	entries = append(entries,
		Entry{OID: append(loadRoot.Copy(), 1), Tier: TierPartial, refresh: func() (snmp.Value, bool) {
			l, ok := c.LoadAverage()
			if !ok {
				return snmp.Value{}, false
			}
			return snmp.NewGauge32(l.Load1), true
		}},
		Entry{OID: append(loadRoot.Copy(), 2), Tier: TierPartial, refresh: func() (snmp.Value, bool) {
			l, ok := c.LoadAverage()
			if !ok {
				return snmp.Value{}, false
			}
			return snmp.NewGauge32(l.Load5), true
		}},
		Entry{OID: append(loadRoot.Copy(), 3), Tier: TierPartial, refresh: func() (snmp.Value, bool) {
			l, ok := c.LoadAverage()
			if !ok {
				return snmp.Value{}, false
			}
			return snmp.NewGauge32(l.Load15), true
		}},
	)

	memRoot := append(privateRoot.Copy(), 2)
	memField := func(idx int, get func(collect.Memory) uint64) Entry {
		oid := append(memRoot.Copy(), idx)
		return Entry{OID: oid, Tier: TierFull, refresh: func() (snmp.Value, bool) {
			m, ok := c.Memory()
			if !ok {
				return snmp.Value{}, false
			}
			return snmp.NewGauge32(uint32(get(m))), true
		}}
	}
	entries = append(entries,
		memField(1, func(m collect.Memory) uint64 { return m.TotalKB }),
		memField(2, func(m collect.Memory) uint64 { return m.FreeKB }),
		memField(3, func(m collect.Memory) uint64 { return m.SharedKB }),
		memField(4, func(m collect.Memory) uint64 { return m.BufferedKB }),
		memField(5, func(m collect.Memory) uint64 { return m.CachedKB }),
	)

	cpuRoot := append(privateRoot.Copy(), 3)
	cpuField := func(idx int, get func(collect.CPU) uint64) Entry {
		oid := append(cpuRoot.Copy(), idx)
		return Entry{OID: oid, Tier: TierPartial, refresh: func() (snmp.Value, bool) {
			v, ok := c.CPU()
			if !ok {
				return snmp.Value{}, false
			}
			return snmp.NewCounter32(uint32(get(v))), true
		}}
	}
	entries = append(entries,
		cpuField(1, func(v collect.CPU) uint64 { return v.User }),
		cpuField(2, func(v collect.CPU) uint64 { return v.Nice }),
		cpuField(3, func(v collect.CPU) uint64 { return v.System }),
		cpuField(4, func(v collect.CPU) uint64 { return v.Idle }),
		cpuField(5, func(v collect.CPU) uint64 { return v.Irqs }),
		cpuField(6, func(v collect.CPU) uint64 { return v.ContextSwitches }),
	)

	diskRoot := append(privateRoot.Copy(), 4)
	for i, mount := range cfg.Disks {
		row := i + 1
		mount := mount
		diskField := func(col int, get func(collect.Disk) uint32) Entry {
			oid := append(diskRoot.Copy(), col, row)
			return Entry{OID: oid, Tier: TierFull, refresh: func() (snmp.Value, bool) {
				d, ok := c.Disk(mount)
				if !ok {
					return snmp.Value{}, false
				}
				return snmp.NewGauge32(get(d)), true
			}}
		}
		entries = append(entries,
			diskField(1, func(d collect.Disk) uint32 { return uint32(d.TotalKB) }),
			diskField(2, func(d collect.Disk) uint32 { return uint32(d.UsedKB) }),
			diskField(3, func(d collect.Disk) uint32 { return uint32(d.FreeKB) }),
			diskField(4, func(d collect.Disk) uint32 { return d.BlockUsedPercent }),
			diskField(5, func(d collect.Disk) uint32 { return d.InodeUsedPercent }),
		)
	}

	if len(cfg.WirelessInterfaces) > 0 {
		wirelessRoot := append(privateRoot.Copy(), 5)
		for i, name := range cfg.WirelessInterfaces {
			row := i + 1
			name := name
			signalOID := append(wirelessRoot.Copy(), 1, row)
			noiseOID := append(wirelessRoot.Copy(), 2, row)
			entries = append(entries,
				Entry{OID: signalOID, Tier: TierFull, refresh: func() (snmp.Value, bool) {
					w, ok := c.Wireless(name)
					if !ok {
						return snmp.Value{}, false
					}
					return snmp.NewInteger(w.SignalDBm), true
				}},
				Entry{OID: noiseOID, Tier: TierFull, refresh: func() (snmp.Value, bool) {
					w, ok := c.Wireless(name)
					if !ok {
						return snmp.Value{}, false
					}
					return snmp.NewInteger(w.NoiseDBm), true
				}},
			)
		}
	}

	return entries
}
