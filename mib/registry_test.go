package mib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgeo-scada/mini-snmpd/collect"
	"github.com/edgeo-scada/mini-snmpd/snmp"
)

type fakeCollector struct {
	uptime     collect.Uptime
	uptimeOK   bool
	load       collect.LoadAverage
	loadOK     bool
	mem        collect.Memory
	memOK      bool
	cpu        collect.CPU
	cpuOK      bool
	disks      map[string]collect.Disk
	interfaces map[string]collect.Interface
	wireless   map[string]collect.Wireless
}

func (f *fakeCollector) Uptime() (collect.Uptime, bool)           { return f.uptime, f.uptimeOK }
func (f *fakeCollector) LoadAverage() (collect.LoadAverage, bool) { return f.load, f.loadOK }
func (f *fakeCollector) Memory() (collect.Memory, bool)           { return f.mem, f.memOK }
func (f *fakeCollector) CPU() (collect.CPU, bool)                 { return f.cpu, f.cpuOK }
func (f *fakeCollector) Disk(mount string) (collect.Disk, bool) {
	d, ok := f.disks[mount]
	return d, ok
}
func (f *fakeCollector) Interface(name string) (collect.Interface, bool) {
	i, ok := f.interfaces[name]
	return i, ok
}
func (f *fakeCollector) Wireless(name string) (collect.Wireless, bool) {
	w, ok := f.wireless[name]
	return w, ok
}

func testConfig() RegistryConfig {
	return RegistryConfig{
		Description:        "mini-snmpd test agent",
		VendorOID:          snmp.MustParseOID("1.3.6.1.4.1.99999"),
		Contact:            "ops@example.com",
		Name:               "test-host",
		Location:           "rack 1",
		Disks:              []string{"/", "/data"},
		Interfaces:         []string{"eth0", "wlan0"},
		WirelessInterfaces: []string{"wlan0"},
	}
}

func TestBuildEntriesProducesAStoreWithoutDuplicates(t *testing.T) {
	c := &fakeCollector{}
	entries := BuildEntries(testConfig(), c)

	store, err := NewStore(entries)
	require.NoError(t, err)
	assert.Equal(t, len(entries), store.Len())
}

func TestBuildEntriesSystemGroupIsStatic(t *testing.T) {
	c := &fakeCollector{}
	cfg := testConfig()
	store, err := NewStore(BuildEntries(cfg, c))
	require.NoError(t, err)

	e, ok := store.Lookup(snmp.OIDSysDescr)
	require.True(t, ok)
	assert.Equal(t, TierStatic, e.Tier)
	assert.Equal(t, cfg.Description, string(e.Value.Str))

	e, ok = store.Lookup(snmp.OIDSysServices)
	require.True(t, ok)
	assert.Equal(t, int32(72), e.Value.Int)
}

func TestBuildEntriesInterfaceRowsRefreshFromCollector(t *testing.T) {
	c := &fakeCollector{
		interfaces: map[string]collect.Interface{
			"eth0": {AdminStatus: collect.IfUp, OperStatus: collect.IfUp, Speed: 1000000000, InOctets: 42},
		},
	}
	store, err := NewStore(BuildEntries(testConfig(), c))
	require.NoError(t, err)

	store.Refresh(true)

	speedOID := ifColumnOID(colIfSpeed, 1)
	e, ok := store.Lookup(speedOID)
	require.True(t, ok)
	assert.Equal(t, uint32(1000000000), e.Value.Uint)

	inOctetsOID := ifColumnOID(colIfInOctets, 1)
	e, ok = store.Lookup(inOctetsOID)
	require.True(t, ok)
	assert.Equal(t, uint64(42), uint64(e.Value.Uint))
}

func TestBuildEntriesWirelessRowOnlyForConfiguredInterfaces(t *testing.T) {
	c := &fakeCollector{
		wireless: map[string]collect.Wireless{
			"wlan0": {SignalDBm: -45, NoiseDBm: -90},
		},
	}
	store, err := NewStore(BuildEntries(testConfig(), c))
	require.NoError(t, err)
	store.Refresh(true)

	signalOID := append(privateRoot.Copy(), 5, 1, 1)
	e, ok := store.Lookup(signalOID)
	require.True(t, ok)
	assert.Equal(t, int32(-45), e.Value.Int)
}

func TestBuildEntriesCollectorFailureKeepsLastValue(t *testing.T) {
	c := &fakeCollector{
		mem: collect.Memory{TotalKB: 1024}, memOK: true,
	}
	store, err := NewStore(BuildEntries(testConfig(), c))
	require.NoError(t, err)
	store.Refresh(true)

	memTotalOID := append(privateRoot.Copy(), 2, 1)
	e, ok := store.Lookup(memTotalOID)
	require.True(t, ok)
	assert.Equal(t, uint32(1024), e.Value.Uint)

	c.memOK = false
	store.Refresh(true)

	e, ok = store.Lookup(memTotalOID)
	require.True(t, ok)
	assert.Equal(t, uint32(1024), e.Value.Uint, "value must survive a collector failure")
}

func TestBuildEntriesNoWirelessInterfacesOmitsGroup(t *testing.T) {
	cfg := testConfig()
	cfg.WirelessInterfaces = nil
	c := &fakeCollector{}
	entries := BuildEntries(cfg, c)

	for _, e := range entries {
		assert.False(t, e.OID.HasPrefix(append(privateRoot.Copy(), 5)))
	}
}

func TestBuildEntriesSortedAscending(t *testing.T) {
	c := &fakeCollector{}
	store, err := NewStore(BuildEntries(testConfig(), c))
	require.NoError(t, err)

	all := store.All()
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].OID.Compare(all[i].OID) < 0, "entries must be strictly ascending")
	}
}
