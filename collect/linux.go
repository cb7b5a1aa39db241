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

//go:build linux

package collect

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// LinuxCollector implements Collector by reading procfs and issuing the
// same ioctls mini_snmpd's original Linux backend does.
type LinuxCollector struct {
	uptimeOnce  sync.Once
	uptimeOrigin uint32
}

// NewLinuxCollector returns a Collector backed by /proc and ioctl(2).
func NewLinuxCollector() *LinuxCollector {
	return &LinuxCollector{}
}

func readFile(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Uptime reports process uptime (since this collector's first call) and
// system uptime (since boot), both in TimeTicks.
func (c *LinuxCollector) Uptime() (Uptime, bool) {
	systemTicks, ok := c.systemUptimeTicks()
	if !ok {
		return Uptime{}, false
	}
	c.uptimeOnce.Do(func() {
		c.uptimeOrigin = systemTicks
	})
	return Uptime{
		ProcessTicks: systemTicks - c.uptimeOrigin,
		SystemTicks:  systemTicks,
	}, true
}

func (c *LinuxCollector) systemUptimeTicks() (uint32, bool) {
	buf, ok := readFile("/proc/uptime")
	if !ok {
		return 0, false
	}
	fields := strings.Fields(buf)
	if len(fields) == 0 {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	return uint32(seconds * 100), true
}

func (c *LinuxCollector) LoadAverage() (LoadAverage, bool) {
	buf, ok := readFile("/proc/loadavg")
	if !ok {
		return LoadAverage{}, false
	}
	fields := strings.Fields(buf)
	if len(fields) < 3 {
		return LoadAverage{}, false
	}
	var avg [3]uint32
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return LoadAverage{}, false
		}
		avg[i] = uint32(v * 100)
	}
	return LoadAverage{Load1: avg[0], Load5: avg[1], Load15: avg[2]}, true
}

func (c *LinuxCollector) Memory() (Memory, bool) {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return Memory{}, false
	}
	defer f.Close()

	wanted := map[string]*uint64{}
	var m Memory
	wanted["MemTotal:"] = &m.TotalKB
	wanted["MemFree:"] = &m.FreeKB
	wanted["Shmem:"] = &m.SharedKB
	wanted["Buffers:"] = &m.BufferedKB
	wanted["Cached:"] = &m.CachedKB

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		if dst, ok := wanted[fields[0]]; ok {
			v, err := strconv.ParseUint(fields[1], 10, 64)
			if err == nil {
				*dst = v
			}
		}
	}
	return m, true
}

func (c *LinuxCollector) CPU() (CPU, bool) {
	f, err := os.Open("/proc/stat")
	if err != nil {
		return CPU{}, false
	}
	defer f.Close()

	var cpu CPU
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "cpu":
			if len(fields) < 5 {
				continue
			}
			cpu.User, _ = strconv.ParseUint(fields[1], 10, 64)
			cpu.Nice, _ = strconv.ParseUint(fields[2], 10, 64)
			cpu.System, _ = strconv.ParseUint(fields[3], 10, 64)
			cpu.Idle, _ = strconv.ParseUint(fields[4], 10, 64)
		case "intr":
			if len(fields) >= 2 {
				cpu.Irqs, _ = strconv.ParseUint(fields[1], 10, 64)
			}
		case "ctxt":
			if len(fields) >= 2 {
				cpu.ContextSwitches, _ = strconv.ParseUint(fields[1], 10, 64)
			}
		}
	}
	return cpu, true
}

// Disk reports kibibyte usage for mount, with block/inode percentages
// rounded up via the same ceiling formula as the C original: nonzero
// occupation never rounds down to 0%.
func (c *LinuxCollector) Disk(mount string) (Disk, bool) {
	var fs unix.Statfs_t
	if err := unix.Statfs(mount, &fs); err != nil {
		return Disk{}, false
	}

	blockSize := uint64(fs.Bsize)
	total := fs.Blocks * blockSize / 1024
	free := fs.Bfree * blockSize / 1024
	used := (fs.Blocks - fs.Bfree) * blockSize / 1024

	var blockPct uint32
	if fs.Blocks > 0 {
		blockPct = uint32(((fs.Blocks-fs.Bfree)*100 + fs.Blocks - 1) / fs.Blocks)
	}
	var inodePct uint32
	if fs.Files > 0 {
		inodePct = uint32(((fs.Files-fs.Ffree)*100 + fs.Files - 1) / fs.Files)
	}

	return Disk{
		TotalKB:           total,
		FreeKB:            free,
		UsedKB:            used,
		BlockUsedPercent:  blockPct,
		InodeUsedPercent:  inodePct,
	}, true
}

// Interface reports ifTable-shaped counters for name, combining
// SIOCGIFFLAGS/SIOCGIFHWADDR ioctls with a /proc/net/dev counter scrape.
func (c *LinuxCollector) Interface(name string) (Interface, bool) {
	var iface Interface

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		iface.AdminStatus = IfUnknown
		iface.OperStatus = IfUnknown
		return iface, true
	}
	defer unix.Close(fd)

	var ifr [40]byte
	copy(ifr[:unix.IFNAMSIZ-1], name)

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), unix.SIOCGIFFLAGS, uintptr(unsafe.Pointer(&ifr[0]))); errno != 0 {
		iface.AdminStatus = IfUnknown
		iface.OperStatus = IfUnknown
	} else {
		flags := *(*uint16)(unsafe.Pointer(&ifr[unix.IFNAMSIZ]))
		if flags&unix.IFF_UP != 0 {
			iface.AdminStatus = IfUp
			if flags&unix.IFF_RUNNING != 0 {
				iface.OperStatus = IfUp
			} else {
				iface.OperStatus = IfLowerLayerDown
			}
		} else {
			iface.AdminStatus = IfDown
			iface.OperStatus = IfDown
		}
	}

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), unix.SIOCGIFHWADDR, uintptr(unsafe.Pointer(&ifr[0]))); errno == 0 {
		copy(iface.MAC[:], ifr[unix.IFNAMSIZ+2:unix.IFNAMSIZ+8])
	}

	rx, tx, ok := readNetDevCounters(name)
	if ok {
		iface.InOctets, iface.InUcastPkts, iface.InErrors, iface.InDiscards = rx[0], rx[1], rx[2], rx[3]
		iface.OutOctets, iface.OutUcastPkts, iface.OutErrors, iface.OutDiscards = tx[0], tx[1], tx[2], tx[3]
	}

	return iface, true
}

// readNetDevCounters parses the rx/tx columns of /proc/net/dev for one
// interface: rx bytes/packets/errs/drop (columns 0-3), tx bytes/packets/
// errs/drop (columns 8-11), matching the column layout the kernel emits.
func readNetDevCounters(name string) (rx, tx [4]uint64, ok bool) {
	f, err := os.Open("/proc/net/dev")
	if err != nil {
		return rx, tx, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		ifname := strings.TrimSpace(line[:idx])
		if ifname != name {
			continue
		}
		fields := strings.Fields(line[idx+1:])
		if len(fields) < 12 {
			return rx, tx, false
		}
		for i := 0; i < 4; i++ {
			rx[i], _ = strconv.ParseUint(fields[i], 10, 64)
			tx[i], _ = strconv.ParseUint(fields[8+i], 10, 64)
		}
		return rx, tx, true
	}
	return rx, tx, false
}

// Wireless extension ioctl numbers (linux/wireless.h), not exposed by
// golang.org/x/sys/unix.
const (
	siocgiwstats = 0x8B0F
	siocgiwrange = 0x8B0B
)

type iwQuality struct {
	Qual, Level, Noise, Updated uint8
}

type iwStatistics struct {
	Status  uint16
	Qual    iwQuality
	Discard struct{ Nwid, Code, Fragment, Retries, Misc uint32 }
	Missed  struct{ Beacon uint32 }
}

const (
	iwQualRCPI          = 0x80
	iwQualDBM           = 0x08
	iwQualLevelInvalid  = 0x20
	iwQualNoiseInvalid  = 0x40
)

// Wireless reports signal/noise for a wireless interface name, via the
// SIOCGIWSTATS ioctl the way get_wireless_sn does in the C original.
func (c *LinuxCollector) Wireless(name string) (Wireless, bool) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		return Wireless{}, false
	}
	defer unix.Close(fd)

	var ifrName [unix.IFNAMSIZ]byte
	copy(ifrName[:], name)

	var stats iwStatistics
	req := struct {
		Name    [unix.IFNAMSIZ]byte
		Pointer uintptr
		Length  uint16
		Flags   uint16
	}{Name: ifrName, Pointer: uintptr(unsafe.Pointer(&stats)), Length: uint16(unsafe.Sizeof(stats))}

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), siocgiwstats, uintptr(unsafe.Pointer(&req))); errno != 0 {
		return Wireless{}, false
	}

	q := WirelessQuality{
		Level:        int(stats.Qual.Level),
		Noise:        int(stats.Qual.Noise),
		LevelInvalid: stats.Qual.Updated&iwQualLevelInvalid != 0,
		NoiseInvalid: stats.Qual.Updated&iwQualNoiseInvalid != 0,
	}

	switch {
	case stats.Qual.Updated&iwQualRCPI != 0:
		q.RCPI = true
	case stats.Qual.Updated&iwQualDBM != 0:
		q.DBM = true
	default:
		var rng struct {
			pad      [300]byte
			MaxQual  iwQuality
		}
		rngReq := req
		rngReq.Pointer = uintptr(unsafe.Pointer(&rng))
		rngReq.Length = uint16(unsafe.Sizeof(rng))
		if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), siocgiwrange, uintptr(unsafe.Pointer(&rngReq))); errno == 0 {
			q.MaxQualLevel = int(rng.MaxQual.Level)
			q.MaxQualNoise = int(rng.MaxQual.Noise)
		}
	}

	return NormalizeWirelessQuality(q), true
}
