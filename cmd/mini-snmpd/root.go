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

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/edgeo-scada/mini-snmpd/agent"
	"github.com/edgeo-scada/mini-snmpd/snmp"
)

var (
	udpPort      int
	tcpPort      int
	community    string
	description  string
	vendorOID    string
	location     string
	contact      string
	sysName      string
	disks        string
	interfaces   string
	wireless     string
	listenDevice string
	timeoutSecs  int
	authEnabled  bool
	foreground   bool
	syslogOn     bool
	verbose      bool
	useIPv4      bool
	useIPv6      bool
)

var rootCmd = &cobra.Command{
	Use:   "mini-snmpd",
	Short: "A minimal read-only SNMP v1/v2c agent",
	Long: `mini-snmpd is a minimal read-only SNMP v1/v2c agent exposing the
standard system and ifTable subtrees plus host CPU, memory, load, and
disk counters under a vendor-private subtree.

It listens on both UDP and TCP, never accepts SetRequest (every set is
answered readOnly/noAccess), and refreshes its MIB on a fixed interval.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runAgent,
}

func init() {
	flags := rootCmd.Flags()
	flags.IntVarP(&udpPort, "udp-port", "p", 161, "UDP listen port")
	flags.IntVarP(&tcpPort, "tcp-port", "P", 161, "TCP listen port")
	flags.StringVarP(&community, "community", "c", "public", "SNMP community string")
	flags.StringVarP(&description, "description", "D", "mini-snmpd", "sysDescr value")
	flags.StringVarP(&vendorOID, "vendor", "V", "1.3.6.1.4.1.99999", "sysObjectID value")
	flags.StringVarP(&location, "location", "L", "", "sysLocation value")
	flags.StringVarP(&contact, "contact", "C", "", "sysContact value")
	flags.StringVarP(&disks, "disks", "d", "/", "comma/semicolon/colon-separated mount points to expose")
	flags.StringVarP(&interfaces, "interfaces", "i", "", "comma/semicolon/colon-separated network interfaces to expose")
	flags.StringVarP(&wireless, "wireless-interfaces", "w", "", "comma/semicolon/colon-separated wireless interfaces to expose")
	flags.StringVarP(&listenDevice, "listen", "I", "", "bind listening sockets to this network device")
	flags.IntVarP(&timeoutSecs, "timeout", "t", 5, "MIB refresh interval, in seconds")
	flags.BoolVarP(&authEnabled, "auth", "a", false, "reject requests whose community string doesn't match")
	flags.BoolVarP(&foreground, "foreground", "n", false, "stay in the foreground instead of daemonizing")
	flags.BoolVarP(&syslogOn, "syslog", "s", false, "log to syslog (LOG_DAEMON) instead of stderr")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")
	flags.BoolVarP(&useIPv4, "use-ipv4", "4", true, "listen on IPv4")
	flags.BoolVarP(&useIPv6, "use-ipv6", "6", false, "listen on IPv6")

	for _, name := range []string{
		"udp-port", "tcp-port", "community", "description", "vendor", "location",
		"contact", "disks", "interfaces", "wireless-interfaces", "listen", "timeout",
		"auth", "foreground", "syslog", "verbose", "use-ipv4", "use-ipv6",
	} {
		viper.BindPFlag(name, flags.Lookup(name))
	}

	viper.SetConfigName("mini-snmpd")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".mini-snmpd")
	}
}

// buildConfig assembles the agent's immutable Config from whatever mix
// of flags, config file, and defaults viper resolved, per spec.md §6.
func buildConfig() (agent.Config, error) {
	_ = viper.ReadInConfig() // absent config file is not an error

	oid, err := parseVendorOID(viper.GetString("vendor"))
	if err != nil {
		return agent.Config{}, fmt.Errorf("invalid --vendor: %w", err)
	}

	return agent.Config{
		UDPPort:            viper.GetInt("udp-port"),
		TCPPort:            viper.GetInt("tcp-port"),
		Community:          viper.GetString("community"),
		AuthEnabled:        viper.GetBool("auth"),
		Description:        viper.GetString("description"),
		VendorOID:          oid,
		Location:           viper.GetString("location"),
		Contact:             viper.GetString("contact"),
		SysName:            sysNameOrHostname(),
		Disks:              splitList(viper.GetString("disks")),
		Interfaces:         splitList(viper.GetString("interfaces")),
		WirelessInterfaces: splitList(viper.GetString("wireless-interfaces")),
		ListenDevice:       viper.GetString("listen"),
		UseIPv4:            viper.GetBool("use-ipv4"),
		UseIPv6:            viper.GetBool("use-ipv6"),
		RefreshInterval:    time.Duration(viper.GetInt("timeout")) * time.Second,
		MaxVarbinds:        agent.DefaultMaxVarbinds,
		MaxClients:         agent.DefaultMaxClients,
		PacketBuffer:       agent.DefaultPacketBuffer,
	}, nil
}

func parseVendorOID(s string) (snmp.OID, error) {
	return snmp.ParseOID(s)
}

func sysNameOrHostname() string {
	if name, err := os.Hostname(); err == nil {
		return name
	}
	return "mini-snmpd"
}

// splitList accepts comma, semicolon, or colon as a separator, matching
// original_source/mini_snmpd.c's own parsing of -d/-i/-w (it tokenizes on
// any of those three characters rather than picking one).
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ':'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
