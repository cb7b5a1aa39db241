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

// mini-snmpd is a minimal read-only SNMP v1/v2c agent.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"log/syslog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/edgeo-scada/mini-snmpd/agent"
	"github.com/edgeo-scada/mini-snmpd/collect"
	"github.com/edgeo-scada/mini-snmpd/mib"
)

// Exit codes, per spec.md §6: 0 normal, a distinct non-zero for
// argument errors and for unrecoverable system-call failures.
const (
	exitOK          = 0
	exitArgError    = 2
	exitSyscallFail = 3
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitArgError)
	}
}

func runAgent(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	if !foreground {
		if err := daemonize(); err != nil {
			fmt.Fprintln(os.Stderr, "mini-snmpd: daemonize:", err)
			os.Exit(exitSyscallFail)
		}
	}

	logger := buildLogger()
	cfg.Logger = logger

	linuxCollector := collect.NewLinuxCollector()
	entries := mib.BuildEntries(mib.RegistryConfig{
		Description:        cfg.Description,
		VendorOID:          cfg.VendorOID,
		Contact:            cfg.Contact,
		Name:               cfg.SysName,
		Location:           cfg.Location,
		Disks:              cfg.Disks,
		Interfaces:         cfg.Interfaces,
		WirelessInterfaces: cfg.WirelessInterfaces,
	}, linuxCollector)

	store, err := mib.NewStore(entries)
	if err != nil {
		return fmt.Errorf("mini-snmpd: building MIB: %w", err)
	}

	metrics := &agent.Metrics{}
	dispatcher := agent.NewDispatcher(&cfg, store, metrics)
	transport := agent.NewTransport(&cfg, dispatcher, store, metrics)

	if err := transport.Listen(); err != nil {
		logger.Error("failed to open listening sockets", "err", err)
		os.Exit(exitSyscallFail)
	}
	defer transport.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig.String())
		cancel()
	}()

	logger.Info("mini-snmpd starting",
		"udp_port", cfg.UDPPort, "tcp_port", cfg.TCPPort,
		"refresh_interval", cfg.RefreshInterval)
	transport.Run(ctx)
	logger.Info("mini-snmpd exiting", "snapshot", metrics.Snapshot())

	return nil
}

// buildLogger constructs the slog.Logger per spec.md §6/SPEC_FULL.md
// §A: text handler to stderr by default, syslog (LOG_DAEMON) when
// --syslog is set, debug level when --verbose is set.
func buildLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	if syslogOn {
		writer, err := syslog.New(syslog.LOG_DAEMON|syslog.LOG_INFO, "mini-snmpd")
		if err != nil {
			fmt.Fprintln(os.Stderr, "mini-snmpd: syslog unavailable, falling back to stderr:", err)
		} else {
			return slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level}))
		}
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// daemonize re-execs the process under a new session, since Go cannot
// safely fork(2) a multi-threaded runtime in place the way
// original_source/mini_snmpd.c's daemon_init does. The parent exits
// immediately once the child has successfully started its own session;
// the child is distinguished by an environment marker rather than a
// fork return value.
func daemonize() error {
	const marker = "MINI_SNMPD_DAEMONIZED=1"
	for _, e := range os.Environ() {
		if e == marker {
			// SysProcAttr.Setsid already made this process a session
			// leader; calling setsid(2) again would fail with EPERM.
			return nil
		}
	}

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer devNull.Close()

	proc, err := os.StartProcess(os.Args[0], os.Args, &os.ProcAttr{
		Env:   append(os.Environ(), marker),
		Files: []*os.File{devNull, devNull, devNull},
		Sys:   &syscall.SysProcAttr{Setsid: true},
	})
	if err != nil {
		return err
	}
	_ = proc.Release()
	os.Exit(exitOK)
	return nil
}
