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
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/edgeo-scada/mini-snmpd/mib"
	"github.com/edgeo-scada/mini-snmpd/snmp"
)

// Transport owns the UDP socket, the TCP listener, and the accepted
// session table, and runs the single-owner event loop spec.md §4.6
// describes. The C original waits on select(2) across every socket and
// session fd in one thread; Go's netpoller has no equivalent exposed
// call, so the same single-owner guarantee (the MIB and session table
// are only ever touched from one goroutine) is achieved instead by a
// fan-in: dedicated reader goroutines do nothing but blocking I/O and
// post raw events to a channel, and this type's Run loop is the sole
// consumer, interpreter, and mutator.
type Transport struct {
	cfg        *Config
	dispatcher *Dispatcher
	store      *mib.Store
	sessions   *SessionTable
	metrics    *Metrics

	udpConn  *net.UDPConn
	listener *net.TCPListener
}

func NewTransport(cfg *Config, dispatcher *Dispatcher, store *mib.Store, metrics *Metrics) *Transport {
	return &Transport{
		cfg:        cfg,
		dispatcher: dispatcher,
		store:      store,
		metrics:    metrics,
		sessions:   NewSessionTable(cfg.MaxClients, metrics),
	}
}

// Listen opens the UDP socket and the TCP listening socket, applying
// SO_REUSEADDR and, when configured, SO_BINDTODEVICE, then listen(2)
// with a fixed backlog of 128 — the same two socket options and the
// same backlog original_source/mini_snmpd.c's main() sets before
// entering its select loop (SPEC_FULL.md §C.5).
func (tr *Transport) Listen() error {
	family := unix.AF_INET
	if tr.cfg.UseIPv6 {
		family = unix.AF_INET6
	}

	udpConn, err := tr.openUDP(family)
	if err != nil {
		return err
	}
	tr.udpConn = udpConn

	listener, err := tr.openTCP(family)
	if err != nil {
		tr.udpConn.Close()
		return err
	}
	tr.listener = listener

	return nil
}

func (tr *Transport) openUDP(family int) (*net.UDPConn, error) {
	fd, err := unix.Socket(family, unix.SOCK_DGRAM, unix.IPPROTO_UDP)
	if err != nil {
		return nil, fmt.Errorf("agent: socket udp: %w", err)
	}
	if err := tr.applySockOpts(fd); err != nil {
		unix.Close(fd)
		return nil, err
	}
	if err := bindFd(fd, family, tr.cfg.UDPPort); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("agent: bind udp: %w", err)
	}

	f := os.NewFile(uintptr(fd), "mini-snmpd-udp")
	defer f.Close()
	pc, err := net.FilePacketConn(f)
	if err != nil {
		return nil, fmt.Errorf("agent: filepacketconn: %w", err)
	}
	return pc.(*net.UDPConn), nil
}

func (tr *Transport) openTCP(family int) (*net.TCPListener, error) {
	fd, err := unix.Socket(family, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, fmt.Errorf("agent: socket tcp: %w", err)
	}
	if err := tr.applySockOpts(fd); err != nil {
		unix.Close(fd)
		return nil, err
	}
	if err := bindFd(fd, family, tr.cfg.TCPPort); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("agent: bind tcp: %w", err)
	}
	if err := unix.Listen(fd, 128); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("agent: listen tcp: %w", err)
	}

	f := os.NewFile(uintptr(fd), "mini-snmpd-tcp")
	defer f.Close()
	ln, err := net.FileListener(f)
	if err != nil {
		return nil, fmt.Errorf("agent: filelistener: %w", err)
	}
	return ln.(*net.TCPListener), nil
}

func (tr *Transport) applySockOpts(fd int) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return fmt.Errorf("agent: setsockopt SO_REUSEADDR: %w", err)
	}
	if tr.cfg.ListenDevice != "" {
		if err := unix.SetsockoptString(fd, unix.SOL_SOCKET, unix.SO_BINDTODEVICE, tr.cfg.ListenDevice); err != nil {
			return fmt.Errorf("agent: setsockopt SO_BINDTODEVICE: %w", err)
		}
	}
	return nil
}

func bindFd(fd, family, port int) error {
	if family == unix.AF_INET6 {
		return unix.Bind(fd, &unix.SockaddrInet6{Port: port})
	}
	return unix.Bind(fd, &unix.SockaddrInet4{Port: port})
}

// Close releases the process-lifetime sockets. Accepted sessions are
// closed individually as they error out or get evicted.
func (tr *Transport) Close() {
	if tr.udpConn != nil {
		tr.udpConn.Close()
	}
	if tr.listener != nil {
		tr.listener.Close()
	}
}

type eventKind int

const (
	eventUDPDatagram eventKind = iota
	eventAccept
	eventSessionData
	eventSessionClosed
)

type transportEvent struct {
	kind    eventKind
	udpAddr *net.UDPAddr
	data    []byte
	conn    net.Conn
	session *Session
}

// Run drives the event loop until ctx is canceled (spec.md §5: SIGTERM
// or SIGHUP sets the quit flag, and the next exit from the readiness
// wait returns). The first MIB refresh is always full (SPEC_FULL.md
// §C.7); afterwards, a full refresh happens whenever the configured
// interval has elapsed since the last one, and a partial refresh
// happens on every other iteration.
func (tr *Transport) Run(ctx context.Context) {
	events := make(chan transportEvent, 64)

	go tr.readUDPLoop(ctx, events)
	go tr.acceptLoop(ctx, events)

	tr.store.Refresh(true)
	tr.metrics.FullRefreshes.Add(1)
	nextFull := time.Now().Add(tr.cfg.RefreshInterval)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			tr.handleEvent(ctx, ev, events)
		case <-ticker.C:
		}

		if time.Now().After(nextFull) {
			tr.store.Refresh(true)
			tr.metrics.FullRefreshes.Add(1)
			nextFull = time.Now().Add(tr.cfg.RefreshInterval)
		} else {
			tr.store.Refresh(false)
			tr.metrics.PartialRefreshes.Add(1)
		}

		tr.sessions.Compact()
	}
}

func (tr *Transport) readUDPLoop(ctx context.Context, events chan<- transportEvent) {
	buf := make([]byte, tr.cfg.PacketBuffer)
	for {
		if ctx.Err() != nil {
			return
		}
		n, addr, err := tr.udpConn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		select {
		case events <- transportEvent{kind: eventUDPDatagram, udpAddr: addr, data: data}:
		case <-ctx.Done():
			return
		}
	}
}

func (tr *Transport) acceptLoop(ctx context.Context, events chan<- transportEvent) {
	for {
		conn, err := tr.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		select {
		case events <- transportEvent{kind: eventAccept, conn: conn}:
		case <-ctx.Done():
			conn.Close()
			return
		}
	}
}

func (tr *Transport) readSessionLoop(ctx context.Context, s *Session, events chan<- transportEvent) {
	buf := make([]byte, tr.cfg.PacketBuffer)
	for {
		n, err := s.conn.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			select {
			case events <- transportEvent{kind: eventSessionData, session: s, data: data}:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			select {
			case events <- transportEvent{kind: eventSessionClosed, session: s}:
			case <-ctx.Done():
			}
			return
		}
	}
}

func (tr *Transport) handleEvent(ctx context.Context, ev transportEvent, events chan transportEvent) {
	switch ev.kind {
	case eventUDPDatagram:
		tr.handleUDP(ev)
	case eventAccept:
		s := tr.sessions.Accept(ev.conn)
		go tr.readSessionLoop(ctx, s, events)
	case eventSessionData:
		tr.handleSessionData(ev.session, ev.data)
	case eventSessionClosed:
		tr.sessions.Close(ev.session)
	}
}

func (tr *Transport) handleUDP(ev transportEvent) {
	resp, ok := tr.dispatcher.Handle(ev.data)
	if !ok {
		return
	}
	n, err := tr.udpConn.WriteToUDP(resp, ev.udpAddr)
	if err != nil || n != len(resp) {
		tr.cfg.logger().Warn("dropping short or failed UDP response", "err", err, "peer", ev.udpAddr)
	}
}

// handleSessionData appends newly read bytes to the session's receive
// buffer and dispatches every complete BER frame it can find, per
// spec.md §4.6 step 7 (a read chunk may contain zero, one, or several
// complete messages, or end mid-frame).
func (tr *Transport) handleSessionData(s *Session, data []byte) {
	if s.closed {
		return
	}
	s.touch()
	s.recvBuf = append(s.recvBuf, data...)

	for {
		total, ok, err := snmp.FrameLength(s.recvBuf)
		if err != nil {
			tr.cfg.logger().Warn("closing TCP session on malformed frame header", "err", err)
			tr.sessions.Close(s)
			return
		}
		if !ok {
			return
		}
		if total > tr.cfg.PacketBuffer {
			tr.cfg.logger().Warn("closing TCP session on oversized frame", "size", total)
			tr.sessions.Close(s)
			return
		}
		if len(s.recvBuf) < total {
			return
		}

		frame := make([]byte, total)
		copy(frame, s.recvBuf[:total])
		s.recvBuf = s.recvBuf[total:]

		resp, handled := tr.dispatcher.Handle(frame)
		if !handled {
			tr.cfg.logger().Warn("closing TCP session on malformed request")
			tr.sessions.Close(s)
			return
		}

		s.sendBuf = resp
		s.direction = DirectionOutbound
		tr.writeSession(s)
		if s.closed {
			return
		}
	}
}

func (tr *Transport) writeSession(s *Session) {
	s.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	n, err := s.conn.Write(s.sendBuf)
	if err != nil || n != len(s.sendBuf) {
		tr.cfg.logger().Warn("closing TCP session on short or failed write", "err", err)
		tr.sessions.Close(s)
		return
	}
	s.sendBuf = nil
	s.direction = DirectionInbound
	s.touch()
}
