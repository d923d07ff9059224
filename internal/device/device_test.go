package device

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakePort replays chunks; an empty chunk simulates a read timeout and an
// exhausted script keeps timing out.
type fakePort struct {
	mu     sync.Mutex
	chunks []string
	err    error
	closed bool
}

func (p *fakePort) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.chunks) == 0 {
		if p.err != nil {
			return 0, p.err
		}
		return 0, nil
	}
	c := p.chunks[0]
	n := copy(b, c)
	if n < len(c) {
		p.chunks[0] = c[n:]
	} else {
		p.chunks = p.chunks[1:]
	}
	return n, nil
}

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

type opener struct {
	calls int
	ports []*fakePort
	err   error
}

func (o *opener) open(string, int) (Port, error) {
	o.calls++
	if o.err != nil {
		return nil, o.err
	}
	if len(o.ports) == 0 {
		return &fakePort{}, nil
	}
	p := o.ports[0]
	o.ports = o.ports[1:]
	return p, nil
}

func newTestManager(o *opener) *Manager {
	m := NewManager(Options{Address: "/dev/ttyTEST", BaudRate: 9600, Open: o.open})
	m.settle = 0
	return m
}

func TestEnsureConnected_idempotent(t *testing.T) {
	o := &opener{}
	m := newTestManager(o)

	if !m.EnsureConnected(context.Background()) {
		t.Fatal("first EnsureConnected = false; want true")
	}
	if !m.EnsureConnected(context.Background()) {
		t.Fatal("second EnsureConnected = false; want true")
	}
	if o.calls != 1 {
		t.Errorf("open calls = %d; want 1", o.calls)
	}
	if !m.Connected() {
		t.Error("Connected() = false after connect")
	}
}

func TestEnsureConnected_openFails(t *testing.T) {
	o := &opener{err: errors.New("no such file or directory")}
	m := newTestManager(o)

	if m.EnsureConnected(context.Background()) {
		t.Fatal("EnsureConnected = true; want false")
	}
	if m.Connected() {
		t.Error("Connected() = true after failed open")
	}
	if m.EnsureConnected(context.Background()) {
		t.Fatal("retry EnsureConnected = true; want false")
	}
	if o.calls != 2 {
		t.Errorf("open calls = %d; want 2 (no caching of failure)", o.calls)
	}
}

func TestEnsureConnected_warnsOncePerOutage(t *testing.T) {
	var buf bytes.Buffer
	o := &opener{err: errors.New("no such file or directory")}
	m := NewManager(Options{
		Address: "/dev/ttyTEST",
		Open:    o.open,
		Logger:  slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	m.settle = 0

	for i := 0; i < 5; i++ {
		m.EnsureConnected(context.Background())
	}
	if got := strings.Count(buf.String(), "level=WARN"); got != 1 {
		t.Errorf("warnings while unplugged = %d; want 1\n%s", got, buf.String())
	}
	if got := strings.Count(buf.String(), "level=DEBUG"); got != 4 {
		t.Errorf("debug lines while unplugged = %d; want 4", got)
	}

	// A successful connect ends the outage; the next failure warns again.
	o.err = nil
	if !m.EnsureConnected(context.Background()) {
		t.Fatal("connect failed")
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	o.err = errors.New("no such file or directory")
	m.EnsureConnected(context.Background())
	if got := strings.Count(buf.String(), "level=WARN"); got != 2 {
		t.Errorf("warnings after reconnect and new outage = %d; want 2", got)
	}
}

func TestEnsureConnected_cancelledDuringSettle(t *testing.T) {
	p := &fakePort{}
	o := &opener{ports: []*fakePort{p}}
	m := newTestManager(o)
	m.settle = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if m.EnsureConnected(ctx) {
		t.Fatal("EnsureConnected with cancelled ctx = true; want false")
	}
	if !p.closed {
		t.Error("port opened during cancelled settle was not closed")
	}
}

func TestReadAvailableLine(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   []string
	}{
		{name: "nothing waiting", chunks: nil, want: nil},
		{name: "one line", chunks: []string{"{\"temperature\":20.0,\"humidity\":45.5}\n"}, want: []string{`{"temperature":20.0,"humidity":45.5}`}},
		{name: "line split across reads", chunks: []string{`{"temper`, `ature":20}` + "\n"}, want: []string{`{"temperature":20}`}},
		{name: "partial line on timeout", chunks: []string{`{"temperature":2`, ""}, want: []string{`{"temperature":2`}},
		{name: "two lines in one read", chunks: []string{"a\nb\n"}, want: []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePort{chunks: append([]string(nil), tt.chunks...)}
			m := newTestManager(&opener{ports: []*fakePort{p}})
			if !m.EnsureConnected(context.Background()) {
				t.Fatal("connect failed")
			}
			var got []string
			for {
				line, ok := m.ReadAvailableLine()
				if !ok {
					break
				}
				got = append(got, string(line))
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("lines = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestReadAvailableLine_disconnected(t *testing.T) {
	m := newTestManager(&opener{})
	if line, ok := m.ReadAvailableLine(); ok || line != nil {
		t.Errorf("ReadAvailableLine on closed manager = %q, %v; want nil, false", line, ok)
	}
}

func TestReadAvailableLine_ioErrorClosesPort(t *testing.T) {
	broken := &fakePort{err: errors.New("device unplugged")}
	fresh := &fakePort{chunks: []string{"ok\n"}}
	o := &opener{ports: []*fakePort{broken, fresh}}
	m := newTestManager(o)

	if !m.EnsureConnected(context.Background()) {
		t.Fatal("connect failed")
	}
	if _, ok := m.ReadAvailableLine(); ok {
		t.Fatal("ReadAvailableLine after I/O error = ok; want not ok")
	}
	if !broken.closed {
		t.Error("broken port was not closed")
	}
	if m.Connected() {
		t.Error("Connected() = true after I/O error")
	}

	if !m.EnsureConnected(context.Background()) {
		t.Fatal("reconnect failed")
	}
	if o.calls != 2 {
		t.Errorf("open calls = %d; want 2", o.calls)
	}
	line, ok := m.ReadAvailableLine()
	if !ok || string(line) != "ok" {
		t.Errorf("line after reconnect = %q, %v; want ok, true", line, ok)
	}
}

func TestReadAvailableLine_overlongRecordIsFlushed(t *testing.T) {
	p := &fakePort{chunks: []string{strings.Repeat("x", maxLineLen+10)}}
	m := newTestManager(&opener{ports: []*fakePort{p}})
	m.EnsureConnected(context.Background())

	line, ok := m.ReadAvailableLine()
	if !ok {
		t.Fatal("no line returned")
	}
	if len(line) < maxLineLen {
		t.Errorf("len(line) = %d; want >= %d", len(line), maxLineLen)
	}
}

func TestClose(t *testing.T) {
	p := &fakePort{}
	m := newTestManager(&opener{ports: []*fakePort{p}})
	m.EnsureConnected(context.Background())

	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !p.closed || m.Connected() {
		t.Errorf("closed = %v, Connected = %v; want true, false", p.closed, m.Connected())
	}
	if err := m.Close(); err != nil {
		t.Errorf("second Close = %v; want nil", err)
	}
}
