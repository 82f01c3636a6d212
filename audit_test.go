package portalauth

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestChannelSinkDeliversEvents(t *testing.T) {
	sink := NewChannelSink(4)
	sink.Emit(context.Background(), AuditEvent{EventType: AuditLoginSuccess, UserID: "u1"})

	select {
	case ev := <-sink.Events():
		if ev.EventType != AuditLoginSuccess || ev.UserID != "u1" {
			t.Fatalf("unexpected event %+v", ev)
		}
	default:
		t.Fatal("expected a buffered event")
	}
}

func TestChannelSinkGivesUpOnDoneContext(t *testing.T) {
	sink := NewChannelSink(1)
	sink.Emit(context.Background(), AuditEvent{EventType: AuditLogout})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Buffer is full; a done context must not block the emitter.
	finished := make(chan struct{})
	go func() {
		sink.Emit(ctx, AuditEvent{EventType: AuditLogout})
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("emit blocked on a full buffer with a done context")
	}
}

func TestJSONWriterSinkWritesOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{EventType: AuditLoginSuccess, UserID: "u1", Success: true})
	sink.Emit(context.Background(), AuditEvent{EventType: AuditLogout, UserID: "u1", Success: true})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var ev AuditEvent
	if err := json.Unmarshal([]byte(lines[0]), &ev); err != nil {
		t.Fatalf("unmarshal line: %v", err)
	}
	if ev.EventType != AuditLoginSuccess {
		t.Fatalf("unexpected event type %q", ev.EventType)
	}
}

func TestDispatcherDisabledIsInert(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{Enabled: false}, nil)
	if d != nil {
		t.Fatal("disabled audit must not allocate a dispatcher")
	}
	d.Emit(context.Background(), AuditEvent{EventType: AuditLogout})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher must report zero drops")
	}
}

func TestDispatcherStampsAndDelivers(t *testing.T) {
	sink := NewChannelSink(8)
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 8}, sink)

	d.Emit(context.Background(), AuditEvent{EventType: AuditSessionRestored, UserID: "u1"})
	d.Close()

	select {
	case ev := <-sink.Events():
		if ev.Timestamp.IsZero() {
			t.Fatal("dispatcher must stamp events")
		}
		if ev.EventType != AuditSessionRestored {
			t.Fatalf("unexpected event type %q", ev.EventType)
		}
	default:
		t.Fatal("expected the event delivered before Close returned")
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	// A sink that never consumes combined with a 1-slot buffer forces the
	// drop path.
	blocked := make(chan AuditEvent) // unbuffered, never read
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, &ChannelSink{events: blocked})

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: AuditLogout})
	}

	if d.Dropped() == 0 {
		t.Fatal("expected drops under pressure")
	}
}
