package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatEvent(t *testing.T) {
	line := FormatEvent(BookingEvent{
		Type:           EventBookingConfirmed,
		BookingGroupID: "g1",
		ScheduleID:     "s1",
		DepartureDate:  "2025-03-01",
		SeatNumbers:    []string{"A1", "B1"},
		Count:          2,
		OccurredAt:     "2025-02-01T10:00:00Z",
	})
	want := "[2025-02-01T10:00:00Z] Booking confirmed | group=g1 | schedule=s1 | date=2025-03-01 | count=2 | seats=[A1,B1]\n"
	if line != want {
		t.Fatalf("got %q\nwant %q", line, want)
	}

	expired := FormatEvent(BookingEvent{Type: EventHoldsExpired, Count: 3, OccurredAt: "t"})
	if expired != "[t] Holds expired | reclaimed=3\n" {
		t.Fatalf("unexpected expired line %q", expired)
	}
}

func TestHandleMessageAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "events.log")
	c := NewConsumer("", "", path, nil)

	for _, ev := range []BookingEvent{
		{Type: EventBookingConfirmed, BookingGroupID: "g1", Count: 1},
		{Type: EventBookingCancelled, BookingGroupID: "g2", Count: 1},
	} {
		body, err := json.Marshal(ev)
		if err != nil {
			t.Fatal(err)
		}
		if err := c.HandleMessage(body); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), data)
	}
	if !strings.Contains(lines[1], "Booking cancelled | group=g2") {
		t.Fatalf("unexpected second line %q", lines[1])
	}
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	c := NewConsumer("", "", filepath.Join(t.TempDir(), "events.log"), nil)
	if err := c.HandleMessage([]byte("not json")); err == nil {
		t.Fatal("expected unmarshal error")
	}
	if err := c.HandleMessage([]byte(`{"count":1}`)); err == nil {
		t.Fatal("expected error for event without type")
	}
}
