package model

import (
	"errors"
	"testing"
	"time"
)

func TestParseSlot(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		wantErr bool
	}{
		{name: "valid two hour slot", start: "2024-05-24 10:00", end: "2024-05-24 12:00", wantErr: false},
		{name: "one minute slot", start: "2024-05-24 10:00", end: "2024-05-24 10:01", wantErr: false},
		{name: "end equals start", start: "2024-05-24 10:00", end: "2024-05-24 10:00", wantErr: true},
		{name: "end before start", start: "2024-05-24 12:00", end: "2024-05-24 10:00", wantErr: true},
		{name: "bad start format", start: "2024-05-24T10:00", end: "2024-05-24 12:00", wantErr: true},
		{name: "bad end format", start: "2024-05-24 10:00", end: "noon", wantErr: true},
		{name: "seconds not allowed", start: "2024-05-24 10:00:00", end: "2024-05-24 12:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, e, err := ParseSlot(tt.start, tt.end)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSlot(%q, %q) error = %v, wantErr %v", tt.start, tt.end, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if s.Location() != time.UTC || e.Location() != time.UTC {
				t.Errorf("ParseSlot returned non-UTC times: %v, %v", s.Location(), e.Location())
			}
			if FormatSlot(s) != tt.start || FormatSlot(e) != tt.end {
				t.Errorf("FormatSlot round trip = %q/%q, want %q/%q", FormatSlot(s), FormatSlot(e), tt.start, tt.end)
			}
		})
	}
}

func TestParseSlotInvalidIntervalError(t *testing.T) {
	_, _, err := ParseSlot("2024-05-24 12:00", "2024-05-24 12:00")
	if !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("ParseSlot error = %v, want ErrInvalidInterval", err)
	}
}

func TestBookingOverlaps(t *testing.T) {
	slot := func(s string) time.Time {
		tm, err := time.ParseInLocation(SlotLayout, s, time.UTC)
		if err != nil {
			t.Fatalf("bad slot literal %q: %v", s, err)
		}
		return tm
	}
	b := Booking{StartTime: slot("2024-05-24 10:00"), EndTime: slot("2024-05-24 12:00")}

	tests := []struct {
		name  string
		start string
		end   string
		want  bool
	}{
		{name: "identical interval", start: "2024-05-24 10:00", end: "2024-05-24 12:00", want: true},
		{name: "contained interval", start: "2024-05-24 10:30", end: "2024-05-24 11:30", want: true},
		{name: "overlap at tail", start: "2024-05-24 11:59", end: "2024-05-24 13:00", want: true},
		{name: "overlap at head", start: "2024-05-24 09:00", end: "2024-05-24 10:01", want: true},
		{name: "touching end is free", start: "2024-05-24 12:00", end: "2024-05-24 14:00", want: false},
		{name: "touching start is free", start: "2024-05-24 08:00", end: "2024-05-24 10:00", want: false},
		{name: "disjoint before", start: "2024-05-24 07:00", end: "2024-05-24 08:00", want: false},
		{name: "disjoint after", start: "2024-05-24 13:00", end: "2024-05-24 14:00", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.Overlaps(slot(tt.start), slot(tt.end)); got != tt.want {
				t.Errorf("Overlaps(%s, %s) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}
