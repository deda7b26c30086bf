package service

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/iliyamo/ev-charging-reservation/internal/model"
)

func slotTime(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.ParseInLocation(model.SlotLayout, s, time.UTC)
	if err != nil {
		t.Fatalf("bad slot literal %q: %v", s, err)
	}
	return tm
}

func TestLinearRate(t *testing.T) {
	tests := []struct {
		name    string
		rate    float64
		start   string
		end     string
		want    float64
		wantErr bool
	}{
		{name: "two hours at default rate", rate: DefaultRatePerHour, start: "2024-05-24 10:00", end: "2024-05-24 12:00", want: 20.0},
		{name: "half hour at default rate", rate: DefaultRatePerHour, start: "2024-05-24 10:00", end: "2024-05-24 10:30", want: 5.0},
		{name: "ninety minutes at custom rate", rate: 4.0, start: "2024-05-24 10:00", end: "2024-05-24 11:30", want: 6.0},
		{name: "zero rate", rate: 0, start: "2024-05-24 10:00", end: "2024-05-24 12:00", want: 0},
		{name: "end equals start", rate: DefaultRatePerHour, start: "2024-05-24 10:00", end: "2024-05-24 10:00", wantErr: true},
		{name: "end before start", rate: DefaultRatePerHour, start: "2024-05-24 12:00", end: "2024-05-24 10:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := LinearRate(tt.rate)
			got, err := policy(slotTime(t, tt.start), slotTime(t, tt.end))
			if tt.wantErr {
				if !errors.Is(err, model.ErrInvalidInterval) {
					t.Fatalf("policy error = %v, want ErrInvalidInterval", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("policy returned unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("policy(%s, %s) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}
