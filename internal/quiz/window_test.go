package quiz

import (
	"testing"
	"time"
)

func TestNewWindowEffectiveEnd(t *testing.T) {
	schedule := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name        string
		expiry      time.Time
		durationMin int
		wantEnd     time.Time
	}{
		{
			name:        "duration closes first",
			expiry:      schedule.Add(2 * time.Hour),
			durationMin: 30,
			wantEnd:     schedule.Add(30 * time.Minute),
		},
		{
			name:        "expiry closes first",
			expiry:      schedule.Add(10 * time.Minute),
			durationMin: 30,
			wantEnd:     schedule.Add(10 * time.Minute),
		},
		{
			name:        "expiry equals duration end",
			expiry:      schedule.Add(30 * time.Minute),
			durationMin: 30,
			wantEnd:     schedule.Add(30 * time.Minute),
		},
		{
			name:        "zero expiry means duration only",
			durationMin: 45,
			wantEnd:     schedule.Add(45 * time.Minute),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := NewWindow(schedule, tc.expiry, tc.durationMin)
			if !w.EffectiveEnd.Equal(tc.wantEnd) {
				t.Fatalf("EffectiveEnd = %v, want %v", w.EffectiveEnd, tc.wantEnd)
			}
		})
	}
}

func TestWindowRemaining(t *testing.T) {
	schedule := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	w := NewWindow(schedule, schedule.Add(time.Hour), 30)

	if got := w.Remaining(schedule); got != 30*60 {
		t.Fatalf("Remaining at open = %d, want %d", got, 30*60)
	}
	if got := w.Remaining(schedule.Add(29 * time.Minute)); got != 60 {
		t.Fatalf("Remaining near close = %d, want 60", got)
	}
	if got := w.Remaining(schedule.Add(31 * time.Minute)); got != 0 {
		t.Fatalf("Remaining after close = %d, want 0", got)
	}
	if got := w.Remaining(schedule.Add(24 * time.Hour)); got != 0 {
		t.Fatalf("Remaining long after close = %d, want 0", got)
	}
}

func TestWindowClassify(t *testing.T) {
	schedule := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	w := NewWindow(schedule, schedule.Add(time.Hour), 30)

	cases := []struct {
		name      string
		now       time.Time
		hasResult bool
		want      Status
	}{
		{"before schedule", schedule.Add(-time.Minute), false, StatusNotStarted},
		{"before schedule with result", schedule.Add(-time.Minute), true, StatusNotStarted},
		{"inside window", schedule.Add(10 * time.Minute), false, StatusActive},
		{"at effective end", schedule.Add(30 * time.Minute), false, StatusActive},
		{"inside window with result", schedule.Add(10 * time.Minute), true, StatusCompleted},
		{"after window", schedule.Add(31 * time.Minute), false, StatusMissed},
		{"after window with result", schedule.Add(2 * time.Hour), true, StatusCompleted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := w.Classify(tc.now, tc.hasResult); got != tc.want {
				t.Fatalf("Classify = %q, want %q", got, tc.want)
			}
		})
	}
}
