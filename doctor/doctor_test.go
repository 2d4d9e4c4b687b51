package doctor

import (
	"testing"
	"time"

	"hocus/metronome"
)

func TestJitter(t *testing.T) {
	base := time.Unix(0, 0)
	at := func(ms ...int) []time.Time {
		out := make([]time.Time, len(ms))
		for i, m := range ms {
			out[i] = base.Add(time.Duration(m) * time.Millisecond)
		}
		return out
	}

	tests := []struct {
		name      string
		times     []time.Time
		wantMean  time.Duration
		wantWorst time.Duration
	}{
		{"steady", at(0, 500, 1000, 1500), 500 * time.Millisecond, 0},
		{"late beat", at(0, 500, 1010, 1500), 500 * time.Millisecond, 10 * time.Millisecond},
		{"slow drift", at(0, 502, 1004, 1506), 502 * time.Millisecond, 2 * time.Millisecond},
		{"single", at(0), 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, worst := jitter(tt.times, 500*time.Millisecond)
			if mean != tt.wantMean || worst != tt.wantWorst {
				t.Errorf("jitter = %v/%v, want %v/%v", mean, worst, tt.wantMean, tt.wantWorst)
			}
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want int
		ok   bool
	}{
		{"", 3, 0, true},
		{"2\n", 3, 2, true},
		{"3", 3, 3, true},
		{"4", 3, 4, false},
		{"-1", 3, -1, false},
		{"abc", 3, 0, false},
	}
	for _, tt := range tests {
		got, ok := parseChoice(tt.in, tt.n)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseChoice(%q, %d) = %d, %v", tt.in, tt.n, got, ok)
		}
	}
}

func TestMeasureBeats(t *testing.T) {
	tickers := &metronome.ManualTickers{}
	s := metronome.NewTickerSchedulerWith(tickers.New)

	done := make(chan []time.Time)
	go func() { done <- measureBeats(s, time.Second, 3) }()

	// first beat fires on Start; deliver two more
	deadline := time.After(2 * time.Second)
	for sent := 0; sent < 2; {
		if tk := tickers.Last(); tk != nil && tk.Tick() {
			sent++
			continue
		}
		select {
		case <-deadline:
			t.Fatal("scheduler never armed")
		case <-time.After(time.Millisecond):
		}
	}

	select {
	case times := <-done:
		if len(times) != 3 {
			t.Fatalf("got %d beats, want 3", len(times))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("measureBeats did not return")
	}
	if s.Armed() {
		t.Fatal("scheduler left armed")
	}
}
