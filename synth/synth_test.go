package synth

import (
	"errors"
	"math"
	"testing"
	"time"

	"hocus/audio"
)

var mono8k = audio.Format{SampleRate: 8000, Channels: 1}

func peakAbs(samples []int16) int {
	peak := 0
	for _, s := range samples {
		v := int(s)
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}

func TestProfileTable(t *testing.T) {
	tests := []struct {
		id    SoundID
		name  string
		freq  float64
		gain  float64
		decay time.Duration
	}{
		{Click, "Classic Click", 1000, 0.3, 50 * time.Millisecond},
		{Wood, "Wood Block", 800, 0.4, 80 * time.Millisecond},
		{Beep, "Digital Beep", 1200, 0.2, 100 * time.Millisecond},
		{Tick, "Soft Tick", 600, 0.15, 40 * time.Millisecond},
	}
	for _, tt := range tests {
		p, err := Lookup(tt.id)
		if err != nil {
			t.Fatalf("Lookup(%s): %v", tt.id, err)
		}
		if p.Name != tt.name || p.Frequency != tt.freq || p.Gain != tt.gain || p.Decay != tt.decay || p.Waveform != Sine {
			t.Errorf("Lookup(%s) = %+v", tt.id, p)
		}
	}
	if len(Profiles()) != len(tests) {
		t.Errorf("Profiles() has %d entries, want %d", len(Profiles()), len(tests))
	}
}

func TestProfilesReturnsCopy(t *testing.T) {
	ps := Profiles()
	ps[0].Gain = 1
	p, _ := Lookup(ps[0].ID)
	if p.Gain == 1 {
		t.Fatal("mutating Profiles() result changed the table")
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, err := Lookup("cowbell"); !errors.Is(err, ErrUnknownSound) {
		t.Fatalf("err = %v, want ErrUnknownSound", err)
	}
}

func TestParseSoundID(t *testing.T) {
	tests := []struct {
		in   string
		want SoundID
		ok   bool
	}{
		{"click", Click, true},
		{"WOOD", Wood, true},
		{" Digital Beep ", Beep, true},
		{"soft tick", Tick, true},
		{"", "", false},
		{"cowbell", "", false},
	}
	for _, tt := range tests {
		got, err := ParseSoundID(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseSoundID(%q) = %q, %v", tt.in, got, err)
		}
		if !tt.ok && !errors.Is(err, ErrUnknownSound) {
			t.Errorf("ParseSoundID(%q) err = %v, want ErrUnknownSound", tt.in, err)
		}
	}
}

func TestNextCycles(t *testing.T) {
	seen := map[SoundID]bool{}
	id := DefaultSound
	for i := 0; i < len(profiles); i++ {
		seen[id] = true
		id = Next(id)
	}
	if id != DefaultSound || len(seen) != len(profiles) {
		t.Fatalf("Next did not cycle all sounds: %v", seen)
	}
}

func TestOscillator(t *testing.T) {
	tests := []struct {
		w     Waveform
		phase float64
		want  float64
	}{
		{Sine, 0, 0},
		{Sine, 0.25, 1},
		{Sine, 1.75, -1},
		{Square, 0.1, 1},
		{Square, 0.6, -1},
		{Triangle, 0, -1},
		{Triangle, 0.5, 1},
		{Triangle, 0.25, 0},
		{Triangle, -0.5, 1},
	}
	for _, tt := range tests {
		if got := Oscillator(tt.w, tt.phase); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Oscillator(%s, %v) = %v, want %v", tt.w, tt.phase, got, tt.want)
		}
	}
}

func TestRenderLength(t *testing.T) {
	p, _ := Lookup(Click)
	got := Render(p, 1, mono8k)
	if len(got) != 400 {
		t.Fatalf("len = %d, want 400 (50ms at 8kHz)", len(got))
	}

	stereo := Render(p, 1, audio.Format{SampleRate: 8000, Channels: 2})
	if len(stereo) != 800 {
		t.Fatalf("stereo len = %d, want 800", len(stereo))
	}
	for i := 0; i < len(stereo); i += 2 {
		if stereo[i] != stereo[i+1] {
			t.Fatalf("frame %d channels differ: %d vs %d", i/2, stereo[i], stereo[i+1])
		}
	}
}

func TestRenderEnvelope(t *testing.T) {
	for _, p := range Profiles() {
		f := audio.Format{SampleRate: 48000, Channels: 1}
		samples := Render(p, 1, f)
		want := p.Gain * 32767

		window := f.SampleRate / 1000 * 2 // 2ms, at least one full cycle of every profile
		head := peakAbs(samples[:window])
		tail := peakAbs(samples[len(samples)-window:])

		if float64(head) < 0.85*want || float64(head) > want {
			t.Errorf("%s: head peak %d, want about %.0f", p.ID, head, want)
		}
		if float64(tail) > 0.02*want {
			t.Errorf("%s: tail peak %d, want below 2%% of %.0f", p.ID, tail, want)
		}
		if tail == 0 {
			t.Errorf("%s: tail is silent, envelope decays too fast", p.ID)
		}
	}
}

func TestRenderVolume(t *testing.T) {
	p, _ := Lookup(Wood)
	full := peakAbs(Render(p, 1, mono8k))
	half := peakAbs(Render(p, 0.5, mono8k))
	if math.Abs(float64(full)/2-float64(half)) > 2 {
		t.Errorf("half volume peak %d, full %d", half, full)
	}
	if peakAbs(Render(p, 0, mono8k)) != 0 {
		t.Error("zero volume should render silence")
	}
	if peakAbs(Render(p, 7, mono8k)) != full {
		t.Error("volume above 1 should clamp")
	}
}

func TestRenderInvalidFormat(t *testing.T) {
	p, _ := Lookup(Tick)
	if got := Render(p, 1, audio.Format{}); got != nil {
		t.Fatalf("got %d samples for empty format", len(got))
	}
}

func TestEngineResumesBeforeRender(t *testing.T) {
	out := audio.NewFakeOutput(mono8k)
	e := NewEngine(out)
	p, _ := Lookup(Beep)

	e.RenderBeat(p, 0.5)
	if out.Resumes() != 1 {
		t.Fatalf("resumes = %d, want 1", out.Resumes())
	}
	if out.BurstCount() != 1 {
		t.Fatalf("bursts = %d, want 1", out.BurstCount())
	}

	e.RenderBeat(p, 0.5)
	if out.Resumes() != 1 {
		t.Fatalf("resumed a running output: resumes = %d", out.Resumes())
	}

	out.Suspend()
	e.RenderBeat(p, 0.5)
	if out.Resumes() != 2 || out.BurstCount() != 3 {
		t.Fatalf("after suspend: resumes = %d bursts = %d", out.Resumes(), out.BurstCount())
	}
}

func TestEngineSkipsWhenResumeFails(t *testing.T) {
	out := audio.NewFakeOutput(mono8k)
	out.SetResumeError(errors.New("device busy"))
	e := NewEngine(out)
	p, _ := Lookup(Click)

	if e.RenderBeat(p, 1) {
		t.Fatal("RenderBeat reported a skipped beat as queued")
	}
	if out.BurstCount() != 0 {
		t.Fatalf("bursts = %d, want 0", out.BurstCount())
	}
	if err := e.EnsureResumed(); err == nil {
		t.Fatal("EnsureResumed should report the resume failure")
	}

	out.SetResumeError(nil)
	if !e.RenderBeat(p, 1) {
		t.Fatal("RenderBeat after recovery reported a skip")
	}
	if out.BurstCount() != 1 {
		t.Fatalf("bursts after recovery = %d, want 1", out.BurstCount())
	}
}

func TestEngineNilOutput(t *testing.T) {
	e := NewEngine(nil)
	p, _ := Lookup(Click)
	if e.RenderBeat(p, 1) {
		t.Fatal("RenderBeat without an output reported a queued beat")
	}
	if err := e.EnsureResumed(); !errors.Is(err, ErrNoOutput) {
		t.Fatalf("err = %v, want ErrNoOutput", err)
	}
}

func TestEngineSetOutput(t *testing.T) {
	first := audio.NewFakeOutput(mono8k)
	second := audio.NewFakeOutput(mono8k)
	e := NewEngine(first)
	p, _ := Lookup(Wood)

	e.RenderBeat(p, 1)
	if old := e.SetOutput(second); old != audio.Output(first) {
		t.Fatal("SetOutput should return the previous output")
	}
	e.RenderBeat(p, 1)

	if first.BurstCount() != 1 || second.BurstCount() != 1 {
		t.Fatalf("bursts = %d/%d, want 1/1", first.BurstCount(), second.BurstCount())
	}
	if second.Resumes() != 1 {
		t.Fatalf("new output resumes = %d, want 1", second.Resumes())
	}
}
