package audio

import (
	"fmt"
	"sync"

	"github.com/hajimehoshi/oto/v2"
)

// oto allows a single context per process, created with a fixed format.
var (
	otoOnce   sync.Once
	otoCtx    *oto.Context
	otoFormat Format
	otoErr    error
)

func initOto(f Format) error {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(f.SampleRate, f.Channels, oto.FormatSignedInt16LE)
		if err != nil {
			otoErr = fmt.Errorf("oto: %w", err)
			return
		}
		<-ready
		otoCtx = ctx
		otoFormat = f
	})
	if otoErr != nil {
		return otoErr
	}
	if otoFormat != f {
		return fmt.Errorf("oto: context already running at %d Hz/%d ch", otoFormat.SampleRate, otoFormat.Channels)
	}
	return nil
}

type otoContext struct{}

func newOtoContext() Context { return otoContext{} }

// Devices returns nothing: oto always plays on the system default output.
func (otoContext) Devices() ([]DeviceInfo, error) { return nil, nil }
func (otoContext) Close()                         {}

func (otoContext) NewOutput(_ *DeviceInfo, config OutputConfig) (Output, error) {
	config = config.withDefaults()
	if err := initOto(config.Format); err != nil {
		return nil, err
	}
	o := &otoOutput{config: config, mix: newMixer(config.Format.Channels), suspended: true}
	o.player = otoCtx.NewPlayer(o.mix)
	if s, ok := o.player.(interface{ SetBufferSize(int) }); ok {
		bytesPerSec := config.Format.SampleRate * config.Format.Channels * 2
		s.SetBufferSize(int(config.Latency.Seconds() * float64(bytesPerSec)))
	}
	return o, nil
}

type otoOutput struct {
	config OutputConfig
	mix    *mixer
	player oto.Player

	mu        sync.Mutex
	suspended bool
	closed    bool
}

func (o *otoOutput) Format() Format { return o.config.Format }

func (o *otoOutput) Suspended() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.suspended || otoCtx.Err() != nil
}

func (o *otoOutput) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrClosed
	}
	if err := otoCtx.Err(); err != nil {
		return fmt.Errorf("oto context: %w", err)
	}
	if err := otoCtx.Resume(); err != nil {
		return fmt.Errorf("oto resume: %w", err)
	}
	if !o.player.IsPlaying() {
		o.player.Play()
	}
	o.suspended = false
	return nil
}

func (o *otoOutput) Suspend() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || o.suspended {
		return
	}
	o.player.Pause()
	o.mix.reset()
	_ = otoCtx.Suspend()
	o.suspended = true
}

func (o *otoOutput) Play(samples []int16) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrClosed
	}
	if o.suspended {
		return ErrSuspended
	}
	o.mix.add(samples)
	return nil
}

func (o *otoOutput) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.player.Close()
	o.mix.reset()
	o.closed = true
}
