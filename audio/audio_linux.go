//go:build linux

package audio

import (
	"fmt"
	"sync"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

const DefaultBackend = BackendPulse

type pulseContext struct {
	client *pulse.Client
}

func newNativeContext() (Context, error) {
	c, err := pulse.NewClient(pulse.ClientApplicationName("hocus"))
	if err != nil {
		return nil, fmt.Errorf("pulse: %w", err)
	}
	return &pulseContext{client: c}, nil
}

func (p *pulseContext) Devices() ([]DeviceInfo, error) {
	sinks, err := p.client.ListSinks()
	if err != nil {
		return nil, fmt.Errorf("pulse list sinks: %w", err)
	}
	var devices []DeviceInfo
	for _, s := range sinks {
		devices = append(devices, DeviceInfo{
			ID:   s.ID(),
			Name: s.Name(),
		})
	}
	return devices, nil
}

func (p *pulseContext) NewOutput(device *DeviceInfo, config OutputConfig) (Output, error) {
	config = config.withDefaults()
	if config.Format.Channels > 2 {
		return nil, fmt.Errorf("pulse: unsupported channel count %d", config.Format.Channels)
	}
	return &pulseOutput{
		client: p.client,
		device: device,
		config: config,
		mix:    newMixer(config.Format.Channels),
	}, nil
}

func (p *pulseContext) Close() {
	p.client.Close()
}

// pulseOutput keeps one playback stream open while resumed. Suspending
// closes the stream so the sink can idle.
type pulseOutput struct {
	client *pulse.Client
	device *DeviceInfo
	config OutputConfig
	mix    *mixer

	mu     sync.Mutex
	stream *pulse.PlaybackStream
	closed bool
}

func (o *pulseOutput) Format() Format { return o.config.Format }

func (o *pulseOutput) Suspended() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stream == nil || !o.stream.Running()
}

func (o *pulseOutput) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}
	if o.stream != nil {
		if o.stream.Running() {
			return nil
		}
		// The server dropped or corked the stream; start over.
		o.stream.Close()
		o.stream = nil
	}

	layout := pulse.PlaybackMono
	volumes := proto.ChannelVolumes{uint32(proto.VolumeNorm)}
	if o.config.Format.Channels == 2 {
		layout = pulse.PlaybackStereo
		volumes = proto.ChannelVolumes{uint32(proto.VolumeNorm), uint32(proto.VolumeNorm)}
	}
	opts := []pulse.PlaybackOption{
		layout,
		pulse.PlaybackSampleRate(o.config.Format.SampleRate),
		pulse.PlaybackLatency(o.config.Latency.Seconds()),
		pulse.PlaybackMediaName("metronome"),
		pulse.PlaybackRawOption(func(p *proto.CreatePlaybackStream) {
			p.ChannelVolumes = volumes
		}),
	}
	if o.device != nil {
		sink, err := o.client.SinkByID(o.device.ID)
		if err == nil && sink != nil {
			opts = append(opts, pulse.PlaybackSink(sink))
		}
	}

	stream, err := o.client.NewPlayback(pulse.Int16Reader(o.mix.Read16), opts...)
	if err != nil {
		return fmt.Errorf("pulse playback: %w", err)
	}
	stream.Start()
	o.stream = stream
	return nil
}

func (o *pulseOutput) Suspend() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.suspendLocked()
}

func (o *pulseOutput) suspendLocked() {
	if o.stream != nil {
		o.stream.Stop()
		o.stream.Close()
		o.stream = nil
	}
	o.mix.reset()
}

func (o *pulseOutput) Play(samples []int16) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrClosed
	}
	if o.stream == nil || !o.stream.Running() {
		return ErrSuspended
	}
	o.mix.add(samples)
	return nil
}

func (o *pulseOutput) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.suspendLocked()
	o.closed = true
}
