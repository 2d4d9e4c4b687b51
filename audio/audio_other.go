//go:build !linux

package audio

import (
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
)

const DefaultBackend = BackendMalgo

type malgoContext struct {
	ctx *malgo.AllocatedContext
}

func newNativeContext() (Context, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("malgo: %w", err)
	}
	return &malgoContext{ctx: ctx}, nil
}

func (m *malgoContext) Devices() ([]DeviceInfo, error) {
	devices, err := m.ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("malgo devices: %w", err)
	}
	var result []DeviceInfo
	for _, d := range devices {
		result = append(result, DeviceInfo{
			ID:   hex.EncodeToString(d.ID.Pointer()[:]),
			Name: d.Name(),
		})
	}
	return result, nil
}

func (m *malgoContext) NewOutput(device *DeviceInfo, config OutputConfig) (Output, error) {
	config = config.withDefaults()

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(config.Format.Channels)
	deviceConfig.SampleRate = uint32(config.Format.SampleRate)
	deviceConfig.PeriodSizeInMilliseconds = uint32(config.Latency.Milliseconds())

	if device != nil {
		idBytes, err := hex.DecodeString(device.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid device ID: %w", err)
		}
		var devID malgo.DeviceID
		copy(devID[:], idBytes)
		deviceConfig.Playback.DeviceID = devID.Pointer()
	}

	return &malgoOutput{
		ctx:          m.ctx,
		deviceConfig: deviceConfig,
		config:       config,
		mix:          newMixer(config.Format.Channels),
	}, nil
}

func (m *malgoContext) Close() {
	m.ctx.Uninit()
	m.ctx.Free()
}

// malgoOutput owns one playback device. The device is created lazily on the
// first Resume and recreated when a start fails (macOS sleep/wake leaves it
// unusable).
type malgoOutput struct {
	ctx          *malgo.AllocatedContext
	deviceConfig malgo.DeviceConfig
	config       OutputConfig
	mix          *mixer

	mu     sync.Mutex
	device *malgo.Device
	closed bool
}

func (o *malgoOutput) Format() Format { return o.config.Format }

func (o *malgoOutput) initDevice() error {
	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutput, _ []byte, frameCount uint32) {
			n := int(frameCount) * o.config.Format.Channels * 2
			if n > len(pOutput) {
				n = len(pOutput)
			}
			o.mix.Read(pOutput[:n])
		},
	}
	dev, err := malgo.InitDevice(o.ctx.Context, o.deviceConfig, callbacks)
	if err != nil {
		return err
	}
	o.device = dev
	return nil
}

func (o *malgoOutput) Suspended() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.device == nil || !o.device.IsStarted()
}

func (o *malgoOutput) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}
	if o.device == nil {
		if err := o.initDevice(); err != nil {
			return fmt.Errorf("malgo init device: %w", err)
		}
	}
	if o.device.IsStarted() {
		return nil
	}
	if err := o.device.Start(); err != nil {
		o.device.Uninit()
		o.device = nil
		if err := o.initDevice(); err != nil {
			return fmt.Errorf("malgo reinit device: %w", err)
		}
		if err := o.device.Start(); err != nil {
			return fmt.Errorf("malgo start: %w", err)
		}
	}
	return nil
}

func (o *malgoOutput) Suspend() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.device != nil && o.device.IsStarted() {
		o.device.Stop()
	}
	o.mix.reset()
}

func (o *malgoOutput) Play(samples []int16) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrClosed
	}
	if o.device == nil || !o.device.IsStarted() {
		return ErrSuspended
	}
	o.mix.add(samples)
	return nil
}

func (o *malgoOutput) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	if o.device != nil {
		o.device.Uninit()
		o.device = nil
	}
	o.mix.reset()
	o.closed = true
}
