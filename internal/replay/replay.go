// Package replay recreates recorded devices as kernel uhid devices and
// injects their events with the original timing.
package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/psanford/uhid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/bentiss/hid-tools/hidrecord"
)

// DefaultWaitMax caps the sleep between two events. Gaps longer than
// this are replayed as a single capped wait and the time base resets, so
// a recording left idle for minutes does not stall the replay.
const DefaultWaitMax = 2 * time.Second

type Replayer struct {
	log     *zap.Logger
	rec     *hidrecord.Recording
	waitMax time.Duration

	devices []*uhid.Device
}

func New(log *zap.Logger, rec *hidrecord.Recording) *Replayer {
	return &Replayer{
		log:     log,
		rec:     rec,
		waitMax: DefaultWaitMax,
	}
}

// Start creates and opens one uhid device per recorded device. The
// kernel probes the new devices asynchronously; callers should give it a
// moment (or wait for user input) before injecting.
func (r *Replayer) Start(ctx context.Context) error {
	for i, dev := range r.rec.Devices {
		name := dev.Name
		if name == "" {
			name = fmt.Sprintf("replayed device %d", i)
		}
		udev, err := uhid.NewDevice(name, dev.Rdesc)
		if err != nil {
			return fmt.Errorf("device %d: %w", i, err)
		}
		udev.Data.Bus = uint16(dev.Bus)
		udev.Data.VendorID = uint32(dev.VendorID)
		udev.Data.ProductID = uint32(dev.ProductID)

		events, err := udev.Open(ctx)
		if err != nil {
			return fmt.Errorf("device %d: open: %w", i, err)
		}
		r.devices = append(r.devices, udev)
		r.log.Info("created uhid device", zap.Int("index", i), zap.String("name", name))

		go r.drain(i, events)
	}
	return nil
}

// drain consumes kernel-to-device events. Output reports from the host
// (LED state and the like) are logged and dropped.
func (r *Replayer) drain(idx int, events chan uhid.Event) {
	for ev := range events {
		if ev.Type == uhid.Output {
			r.log.Debug("ignoring output report",
				zap.Int("index", idx),
				zap.Binary("data", ev.Data))
		}
	}
}

// Inject replays all events once. Inter-event delays follow the recorded
// timestamps, capped at the configured maximum; short delays under 10ms
// are skipped. Can be called repeatedly to replay again.
func (r *Replayer) Inject(ctx context.Context) error {
	var (
		base    time.Time
		offset  time.Duration
		started bool
	)
	for _, ev := range r.rec.Events {
		if ev.Device >= len(r.devices) {
			return fmt.Errorf("event for unknown device %d", ev.Device)
		}
		now := time.Now()
		if !started {
			started = true
			base = now
			offset = ev.Time
		}
		sleep := base.Add(ev.Time - offset).Sub(now)
		switch {
		case sleep < 10*time.Millisecond:
			// close enough, fire immediately
		case sleep < r.waitMax:
			if err := sleepCtx(ctx, sleep); err != nil {
				return err
			}
		default:
			base = now
			offset = ev.Time
			if err := sleepCtx(ctx, r.waitMax); err != nil {
				return err
			}
		}
		if err := r.devices[ev.Device].InjectEvent(ev.Data); err != nil {
			return fmt.Errorf("inject on device %d: %w", ev.Device, err)
		}
	}
	return nil
}

func (r *Replayer) Close() error {
	var err error
	for _, dev := range r.devices {
		err = multierr.Append(err, dev.Close())
	}
	r.devices = nil
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
