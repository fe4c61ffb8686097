// Package recorder streams input reports from one or more hidraw nodes
// into a recording. All devices share one time base, anchored at the
// first event seen on any of them.
package recorder

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bentiss/hid-tools/hidrecord"
	"github.com/bentiss/hid-tools/internal/hidraw"
)

// Source is the device surface the recorder needs. *hidraw.Device
// satisfies it; tests substitute fakes.
type Source interface {
	Name() string
	Phys() string
	Info() hidraw.DevInfo
	Rdesc() []byte
	Read(buf []byte) (int, error)
	Close() error
}

type Recorder struct {
	log *zap.Logger

	mu sync.Mutex // guards writer and t0
	wr *hidrecord.Writer
	t0 time.Time
}

func New(log *zap.Logger, out io.Writer) *Recorder {
	return &Recorder{
		log: log,
		wr:  hidrecord.NewWriter(out, nil),
	}
}

// Run opens every path and records until ctx is cancelled. Device headers
// are written up front, events as they arrive.
func (r *Recorder) Run(ctx context.Context, paths []string) error {
	sources := make([]Source, 0, len(paths))
	defer func() {
		for _, src := range sources {
			src.Close()
		}
	}()
	for _, path := range paths {
		dev, err := hidraw.Open(path)
		if err != nil {
			return err
		}
		sources = append(sources, dev)
		r.log.Info("opened device",
			zap.String("path", path),
			zap.String("name", dev.Name()))
	}
	return r.record(ctx, sources)
}

func (r *Recorder) record(ctx context.Context, sources []Source) error {
	devs := make([]*hidrecord.Device, len(sources))
	for i, src := range sources {
		info := src.Info()
		devs[i] = &hidrecord.Device{
			Name:      src.Name(),
			Phys:      src.Phys(),
			Bus:       uint16(info.Bus),
			VendorID:  uint16(info.Vendor),
			ProductID: uint16(info.Product),
			Rdesc:     src.Rdesc(),
		}
	}
	if err := r.wr.WriteDevices(devs); err != nil {
		return err
	}

	group, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		group.Go(func() error {
			return r.readLoop(ctx, i, src)
		})
	}
	// Blocking reads only notice cancellation when the fd closes.
	group.Go(func() error {
		<-ctx.Done()
		var err error
		for _, src := range sources {
			err = multierr.Append(err, src.Close())
		}
		return err
	})
	err := group.Wait()
	if errors.Is(err, errStopped) || errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return err
}

// errStopped marks a reader that ran out of input. It cancels the group
// so the remaining devices shut down too, but is not reported.
var errStopped = errors.New("device stopped")

func (r *Recorder) readLoop(ctx context.Context, idx int, src Source) error {
	buf := make([]byte, 4096)
	for {
		n, err := src.Read(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, os.ErrClosed) || errors.Is(err, io.EOF) {
				return errStopped
			}
			return err
		}
		if n == 0 {
			continue
		}
		data := append([]byte(nil), buf[:n]...)
		if err := r.writeEvent(idx, data); err != nil {
			return err
		}
	}
}

func (r *Recorder) writeEvent(idx int, data []byte) error {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.t0.IsZero() {
		r.t0 = now
	}
	return r.wr.WriteEvent(idx, now.Sub(r.t0), data)
}
