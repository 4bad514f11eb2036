package loopback

import (
	"context"
	"sync"
	"time"

	"github.com/ardnew/softvga/bus"
	"github.com/ardnew/softvga/pkg"
)

// Default configuration values.
const (
	defaultMaxPacketSize = 1024
	defaultQueueDepth    = 16
	prefixLen            = 16 // bytes of each payload recorded for inspection
)

// Config holds loopback bus parameters.
type Config struct {
	// MaxPacketSize is the endpoint's maximum packet size in bytes.
	MaxPacketSize int

	// Speed is the reported connection speed class.
	Speed bus.Speed

	// BytesPerSecond throttles the drain rate. Zero completes transfers
	// immediately.
	BytesPerSecond int64

	// QueueDepth bounds the number of queued submissions. A full queue
	// rejects submissions with pkg.ErrNoResources.
	QueueDepth int
}

// Record describes one successfully drained transfer.
type Record struct {
	Size   int    // Total payload bytes
	Prefix []byte // Copy of the first bytes of the payload
}

// submission tracks one queued transfer.
type submission struct {
	req *bus.Request
}

// Bus implements bus.BulkHAL over an in-memory endpoint.
//
// It drains submissions in order on a background goroutine, optionally
// throttled to a byte rate, and supports fault injection for exercising
// the stream core's recovery paths.
type Bus struct {
	cfg Config

	queue chan *submission

	mu      sync.Mutex
	cond    *sync.Cond
	pending int
	running bool
	stalled bool
	held    []*submission

	// Fault injection state
	transientFailures int
	submitErr         error
	stallNext         bool
	holdCompletions   bool

	delivered []Record

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a loopback bus with the given configuration.
func New(cfg Config) *Bus {
	if cfg.MaxPacketSize <= 0 {
		cfg.MaxPacketSize = defaultMaxPacketSize
	}
	if cfg.Speed == bus.SpeedUnknown {
		cfg.Speed = bus.SpeedHigh
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = defaultQueueDepth
	}
	b := &Bus{
		cfg:   cfg,
		queue: make(chan *submission, cfg.QueueDepth),
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Start begins draining submissions.
func (b *Bus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return pkg.ErrAlreadyEnabled
	}
	b.ctx, b.cancel = context.WithCancel(ctx)
	b.running = true
	b.wg.Add(1)
	go b.drain()
	pkg.LogDebug(pkg.ComponentBus, "loopback bus started",
		"max_packet", b.cfg.MaxPacketSize,
		"speed", b.cfg.Speed.String())
	return nil
}

// Close stops the drain goroutine and cancels outstanding transfers.
func (b *Bus) Close() error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()
	b.CancelAll()
	return nil
}

// SubmitBulk implements bus.BulkHAL.
func (b *Bus) SubmitBulk(ctx context.Context, req *bus.Request) error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return pkg.ErrNoDevice
	}
	if b.submitErr != nil {
		err := b.submitErr
		b.mu.Unlock()
		return err
	}
	if b.transientFailures > 0 {
		b.transientFailures--
		b.mu.Unlock()
		return pkg.ErrNoResources
	}
	b.pending++
	b.mu.Unlock()

	select {
	case b.queue <- &submission{req: req}:
		return nil
	default:
		b.mu.Lock()
		b.pending--
		b.cond.Broadcast()
		b.mu.Unlock()
		return pkg.ErrNoResources
	}
}

// ClearHalt implements bus.BulkHAL.
func (b *Bus) ClearHalt(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running {
		return pkg.ErrNoDevice
	}
	b.stalled = false
	pkg.LogDebug(pkg.ComponentBus, "endpoint halt cleared")
	return nil
}

// CancelAll implements bus.BulkHAL. Queued and held submissions complete
// with a cancelled status.
func (b *Bus) CancelAll() {
	b.mu.Lock()
	held := b.held
	b.held = nil
	b.mu.Unlock()

	for _, sub := range held {
		b.complete(sub, pkg.TransferStatusCancelled)
	}
	for {
		select {
		case sub := <-b.queue:
			b.complete(sub, pkg.TransferStatusCancelled)
		default:
			return
		}
	}
}

// WaitIdle implements bus.BulkHAL.
func (b *Bus) WaitIdle(ctx context.Context) error {
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			b.cond.Broadcast()
			b.mu.Unlock()
		case <-stop:
		}
	}()
	defer close(stop)

	b.mu.Lock()
	defer b.mu.Unlock()
	for b.pending > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		b.cond.Wait()
	}
	return nil
}

// MaxPacketSize implements bus.BulkHAL.
func (b *Bus) MaxPacketSize() int {
	return b.cfg.MaxPacketSize
}

// Speed implements bus.BulkHAL.
func (b *Bus) Speed() bus.Speed {
	return b.cfg.Speed
}

// FailSubmissions rejects the next n submissions with pkg.ErrNoResources.
func (b *Bus) FailSubmissions(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transientFailures = n
}

// SetSubmitError makes every submission fail with err until reset with nil.
func (b *Bus) SetSubmitError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.submitErr = err
}

// StallOnce makes the next drained transfer complete with a stall status
// and leaves the endpoint halted until ClearHalt.
func (b *Bus) StallOnce() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stallNext = true
}

// HoldCompletions suspends completion delivery. Held transfers remain
// outstanding until released or cancelled.
func (b *Bus) HoldCompletions(hold bool) {
	b.mu.Lock()
	held := b.held
	b.holdCompletions = hold
	if !hold {
		b.held = nil
	}
	b.mu.Unlock()

	if !hold {
		for _, sub := range held {
			b.finish(sub)
		}
	}
}

// Delivered returns a snapshot of successfully drained transfers in
// completion order.
func (b *Bus) Delivered() []Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Record, len(b.delivered))
	copy(out, b.delivered)
	return out
}

// Pending returns the number of outstanding transfers.
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

// drain completes queued submissions in order at the configured rate.
func (b *Bus) drain() {
	defer b.wg.Done()
	for {
		select {
		case <-b.ctx.Done():
			return
		case sub := <-b.queue:
			if !b.throttle(sub.req.Size) {
				b.complete(sub, pkg.TransferStatusCancelled)
				return
			}
			b.mu.Lock()
			if b.holdCompletions {
				b.held = append(b.held, sub)
				b.mu.Unlock()
				continue
			}
			b.mu.Unlock()
			b.finish(sub)
		}
	}
}

// throttle sleeps for the transfer's wire time. Returns false if the bus
// shut down mid-transfer.
func (b *Bus) throttle(size int) bool {
	if b.cfg.BytesPerSecond <= 0 || size == 0 {
		return true
	}
	d := time.Duration(size) * time.Second / time.Duration(b.cfg.BytesPerSecond)
	select {
	case <-b.ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// finish resolves a drained submission against the endpoint halt state.
func (b *Bus) finish(sub *submission) {
	b.mu.Lock()
	status := pkg.TransferStatusSuccess
	if b.stallNext {
		b.stallNext = false
		b.stalled = true
	}
	if b.stalled {
		status = pkg.TransferStatusStall
	}
	b.mu.Unlock()
	b.complete(sub, status)
}

// complete records and delivers one completion. The callback runs
// before the transfer stops counting as pending, so WaitIdle observing
// zero implies every callback has returned.
func (b *Bus) complete(sub *submission, status pkg.TransferStatus) {
	req := sub.req

	if status == pkg.TransferStatusSuccess {
		rec := Record{Size: req.Size}
		for _, frag := range req.Payload {
			if len(rec.Prefix) >= prefixLen {
				break
			}
			n := prefixLen - len(rec.Prefix)
			if n > len(frag) {
				n = len(frag)
			}
			rec.Prefix = append(rec.Prefix, frag[:n]...)
		}
		b.mu.Lock()
		b.delivered = append(b.delivered, rec)
		b.mu.Unlock()
	}

	if req.Complete != nil {
		req.Complete(req, status)
	}

	b.mu.Lock()
	b.pending--
	b.cond.Broadcast()
	b.mu.Unlock()
}
