package stream

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/ardnew/softvga/bus"
	"github.com/ardnew/softvga/pkg"
)

// engineState tracks the transmit engine lifecycle.
type engineState int32

const (
	engineIdle     engineState = iota // Never enabled
	engineArmed                       // Buffers acquired, credits pre-armed
	engineRunning                     // Worker pumping the endpoint
	engineDraining                    // Disable in progress
	engineStopped                     // Disabled
)

// String returns the state name.
func (s engineState) String() string {
	switch s {
	case engineIdle:
		return "idle"
	case engineArmed:
		return "armed"
	case engineRunning:
		return "running"
	case engineDraining:
		return "draining"
	default:
		return "stopped"
	}
}

// submitAttempts bounds immediate retries of a transiently failing
// submission before it is treated as fatal to the stream.
const submitAttempts = 10

// flight carries one data transfer's context from submission to
// completion.
type flight struct {
	buf     *transferBuffer
	retried bool // Halt already cleared and transfer resubmitted once
}

// transmitEngine keeps the bulk endpoint continuously fed.
//
// One background worker pulls ready buffers and issues asynchronous
// transfers, gated by a counting semaphore of transmit credits: the
// pre-armed credit count bounds pipeline depth, and each completion
// returns its credit. Cancellation closes the worker's context, so the
// credit wait never needs a kill signal.
type transmitEngine struct {
	hal  bus.BulkHAL
	pool *bufferPool

	credits *semaphore.Weighted
	state   atomic.Int32
	enabled atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex // Serializes enable/disable

	drainTimeout time.Duration
	cancelGrace  time.Duration

	onVBlank func()
	onFault  func(error)

	trace string
}

func newTransmitEngine(hal bus.BulkHAL, pool *bufferPool, drainTimeout, cancelGrace time.Duration) *transmitEngine {
	return &transmitEngine{
		hal:          hal,
		pool:         pool,
		drainTimeout: drainTimeout,
		cancelGrace:  cancelGrace,
	}
}

func (e *transmitEngine) setState(s engineState) {
	e.state.Store(int32(s))
}

func (e *transmitEngine) getState() engineState {
	return engineState(e.state.Load())
}

// enable acquires the buffer population, pre-arms the transmit credits,
// and starts the worker. Buffer allocation failure leaves the engine
// stopped with nothing allocated.
func (e *transmitEngine) enable(ctx context.Context, trace string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.enabled.Load() {
		return pkg.ErrAlreadyEnabled
	}

	if err := e.pool.acquire(); err != nil {
		return err
	}

	// A fresh weighted semaphore starts fully available: the full
	// credit count is pre-armed before the worker runs.
	e.credits = semaphore.NewWeighted(streamBufMin)
	e.setState(engineArmed)

	e.ctx, e.cancel = context.WithCancel(ctx)
	e.trace = trace
	e.enabled.Store(true)
	e.setState(engineRunning)

	e.wg.Add(1)
	go e.run()

	pkg.LogInfo(pkg.ComponentTransmit, "transmit engine enabled",
		"trace", trace,
		"credits", streamBufMin,
		"buf_size", e.pool.size())
	return nil
}

// disable stops the worker and quiesces the bus. It is idempotent and
// safe from error-unwind paths: the worker is unblocked through context
// cancellation, outstanding transfers get drainTimeout to land, and
// whatever remains is force-cancelled.
func (e *transmitEngine) disable() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.getState() == engineIdle || e.getState() == engineStopped {
		return
	}
	e.setState(engineDraining)
	e.enabled.Store(false)
	e.cancel()
	e.wg.Wait()

	wctx, wcancel := context.WithTimeout(context.Background(), e.drainTimeout)
	err := e.hal.WaitIdle(wctx)
	wcancel()
	if err != nil {
		pkg.LogWarn(pkg.ComponentTransmit, "outstanding transfers did not drain, cancelling",
			"trace", e.trace,
			"timeout", e.drainTimeout)
		e.hal.CancelAll()

		gctx, gcancel := context.WithTimeout(context.Background(), e.cancelGrace)
		if err := e.hal.WaitIdle(gctx); err != nil {
			pkg.LogError(pkg.ComponentTransmit, "bus failed to quiesce after cancel",
				"trace", e.trace, "error", err)
		}
		gcancel()
	}

	e.pool.drainToRender()
	e.pool.release()
	e.setState(engineStopped)

	pkg.LogInfo(pkg.ComponentTransmit, "transmit engine disabled", "trace", e.trace)
}

// run is the worker loop. It blocks on a transmit credit, never
// busy-polls, and exits on context cancellation or a fatal submission
// failure.
func (e *transmitEngine) run() {
	defer e.wg.Done()

	maxPacket := e.hal.MaxPacketSize()

	for e.enabled.Load() {
		if err := e.credits.Acquire(e.ctx, 1); err != nil {
			return
		}
		if !e.enabled.Load() {
			return
		}

		b := e.pool.selectForTransmit()
		if b == nil {
			return
		}

		if err := e.submit(&bus.Request{
			Payload:  b.pages,
			Size:     b.size,
			Tag:      &flight{buf: b},
			Complete: e.dataComplete,
		}); err != nil {
			e.fault(err, b)
			return
		}

		// The hardware wants a zero-length packet marking end of
		// frame even when the payload already ends in a short packet.
		if b.size%maxPacket != 0 {
			e.pool.addInFlight(b)
			if err := e.submit(&bus.Request{
				Tag:      &flight{buf: b},
				Complete: e.zeroComplete,
			}); err != nil {
				e.fault(err, b)
				return
			}
		}
	}
}

// submit issues one asynchronous transfer, retrying a bounded number of
// times on transient resource exhaustion only. Any other failure, or
// exhausting the retries, is returned to the caller as fatal.
func (e *transmitEngine) submit(req *bus.Request) error {
	attempts := submitAttempts
	for {
		err := e.hal.SubmitBulk(e.ctx, req)
		if err == nil || !errors.Is(err, pkg.ErrNoResources) {
			return err
		}
		if attempts == 0 {
			return err
		}
		attempts--
		runtime.Gosched()
	}
}

// dataComplete handles completion of a frame payload transfer. It runs
// on the bus completion context: only queue moves under the pool lock, a
// credit release, and callback dispatch happen here.
func (e *transmitEngine) dataComplete(req *bus.Request, status pkg.TransferStatus) {
	fl := req.Tag.(*flight)

	if status == pkg.TransferStatusStall && e.enabled.Load() {
		if e.recoverStall(req, fl) {
			e.vblank()
			return
		}
		status = pkg.TransferStatusError
	}

	e.pool.completeTransmit(fl.buf)
	// Scanout pacing fires on every completion, errors included.
	e.vblank()
	e.credits.Release(1)

	if status != pkg.TransferStatusSuccess &&
		status != pkg.TransferStatusCancelled &&
		e.enabled.Load() {
		e.fault(status.Error(), nil)
	}
}

// zeroComplete retires a zero-length companion transfer. No credit is
// attached to the companion and no scanout signal fires for it.
func (e *transmitEngine) zeroComplete(req *bus.Request, status pkg.TransferStatus) {
	fl := req.Tag.(*flight)
	e.pool.completeTransmit(fl.buf)
}

// recoverStall clears a halted endpoint and resubmits the transfer once.
// Returns false when the halt clear or resubmission fails, or the
// transfer already used its retry.
func (e *transmitEngine) recoverStall(req *bus.Request, fl *flight) bool {
	if fl.retried {
		return false
	}
	if err := e.hal.ClearHalt(e.ctx); err != nil {
		pkg.LogError(pkg.ComponentTransmit, "halt clear failed",
			"trace", e.trace, "error", err)
		return false
	}
	fl.retried = true
	if err := e.hal.SubmitBulk(e.ctx, req); err != nil {
		return false
	}
	pkg.LogWarn(pkg.ComponentTransmit, "endpoint stall cleared, transfer resubmitted",
		"trace", e.trace)
	return true
}

// fault marks the stream dead after an unrecoverable failure. The
// worker has already stopped or will stop on its next flag check; final
// teardown happens on the next disable call. b, when non-nil, is a
// buffer whose submission never reached the bus and needs its in-flight
// accounting unwound.
func (e *transmitEngine) fault(err error, b *transferBuffer) {
	if b != nil {
		e.pool.completeTransmit(b)
	}
	e.enabled.Store(false)
	pkg.LogError(pkg.ComponentTransmit, "stream fault",
		"trace", e.trace, "error", err)
	if e.onFault != nil {
		e.onFault(err)
	}
}

func (e *transmitEngine) vblank() {
	if e.onVBlank != nil {
		e.onVBlank()
	}
}
