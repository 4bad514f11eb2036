package stream

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ardnew/softvga/bus"
	"github.com/ardnew/softvga/mode"
	"github.com/ardnew/softvga/pkg"
)

// Default teardown bounds.
const (
	defaultDrainTimeout = time.Second
	defaultCancelGrace  = 250 * time.Millisecond
)

// Config holds stream parameters and collaborator callbacks.
type Config struct {
	// DrainTimeout bounds how long Disable waits for outstanding
	// transfers before force-cancelling them. Default 1s.
	DrainTimeout time.Duration

	// CancelGrace bounds the wait for forced cancellation to settle.
	// Default 250ms.
	CancelGrace time.Duration

	// OnVBlank, when set, fires on every frame transfer completion;
	// the display framework uses it to pace frame production. It runs
	// on the bus completion context and must not block.
	OnVBlank func()

	// OnDisconnect, when set, fires when a stream fault forces the
	// stream down, mirroring a connector hotplug signal.
	OnDisconnect func()
}

// Stream is the public surface of the display streaming pipeline: mode
// negotiation, enable/disable lifecycle, and frame submission.
//
// A Stream composes the buffer pool, the pixel packers, and the transmit
// engine over a bus.BulkHAL. Construct it with New; all methods are safe
// for concurrent use.
type Stream struct {
	hal    bus.BulkHAL
	pool   *bufferPool
	engine *transmitEngine

	mu      sync.Mutex
	enabled bool
	trace   string

	onDisconnect func()
}

// New creates a stream over the given bus HAL.
func New(hal bus.BulkHAL, cfg Config) *Stream {
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = defaultDrainTimeout
	}
	if cfg.CancelGrace <= 0 {
		cfg.CancelGrace = defaultCancelGrace
	}

	s := &Stream{
		hal:          hal,
		pool:         newBufferPool(),
		onDisconnect: cfg.OnDisconnect,
	}
	s.engine = newTransmitEngine(hal, s.pool, cfg.DrainTimeout, cfg.CancelGrace)
	s.engine.onVBlank = cfg.OnVBlank
	s.engine.onFault = s.fault
	return s
}

// Negotiate checks whether the requested mode is achievable on this
// stream's bus without mutating any state. It is the mode-validity
// entry point of the display framework.
func (s *Stream) Negotiate(m mode.Mode) (mode.Result, error) {
	return mode.Negotiate(m, s.hal.Speed())
}

// SetMode negotiates the requested mode and configures the stream's
// frame encoding to match. The returned result carries the PLL and
// timing blocks for the register programming layer.
//
// Mode changes do not race in-progress transmission: the new encoding
// is recorded under the pool lock and existing buffers are reallocated
// lazily, so a changed size is never written into a stale buffer.
func (s *Stream) SetMode(m mode.Mode) (mode.Result, error) {
	res, err := s.Negotiate(m)
	if err != nil {
		return mode.Result{}, err
	}
	if err := s.Configure(m.Pixels(), res.BytesPerPixel); err != nil {
		return mode.Result{}, err
	}
	return res, nil
}

// Configure sets the frame encoding directly: the active pixel count per
// frame and the wire pixel depth (1..3 bytes). The buffer payload size
// becomes pixels*bytesPerPixel rounded up to a multiple of 8.
func (s *Stream) Configure(pixels, bytesPerPixel int) error {
	if pixels <= 0 || bytesPerPixel < 1 || bytesPerPixel > 3 {
		return pkg.ErrInvalidParameter
	}
	s.pool.configure(pixels, bytesPerPixel)
	return nil
}

// Enable allocates the buffer pool and starts the transmit engine. The
// stream must have a configured mode. The context bounds the lifetime
// of the transmit worker.
func (s *Stream) Enable(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.enabled {
		return pkg.ErrAlreadyEnabled
	}

	s.trace = uuid.New().String()
	if err := s.engine.enable(ctx, s.trace); err != nil {
		return err
	}
	s.enabled = true

	pkg.LogInfo(pkg.ComponentStream, "stream enabled", "trace", s.trace)
	return nil
}

// Disable stops the transmit engine, quiesces the bus within the
// configured bounds, and frees the buffer pool. Disable is idempotent
// and safe to call from error-unwind paths.
func (s *Stream) Disable() error {
	s.mu.Lock()
	s.enabled = false
	s.mu.Unlock()

	s.engine.disable()
	return nil
}

// Enabled reports whether the stream is accepting frames.
func (s *Stream) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// SubmitFrame encodes one frame of 32-bit XRGB pixels and queues it for
// transmission. Rows are pitch bytes apart in pix.
//
// SubmitFrame never blocks: under backpressure the frame is silently
// dropped, per the pool's overload policy. The frame geometry must
// match the configured mode.
func (s *Stream) SubmitFrame(pix []byte, width, height, pitch int) error {
	if width <= 0 || height <= 0 || pitch < width*4 {
		return pkg.ErrInvalidParameter
	}
	if len(pix) < (height-1)*pitch+width*4 {
		return pkg.ErrInvalidParameter
	}

	pixels, bytesPix := s.pool.encoding()
	if width*height != pixels {
		return pkg.ErrInvalidParameter
	}

	if !s.Enabled() {
		return pkg.ErrNotEnabled
	}

	b := s.pool.selectForEncode()
	if b == nil {
		// Producer outran the pipe; freshness policy drops the frame.
		pkg.LogDebug(pkg.ComponentStream, "frame dropped", "trace", s.trace)
		return nil
	}

	encodeFrame(b.data, pix, width, height, pitch, bytesPix)
	s.pool.finishEncode(b)
	return nil
}

// fault runs on an unrecoverable stream failure. Teardown happens on a
// separate goroutine because the fault originates inside the worker or
// a completion callback, which Disable waits on.
func (s *Stream) fault(err error) {
	s.mu.Lock()
	s.enabled = false
	s.mu.Unlock()

	pkg.LogError(pkg.ComponentStream, "stream disabled by fault",
		"trace", s.trace, "error", err)

	go s.engine.disable()

	if s.onDisconnect != nil {
		s.onDisconnect()
	}
}
