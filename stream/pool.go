package stream

import (
	"fmt"
	"sync"

	"github.com/ardnew/softvga/pkg"
)

// Buffer population: three pipeline stages plus one spare, so rendering,
// transmission, and producer copy each own a buffer at steady state.
const (
	streamBufMin = 3
	streamBufNum = streamBufMin + 1
)

// bufferPool owns the transfer buffers of one stream and tracks them
// across three ordered queues:
//
//   - render: free for encoding, FIFO for reuse
//   - transmit: encoded and ready, FIFO for wire order
//   - wait: in flight on the bus
//
// All queue mutations happen under one mutex, held only for O(1) slice
// operations (and the rare lazy reallocation on resize), never across a
// bus call. A buffer is a member of exactly one queue at all times; every
// transition is a single remove-append under the lock.
type bufferPool struct {
	mu sync.Mutex

	render   []*transferBuffer
	transmit []*transferBuffer
	wait     []*transferBuffer

	bufSize  int
	bytesPix int
	pixels   int

	// alloc builds one buffer; tests substitute failing allocators to
	// exercise the all-or-nothing acquire path.
	alloc func(size int) (*transferBuffer, error)
}

func newBufferPool() *bufferPool {
	return &bufferPool{
		alloc: func(size int) (*transferBuffer, error) {
			return newTransferBuffer(size), nil
		},
	}
}

// roundUp rounds n up to a multiple of align (a power of two).
func roundUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// configure records the negotiated frame encoding. Existing buffers are
// not touched; a buffer whose size no longer matches is reclaimed and
// reallocated on its next encode selection, and is never written at a
// stale size.
func (p *bufferPool) configure(pixels, bytesPix int) {
	// The hardware expects payloads in multiples of 8 bytes.
	size := roundUp(pixels*bytesPix, 8)

	p.mu.Lock()
	p.bytesPix = bytesPix
	p.bufSize = size
	p.pixels = pixels
	p.mu.Unlock()

	pkg.LogDebug(pkg.ComponentPool, "pool configured",
		"pixels", pixels,
		"bytes_pix", bytesPix,
		"buf_size", size)
}

// acquire allocates the full buffer population into the render queue.
// Allocation failure at any point unwinds every buffer already
// allocated and fails the whole operation.
func (p *bufferPool) acquire() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.render)+len(p.transmit)+len(p.wait) != 0 {
		return pkg.ErrAlreadyEnabled
	}
	if p.bufSize == 0 {
		return pkg.ErrNotConfigured
	}

	for i := 0; i < streamBufNum; i++ {
		b, err := p.alloc(p.bufSize)
		if err != nil {
			p.render = nil
			return fmt.Errorf("buffer %d of %d: %w", i+1, streamBufNum, err)
		}
		b.queue = queueRender
		p.render = append(p.render, b)
	}
	return nil
}

// release frees every buffer. The caller must have quiesced the bus
// first; releasing with transfers still referencing buffer memory is a
// teardown-order bug.
func (p *bufferPool) release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, b := range append(append(append([]*transferBuffer{}, p.render...), p.transmit...), p.wait...) {
		b.queue = queueNone
	}
	p.render, p.transmit, p.wait = nil, nil, nil
}

// removeLocked detaches b from its current queue. Callers hold p.mu.
func (p *bufferPool) removeLocked(b *transferBuffer) {
	var q *[]*transferBuffer
	switch b.queue {
	case queueRender:
		q = &p.render
	case queueTransmit:
		q = &p.transmit
	case queueWait:
		q = &p.wait
	default:
		return
	}
	for i, cur := range *q {
		if cur == b {
			*q = append((*q)[:i], (*q)[i+1:]...)
			break
		}
	}
	b.queue = queueNone
}

// moveTailLocked moves b to the tail of the queue identified by tag as a
// single detach-append transition. Callers hold p.mu.
func (p *bufferPool) moveTailLocked(b *transferBuffer, tag queueTag) {
	p.removeLocked(b)
	b.queue = tag
	switch tag {
	case queueRender:
		p.render = append(p.render, b)
	case queueTransmit:
		p.transmit = append(p.transmit, b)
	case queueWait:
		p.wait = append(p.wait, b)
	}
}

// selectForEncode picks the buffer the next frame is encoded into.
//
// The front of render is preferred. When render is drained and transmit
// still holds encoded frames, the new frame is dropped (nil return)
// rather than displacing a frame already queued for the wire. When both
// are empty the newest in-flight buffer is reused in place: encoding may
// then race the bus reading the same memory and tear a frame on the
// wire. That trade keeps the producer from ever blocking and is the
// documented overload policy, not a bug.
//
// The returned buffer stays in its queue while the caller encodes;
// finishEncode moves it to transmit.
func (p *bufferPool) selectForEncode() *transferBuffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	var b *transferBuffer
	switch {
	case len(p.render) > 0:
		b = p.render[0]
	case len(p.transmit) > 0:
		// Encoded frames are already waiting; drop this one.
		return nil
	case len(p.wait) > 0:
		b = p.wait[len(p.wait)-1]
	default:
		return nil
	}

	// Reallocate buffers that predate the last resize. Swap in the new
	// buffer only after a successful allocation so a failure leaves the
	// population intact (the frame is dropped either way).
	if b.size != p.bufSize {
		nb, err := p.alloc(p.bufSize)
		if err != nil {
			pkg.LogError(pkg.ComponentPool, "buffer reallocation failed",
				"size", p.bufSize, "error", err)
			return nil
		}
		tag := b.queue
		p.removeLocked(b)
		nb.queue = tag
		switch tag {
		case queueRender:
			p.render = append([]*transferBuffer{nb}, p.render...)
		case queueWait:
			p.wait = append(p.wait, nb)
		}
		b = nb
	}

	return b
}

// finishEncode queues an encoded buffer for transmission. If the
// transmit worker already claimed the buffer through its own fallback
// path, the buffer is left where it is.
func (p *bufferPool) finishEncode(b *transferBuffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if b.queue == queueRender {
		p.moveTailLocked(b, queueTransmit)
	}
}

// selectForTransmit picks the next buffer for the wire and marks it in
// flight, as one atomic transition to the wait queue.
//
// The front of transmit preserves FIFO frame order. When transmit is
// empty the newest in-flight or rendered buffer is re-sent so the
// hardware pipe never idles, mirroring the producer's fallback: under
// sustained overload the stream favors freshness over strict order.
//
// Returns nil only when the pool holds no buffers (stream disabled).
func (p *bufferPool) selectForTransmit() *transferBuffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	var b *transferBuffer
	switch {
	case len(p.transmit) > 0:
		b = p.transmit[0]
	case len(p.wait) > 0:
		b = p.wait[len(p.wait)-1]
	case len(p.render) > 0:
		b = p.render[len(p.render)-1]
	default:
		return nil
	}

	b.inFlight++
	p.moveTailLocked(b, queueWait)
	return b
}

// addInFlight accounts a zero-length companion transfer against b.
func (p *bufferPool) addInFlight(b *transferBuffer) {
	p.mu.Lock()
	b.inFlight++
	p.mu.Unlock()
}

// completeTransmit retires one bus completion for b. When the last
// outstanding completion lands, the buffer returns to the tail of render
// for reuse, unless the producer has meanwhile re-purposed it through
// the overload fallback.
func (p *bufferPool) completeTransmit(b *transferBuffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if b.inFlight > 0 {
		b.inFlight--
	}
	if b.inFlight == 0 && b.queue == queueWait {
		p.moveTailLocked(b, queueRender)
	}
}

// drainToRender returns every buffer to the render queue. Used on
// disable after the bus has quiesced.
func (p *bufferPool) drainToRender() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.transmit) > 0 {
		p.moveTailLocked(p.transmit[0], queueRender)
	}
	for len(p.wait) > 0 {
		b := p.wait[0]
		b.inFlight = 0
		p.moveTailLocked(b, queueRender)
	}
}

// counts reports the population of each queue.
func (p *bufferPool) counts() (render, transmit, wait int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.render), len(p.transmit), len(p.wait)
}

// size returns the currently negotiated buffer size.
func (p *bufferPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bufSize
}

// encoding returns the negotiated frame geometry.
func (p *bufferPool) encoding() (pixels, bytesPix int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pixels, p.bytesPix
}
