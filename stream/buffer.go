package stream

// pageSize is the fragment granularity of a transfer buffer's
// scatter-gather view.
const pageSize = 4096

// swizzleSlack is spare room past the logical payload. The pixel packers
// permute byte lanes with XOR addressing that can step up to one 8-byte
// block past a scanline that is not block-aligned; the slack keeps the
// final line's writes inside the allocation.
const swizzleSlack = 8

// queueTag identifies which pool queue a buffer belongs to.
type queueTag uint8

const (
	queueNone     queueTag = iota // Not owned by any queue
	queueRender                   // Free for encoding
	queueTransmit                 // Encoded, ready to transmit
	queueWait                     // In flight on the bus
)

// String returns the queue name.
func (q queueTag) String() string {
	switch q {
	case queueRender:
		return "render"
	case queueTransmit:
		return "transmit"
	case queueWait:
		return "wait"
	default:
		return "none"
	}
}

// transferBuffer owns one frame's worth of encoded payload.
//
// The backing memory is logically contiguous; pages is its scatter-gather
// view in pageSize fragments, handed as-is to the bus layer. inFlight
// counts outstanding bus completions referencing the buffer; it exceeds 1
// only while a zero-length companion transfer is also pending. A buffer
// is reusable for encoding only at inFlight 0.
type transferBuffer struct {
	data     []byte   // Backing memory, len size+swizzleSlack
	pages    [][]byte // Scatter-gather view of data[:size]
	size     int      // Logical payload size
	inFlight int      // Outstanding completions
	queue    queueTag // Current queue membership
}

// newTransferBuffer allocates a buffer for one encoded frame of the
// given size and builds its scatter-gather view.
func newTransferBuffer(size int) *transferBuffer {
	b := &transferBuffer{
		data: make([]byte, size+swizzleSlack),
		size: size,
	}
	for off := 0; off < size; off += pageSize {
		end := off + pageSize
		if end > size {
			end = size
		}
		b.pages = append(b.pages, b.data[off:end])
	}
	return b
}
