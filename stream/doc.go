// Package stream implements the framebuffer streaming pipeline of the
// softvga display bridge.
//
// The pipeline converts raw 32-bit XRGB frame updates into a continuous
// sequence of bulk transfers formatted for the bridge hardware. Three
// pieces cooperate:
//
//   - a pool of transfer buffers cycling through render, transmit, and
//     in-flight queues under a single lock
//   - per-scanline pixel packers reducing XRGB to the 1, 2, or 3 byte
//     wire formats the bridge scans out
//   - a transmit engine whose worker keeps the bulk endpoint fed,
//     gated by a bounded count of transmit credits
//
// # Execution Contexts
//
// Three contexts touch the pipeline concurrently: the frame producer
// calling [Stream.SubmitFrame], which never blocks; the transmit worker,
// which may suspend indefinitely waiting for a credit; and the bus
// completion context, which briefly moves a buffer between queues and
// posts a credit. All queue state is guarded by one pool-wide mutex held
// only for constant-time operations.
//
// # Overload Policy
//
// When the producer outruns the bus, frames are dropped or the newest
// in-flight buffer is overwritten in place rather than ever blocking
// the producer or idling the endpoint. Under sustained overload the
// stream favors frame freshness over strict delivery order, and an
// overwritten in-flight buffer can tear on the wire.
package stream
