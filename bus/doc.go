// Package bus defines the hardware abstraction layer for the streaming
// bulk endpoint of a USB display-bridge adapter.
//
// The [BulkHAL] interface exposes the minimal contract the stream core
// needs from a bus backend: asynchronous scatter-gather bulk submission
// with completion callbacks, halt recovery, cancellation and quiescence,
// and endpoint/speed queries. Platform integrations implement BulkHAL
// over a real controller; the bus/loopback package implements it over an
// in-memory endpoint for tests and examples.
//
// # Completion Model
//
// SubmitBulk never blocks on the wire. Each submitted [Request] completes
// exactly once, on the HAL's completion context, via its Complete
// callback. Completion callbacks must be short and must not block: the
// stream core only moves a buffer between queues and posts a transmit
// credit from there.
package bus
