// Package loopback implements the bus.BulkHAL interface over an in-memory
// endpoint.
//
// Submissions drain in order on a background goroutine, optionally
// throttled to a configured byte rate so tests can create sustained
// backpressure. The bus records every successfully drained transfer and
// offers fault injection hooks:
//
//   - FailSubmissions rejects submissions with a transient
//     no-resources error
//   - SetSubmitError injects a permanent submission failure
//   - StallOnce halts the endpoint until ClearHalt
//   - HoldCompletions keeps transfers outstanding indefinitely,
//     exercising bounded-timeout teardown
//
// It backs the package tests and the examples; platform integrations
// replace it with a HAL over real controller hardware.
package loopback
