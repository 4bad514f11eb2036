// Package mode implements display mode negotiation for the softvga
// display bridge: PLL parameter solving, htotal adjustment, bandwidth
// policy, and hardware timing derivation.
//
// The bridge derives its pixel clock from a 10 MHz crystal through a
// prescaler, a VCO multiplier, and an output divisor. [SolvePLL]
// exhaustively searches that discrete space for the nearest achievable
// clock, carrying clocks in 6-decimal-digit fixed point so error
// comparison is exact. [Negotiate] wraps the solver with a small
// horizontal-total perturbation search and the bus-bandwidth pixel-depth
// policy, producing everything the register programming layer and the
// streaming pipeline need from a requested mode.
//
// All functions are pure: no I/O, no state.
package mode
