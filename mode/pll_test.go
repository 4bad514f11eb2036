package mode

import "testing"

func TestSolvePLLExactMatch(t *testing.T) {
	// 25 MHz has an exact configuration: VCO 100 MHz / divisor 4.
	const clockHz = 25000000

	pll, achieved, ppmErr := SolvePLL(clockHz * Precision)
	if ppmErr != 0 {
		t.Fatalf("SolvePLL(25 MHz) ppm error = %d, want 0", ppmErr)
	}
	if achieved != clockHz {
		t.Errorf("achieved clock = %d, want %d", achieved, clockHz)
	}

	vco := uint32(XtalHz) / pll.Prescaler * pll.Multiplier
	if vco/pll.Divisor != clockHz {
		t.Errorf("vco/divisor = %d/%d does not reproduce 25 MHz", vco, pll.Divisor)
	}
}

func TestSolvePLLReportedError(t *testing.T) {
	// The reported ppm error must be reproducible from the returned
	// parameters, and the VCO must stay in hardware bounds, across the
	// supported clock range.
	for clockHz := uint64(1000000); clockHz <= 500000000; clockHz += 7777777 {
		clockMil := clockHz * Precision
		pll, achieved, ppmErr := SolvePLL(clockMil)
		if ppmErr == NoSolution {
			t.Fatalf("SolvePLL(%d Hz) found no solution", clockHz)
		}

		vco := uint32(XtalHz) / pll.Prescaler * pll.Multiplier
		if vco < VCOMinHz || vco > VCOMaxHz {
			t.Errorf("clock %d Hz: vco %d outside [%d, %d]",
				clockHz, vco, VCOMinHz, VCOMaxHz)
		}
		if got := vco / pll.Divisor; got != achieved {
			t.Errorf("clock %d Hz: achieved %d != vco/divisor %d",
				clockHz, achieved, got)
		}
		if got := pllPPMErr(clockMil, vco, pll.Divisor); got != ppmErr {
			t.Errorf("clock %d Hz: reported ppm %d, recomputed %d",
				clockHz, ppmErr, got)
		}
	}
}

func TestSolvePLLDeterministic(t *testing.T) {
	const clockMil = 148500000 * uint64(Precision) // 1080p pixel clock

	first, firstHz, firstErr := SolvePLL(clockMil)
	for i := 0; i < 3; i++ {
		pll, hz, ppmErr := SolvePLL(clockMil)
		if pll != first || hz != firstHz || ppmErr != firstErr {
			t.Fatalf("SolvePLL not deterministic: %+v/%d/%d vs %+v/%d/%d",
				pll, hz, ppmErr, first, firstHz, firstErr)
		}
	}
}

func TestVCOFunctionBands(t *testing.T) {
	tests := []struct {
		vco  uint32
		want uint32
	}{
		{62500000, 0},
		{124999999, 0},
		{125000000, 1},
		{249999999, 1},
		{250000000, 2},
		{499999999, 2},
		{500000000, 3},
		{1000000000, 3},
	}
	for _, tt := range tests {
		if got := vcoFunction(tt.vco); got != tt.want {
			t.Errorf("vcoFunction(%d) = %d, want %d", tt.vco, got, tt.want)
		}
	}
}

func TestPLLPPMErr(t *testing.T) {
	// 100 MHz VCO, divisor 4, requesting exactly 25 MHz: zero error.
	if got := pllPPMErr(25000000*Precision, 100000000, 4); got != 0 {
		t.Errorf("exact match ppm = %d, want 0", got)
	}

	// Requesting 25.025 MHz against an achievable 25 MHz: 1000 ppm low.
	if got := pllPPMErr(25025000*Precision, 100000000, 4); got != 999 {
		// 25000/25.025 per million, integer-truncated.
		t.Errorf("offset match ppm = %d, want 999", got)
	}
}
