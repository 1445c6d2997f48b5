package cpu808x

import "testing"

// TestRep_CmpsRepeTerminatesAtMismatch covers the §8 quantified invariant:
// CMPS with REPE terminates at the first mismatch (or CX==0), whichever
// comes first.
func TestRep_CmpsRepeTerminatesAtMismatch(t *testing.T) {
	c, bus := newTestCpu(Variant8088)
	c.CS.Load(0)
	c.loadCode(bus, []byte{0xF3, 0xA6, 0xF4}) // REPE CMPSB; HLT

	c.DS.Load(0x1000)
	c.ES.Load(0x2000)
	c.SI, c.DI = 0, 0
	c.CX = 10
	copy(bus.mem[c.DS.Base:], []byte("AAAB"))
	copy(bus.mem[c.ES.Base:], []byte("AAAC"))

	for i := 0; i < 20 && !c.Halted; i++ {
		c.Execute(1)
	}

	if c.CX != 6 {
		t.Fatalf("CX = %d, want 6 (10 - 4 comparisons)", c.CX)
	}
	if c.SI != 4 || c.DI != 4 {
		t.Fatalf("SI=%d DI=%d, want 4,4", c.SI, c.DI)
	}
	if c.ZF() {
		t.Fatalf("ZF set, want clear (terminated on mismatch)")
	}
}

// TestRep_CmpsRepeTerminatesAtCXZero covers the CX==0 half of the same
// invariant when every byte matches.
func TestRep_CmpsRepeTerminatesAtCXZero(t *testing.T) {
	c, bus := newTestCpu(Variant8088)
	c.CS.Load(0)
	c.loadCode(bus, []byte{0xF3, 0xA6, 0xF4}) // REPE CMPSB; HLT

	c.DS.Load(0x1000)
	c.ES.Load(0x2000)
	c.SI, c.DI = 0, 0
	c.CX = 3
	copy(bus.mem[c.DS.Base:], []byte("AAA"))
	copy(bus.mem[c.ES.Base:], []byte("AAA"))

	for i := 0; i < 20 && !c.Halted; i++ {
		c.Execute(1)
	}

	if c.CX != 0 {
		t.Fatalf("CX = %d, want 0", c.CX)
	}
	if c.SI != 3 || c.DI != 3 {
		t.Fatalf("SI=%d DI=%d, want 3,3", c.SI, c.DI)
	}
}
