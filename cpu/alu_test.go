package cpu808x

import "testing"

// TestALU_AddSubRoundTrip exercises the §8 quantified invariant: for any
// ADD, computing SUB(result, b) recovers a modulo flag state.
func TestALU_AddSubRoundTrip(t *testing.T) {
	c, bus := newTestCpu(Variant8088)
	c.CS.Load(0)
	// MOV AX,0x7F; MOV BX,0x01; ADD AX,BX; SUB AX,BX; HLT
	c.loadCode(bus, []byte{
		0xB8, 0x7F, 0x00,
		0xBB, 0x01, 0x00,
		0x01, 0xD8,
		0x29, 0xD8,
		0xF4,
	})
	for i := 0; i < 5 && !c.Halted; i++ {
		c.Execute(1)
	}
	if c.AX != 0x7F {
		t.Fatalf("AX = %#04x, want 0x007F after ADD;SUB round trip", c.AX)
	}
}

// TestALU_AddByteCarryOut covers spec.md §4.4.2's unsigned ADD carry: AL=0xFF
// plus 1 wraps to 0x00 and must leave CF set, not just ZF.
func TestALU_AddByteCarryOut(t *testing.T) {
	c, bus := newTestCpu(Variant8088)
	c.CS.Load(0)
	// MOV AL,0xFF; ADD AL,1; HLT
	c.loadCode(bus, []byte{0xB0, 0xFF, 0x04, 0x01, 0xF4})
	for i := 0; i < 3 && !c.Halted; i++ {
		c.Execute(1)
	}
	if lo := byte(c.AX); lo != 0x00 {
		t.Fatalf("AL = %#02x, want 0x00", lo)
	}
	if !c.CF() {
		t.Fatalf("CF clear after 0xFF + 1, want set")
	}
	if !c.ZF() {
		t.Fatalf("ZF clear after 0xFF + 1 wrapped to 0, want set")
	}
}

// TestALU_PushPopRoundTrip covers the §8 round-trip property for every
// general register.
func TestALU_PushPopRoundTrip(t *testing.T) {
	c, bus := newTestCpu(Variant8088)
	c.CS.Load(0)
	c.SP = 0x0100
	c.BX = 0xBEEF
	startSP := c.SP

	c.loadCode(bus, []byte{0x53, 0x5B, 0xF4}) // PUSH BX; POP BX; HLT
	for i := 0; i < 3 && !c.Halted; i++ {
		c.Execute(1)
	}

	if c.BX != 0xBEEF {
		t.Fatalf("BX = %#04x, want 0xBEEF after PUSH/POP round trip", c.BX)
	}
	if c.SP != startSP {
		t.Fatalf("SP = %#04x, want restored %#04x", c.SP, startSP)
	}
}

// TestALU_PushfPopfMaskRoundTrip covers the variant-specific PUSHF/POPF
// masking invariant (spec.md §8): architectural bits survive, reserved bit
// 1 is always forced set.
func TestALU_PushfPopfMaskRoundTrip(t *testing.T) {
	for _, v := range []Variant{Variant8086, VariantNECV30} {
		c, bus := newTestCpu(v)
		c.CS.Load(0)
		c.SP = 0x0100
		// Every bit set, including undefined ones, except T: with T set the
		// core would single-step trap after PUSHF.
		start := uint16(0xFFFF) &^ FlagT
		c.Flags = start

		c.loadCode(bus, []byte{0x9C, 0x9D, 0xF4}) // PUSHF; POPF; HLT
		for i := 0; i < 3 && !c.Halted; i++ {
			c.Execute(1)
		}

		mask := c.pushfMask()
		if c.Flags&mask != start&mask {
			t.Fatalf("variant %v: Flags=%#04x lost architectural bits under mask %#04x", v, c.Flags, mask)
		}
		if c.Flags&flagR1 == 0 {
			t.Fatalf("variant %v: reserved bit 1 not forced set, Flags=%#04x", v, c.Flags)
		}
	}
}

// TestALU_SegmentBaseInvariant covers §8 invariant 3: base == selector<<4.
func TestALU_SegmentBaseInvariant(t *testing.T) {
	c, _ := newTestCpu(Variant8088)
	for _, sel := range []uint16{0, 0x1234, 0xFFFF} {
		c.DS.Load(sel)
		if c.DS.Base != uint32(sel)<<4 {
			t.Fatalf("selector %#04x: base = %#06x, want %#06x", sel, c.DS.Base, uint32(sel)<<4)
		}
	}
}

// TestALU_Push186SPWrapBoundary covers the documented 80186 (non-NEC)
// SP==1 PUSH boundary case named explicitly in spec.md §8.
func TestALU_Push186SPWrapBoundary(t *testing.T) {
	c, bus := newTestCpu(Variant80186)
	c.CS.Load(0)
	c.SS.Load(0)
	c.SP = 1
	c.AX = 0xAA55

	c.loadCode(bus, []byte{0x50, 0xF4}) // PUSH AX; HLT
	for i := 0; i < 2 && !c.Halted; i++ {
		c.Execute(1)
	}

	if c.SP != 0xFFFF {
		t.Fatalf("SP = %#04x, want 0xFFFF after PUSH at SP==1", c.SP)
	}
	if bus.mem[c.SS.Base+0xFFFF] != 0x55 || bus.mem[c.SS.Base+0x0000] != 0xAA {
		t.Fatalf("PUSH at SP==1 did not land at SS:[0xFFFF]/SS:[0x0000]")
	}
}

// TestALU_LoopCXOne covers the §8 boundary: LOOP with CX==1 decrements to 0
// and does not take the branch.
func TestALU_LoopCXOne(t *testing.T) {
	c, bus := newTestCpu(Variant8088)
	c.CS.Load(0)
	c.CX = 1
	c.loadCode(bus, []byte{0xE2, 0xFE, 0xF4}) // LOOP -2; HLT
	for i := 0; i < 2 && !c.Halted; i++ {
		c.Execute(1)
	}
	if c.CX != 0 {
		t.Fatalf("CX = %#04x, want 0", c.CX)
	}
	if !c.Halted {
		t.Fatalf("LOOP with CX==1 took the branch instead of falling through")
	}
}

// TestALU_JcxzTaken covers the §8 boundary: JCXZ with CX==0 takes the branch.
func TestALU_JcxzTaken(t *testing.T) {
	c, bus := newTestCpu(Variant8088)
	c.CS.Load(0)
	c.CX = 0
	// JCXZ +1 (skip the HLT at offset 2); HLT; NOP
	c.loadCode(bus, []byte{0xE3, 0x01, 0xF4, 0x90})
	for i := 0; i < 2 && !c.Halted; i++ {
		c.Execute(1)
	}
	if c.Halted {
		t.Fatalf("JCXZ with CX==0 did not take the branch (fell into HLT)")
	}
	if c.PC != 4 {
		t.Fatalf("PC = %#04x, want 4 (landed on the NOP, then advanced past it)", c.PC)
	}
}
