package cpu808x

import "testing"

// TestBCD_DaaAdjustsPackedAddition exercises the textbook DAA case: adding
// two packed-BCD bytes whose low nibble sum overflows decimal.
func TestBCD_DaaAdjustsPackedAddition(t *testing.T) {
	c, bus := newTestCpu(Variant8088)
	c.CS.Load(0)
	c.AX = 0x0015 // AL = 0x15 (BCD 15)
	c.BX = 0x0027 // BL = 0x27 (BCD 27)
	// ADD AL,BL; DAA; HLT
	c.loadCode(bus, []byte{0x00, 0xD8, 0x27, 0xF4})
	for i := 0; i < 3 && !c.Halted; i++ {
		c.Execute(1)
	}
	if al := byte(c.AX); al != 0x42 {
		t.Fatalf("AL = %#02x, want 0x42 (BCD 15+27=42)", al)
	}
}

// TestBCD_AaaAdjustsUnpacked exercises AAA: ADD AL,AL with AL starting at
// 0x09 leaves AX with AH incremented and AL masked to its low nibble.
func TestBCD_AaaAdjustsUnpacked(t *testing.T) {
	c, bus := newTestCpu(Variant8088)
	c.CS.Load(0)
	c.AX = 0x0009
	// ADD AL,AL; AAA; HLT
	c.loadCode(bus, []byte{0x00, 0xC0, 0x37, 0xF4})
	for i := 0; i < 3 && !c.Halted; i++ {
		c.Execute(1)
	}
	if al := byte(c.AX); al != 0x08 {
		t.Fatalf("AL = %#02x, want 0x08 (9+9=18 -> AAA -> AL=8, carry into AH)", al)
	}
	if ah := byte(c.AX >> 8); ah != 1 {
		t.Fatalf("AH = %#02x, want 0x01", ah)
	}
	if !c.CF() || !c.AF() {
		t.Fatalf("CF/AF not both set after AAA carry")
	}
}
