package cpu808x

import "testing"

// TestPFQ_CapacityByVariant covers §8 invariant 2's shape: an 8088 queues 4
// bytes, an 8086 (and anything built on top of it) queues 6.
func TestPFQ_CapacityByVariant(t *testing.T) {
	cases := []struct {
		v    Variant
		want int
	}{
		{Variant8088, 4},
		{Variant8086, 6},
		{Variant80186, 6},
		{VariantNECV20, 4},
		{VariantNECV30, 6},
	}
	for _, tc := range cases {
		c, _ := newTestCpu(tc.v)
		if c.pfq.capacity != tc.want {
			t.Fatalf("variant %v: pfq.capacity = %d, want %d", tc.v, c.pfq.capacity, tc.want)
		}
	}
}

// TestPFQ_PosWithinCapacity covers §8 invariant 2: pos never exceeds
// capacity, and fetching drains bytes in order.
func TestPFQ_PosWithinCapacity(t *testing.T) {
	c, bus := newTestCpu(Variant8088)
	c.CS.Load(0)
	c.loadCode(bus, []byte{0x90, 0x90, 0x90, 0x90, 0x90, 0xF4}) // five NOPs; HLT

	for i := 0; i < 10 && !c.Halted; i++ {
		if c.pfq.pos < 0 || c.pfq.pos > c.pfq.capacity {
			t.Fatalf("pfq.pos = %d out of range [0,%d]", c.pfq.pos, c.pfq.capacity)
		}
		c.Execute(1)
	}
	if !c.Halted {
		t.Fatalf("did not reach HLT")
	}
}

// TestPFQ_FlushOnTakenJump covers §8 invariant 7: a taken conditional jump
// flushes the queue before the next opcode fetch.
func TestPFQ_FlushOnTakenJump(t *testing.T) {
	c, bus := newTestCpu(Variant8088)
	c.CS.Load(0)
	c.Flags |= FlagZ
	// JZ +1 (skip the HLT); HLT; NOP
	c.loadCode(bus, []byte{0x74, 0x01, 0xF4, 0x90})

	c.Execute(1) // JZ, taken
	if c.pfq.pos != 0 {
		t.Fatalf("pfq.pos = %d after a taken jump, want 0 (flushed)", c.pfq.pos)
	}
}
