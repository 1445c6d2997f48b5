package cpu808x

import "testing"

// These mirror the six concrete end-to-end seed scenarios: literal byte
// sequences with expected final architectural state, in the same spirit as
// the teacher's TestX86_RegisterAccess-style unit tests but driven through
// the real EU dispatch loop (Execute) instead of poking fields directly.
//
// Execute(1) always runs exactly one full instruction: step() never checks
// the budget mid-instruction, so a 1-tick budget is consumed (driven
// negative) by the time the first instruction retires. Every scenario below
// either terminates on a HLT or is called exactly as many times as there are
// instructions, so execution never runs on into unrelated memory.

func TestScenario_MovAddImmediate(t *testing.T) {
	c, bus := newTestCpu(Variant8088)
	c.CS.Load(0)
	c.loadCode(bus, []byte{0xB8, 0x34, 0x12, 0x05, 0x01, 0x00, 0xF4}) // MOV AX,0x1234; ADD AX,1; HLT

	for i := 0; i < 3 && !c.Halted; i++ {
		c.Execute(1)
	}

	if c.AX != 0x1235 {
		t.Fatalf("AX = %#04x, want 0x1235", c.AX)
	}
	if c.PC != 7 {
		t.Fatalf("PC = %#04x, want 7 (past the HLT)", c.PC)
	}
	if c.Flags&FlagC != 0 || c.Flags&FlagZ != 0 || c.Flags&FlagS != 0 || c.Flags&FlagV != 0 {
		t.Fatalf("flags = %#04x, want C=Z=S=V=0", c.Flags)
	}
}

func TestScenario_LodsStosLoop(t *testing.T) {
	c, bus := newTestCpu(Variant8088)
	c.CS.Load(0)
	// MOV CX,5; CLD; LODSB; STOSB; LOOP -5
	c.loadCode(bus, []byte{0xB9, 0x05, 0x00, 0xFC, 0xAC, 0xAA, 0xE2, 0xFB})

	c.DS.Load(0x1000)
	c.ES.Load(0x2000)
	c.SI = 0
	c.DI = 0
	copy(bus.mem[c.DS.Base:], []byte("ABCDE\x00"))

	for i := 0; i < 30 && c.PC < 8; i++ {
		c.Execute(1)
	}

	got := bus.mem[c.ES.Base : c.ES.Base+5]
	if string(got) != "ABCDE" {
		t.Fatalf("ES:[0..5) = %q, want %q", got, "ABCDE")
	}
	if c.CX != 0 {
		t.Fatalf("CX = %#04x, want 0", c.CX)
	}
	if c.SI != 5 || c.DI != 5 {
		t.Fatalf("SI=%#04x DI=%#04x, want 5,5", c.SI, c.DI)
	}
}

func TestScenario_SoftwareInterrupt(t *testing.T) {
	c, bus := newTestCpu(Variant8088)
	c.CS.Load(0)
	c.loadCode(bus, []byte{0xCD, 0x21}) // INT 0x21

	bus.WriteMemWord(0x21*4, 0x0100)   // offset
	bus.WriteMemWord(0x21*4+2, 0x2000) // segment

	oldFlags := c.Flags
	c.Execute(1)

	if c.CS.Selector != 0x2000 || c.PC != 0x0100 {
		t.Fatalf("CS:PC = %#04x:%#04x, want 2000:0100", c.CS.Selector, c.PC)
	}
	ip := c.pop()
	cs := c.pop()
	flags := c.pop()
	if ip != 2 || cs != 0 {
		t.Fatalf("pushed return CS:IP = %#04x:%#04x, want 0000:0002", cs, ip)
	}
	if flags != oldFlags {
		t.Fatalf("pushed flags = %#04x, want %#04x", flags, oldFlags)
	}
	if c.Flags&FlagI != 0 || c.Flags&FlagT != 0 {
		t.Fatalf("flags = %#04x, want I=T=0 after INT", c.Flags)
	}
}

func TestScenario_DivNoFault(t *testing.T) {
	c, bus := newTestCpu(Variant8088)
	c.CS.Load(0)
	c.loadCode(bus, []byte{0xF6, 0xF3}) // DIV BL
	c.AX = 0x00FF
	c.BX = 0x0010

	c.Execute(1)

	if c.AX != 0x0F0F {
		t.Fatalf("AX = %#04x, want 0x0F0F (AL=quotient,AH=remainder)", c.AX)
	}
	if c.Halted {
		t.Fatalf("core halted on a non-faulting DIV")
	}
}

func TestScenario_DivOverflowFaults(t *testing.T) {
	c, bus := newTestCpu(Variant8088)
	c.CS.Load(0x1000) // keep code away from the IVT at physical 0
	c.loadCode(bus, []byte{0xF6, 0xF3})         // DIV BL
	c.AX = 0xFF00
	c.BX = 0x0001

	bus.WriteMemWord(0*4, 0x9000)
	bus.WriteMemWord(0*4+2, 0x3000)

	c.SS.Load(0x2000)
	c.SP = 0x0100
	oldSP := c.SP

	c.Execute(1)

	if c.AX != 0xFF00 {
		t.Fatalf("AX = %#04x, want unchanged 0xFF00 after DIV fault", c.AX)
	}
	if c.CS.Selector != 0x3000 || c.PC != 0x9000 {
		t.Fatalf("CS:PC = %#04x:%#04x, want 3000:9000 (vectored through INT0)", c.CS.Selector, c.PC)
	}
	// One FLAGS/CS/IP frame only: a duplicated INT 0 vectoring would push
	// two and leave SP 12 bytes lower instead of 6.
	if pushed := oldSP - c.SP; pushed != 6 {
		t.Fatalf("SP dropped by %d bytes, want 6 (one INT0 frame, not two)", pushed)
	}
}

// countingBus wraps testBus to count ReadMemByte vs ReadMemWord calls, used
// to distinguish the 8088's split-byte memory access from the 8086's single
// aligned word access.
type countingBus struct {
	*testBus
	byteReads int
	wordReads int
}

func (b *countingBus) ReadMemByte(addr uint32) byte {
	b.byteReads++
	return b.testBus.ReadMemByte(addr)
}

func (b *countingBus) ReadMemWord(addr uint32) uint16 {
	b.wordReads++
	return b.testBus.ReadMemWord(addr)
}

func TestScenario_WordAccessWidthByVariant(t *testing.T) {
	run := func(v Variant) (byteReads, wordReads int) {
		inner := newTestBus()
		bus := &countingBus{testBus: inner}
		c := NewCpu(bus, v)
		c.CS.Load(0)
		c.loadCode(inner, []byte{0x8B, 0x06, 0x00, 0x01}) // MOV AX,[0x0100]
		bus.byteReads, bus.wordReads = 0, 0
		c.Execute(1)
		return bus.byteReads, bus.wordReads
	}

	if br, wr := run(Variant8086); wr != 1 {
		t.Fatalf("8086: byteReads=%d wordReads=%d, want exactly one word read", br, wr)
	}
	if br, wr := run(Variant8088); br < 2 || wr != 0 {
		t.Fatalf("8088: byteReads=%d wordReads=%d, want >=2 byte reads, no word reads", br, wr)
	}
}
