// Package cpu808x implements the core of a cycle-accurate Intel 8088/8086
// emulator (with 80186 and NEC V20/V30 extensions): an Execution Unit (EU),
// a Bus Interface Unit (BIU) driven by a T1-T4 bus cycle state machine, and
// a prefetch queue (PFQ). Memory, I/O, the PIC, and timers are external
// collaborators reached only through the interfaces in bus.go.
package cpu808x

import "fmt"

// Cpu holds the full architectural and transient state of one 808x core.
// All BIU/PFQ/EU state lives here rather than in file-scope globals (the
// pattern the original C source uses) so that multiple cores can coexist
// and so the whole thing can be snapshotted.
type Cpu struct {
	// General purpose registers (16-bit; AX/BX/CX/DX split into AH/AL).
	AX, BX, CX, DX uint16
	SI, DI, BP, SP uint16

	// PC is the architectural instruction pointer: the address of the next
	// byte the EU will consume from the prefetch queue. It is distinct from
	// pfq.ip, the address of the next byte the BIU will fetch INTO the queue.
	PC uint16

	// Segment registers, each redundantly holding selector and selector<<4.
	ES, CS, SS, DS Segment

	Flags uint16

	// Variant capability flags. Branched on explicitly, never via build tags,
	// so one binary can emulate any of the four variants at runtime.
	Is8086 bool
	Is186  bool
	IsNEC  bool

	UseCustomNMIVector bool
	CustomNMIVector    uint32

	// Execution state.
	Halted     bool
	FatalError string

	// Interrupt/NMI inputs, driven by the host between Execute calls.
	nmiLine   bool
	nmiEnable bool
	nmiMask   bool

	// EU transient state (reset at each instruction boundary).
	opcode     byte
	aluOp      byte
	src        uint32
	dest       uint32
	data       uint32
	inRep      byte // 0, repNE, repE
	repeating  bool
	repCFlag   bool // NEC REPC/REPNC test C instead of Z
	ovrSeg     *Segment
	inLock     bool
	clearLock  bool
	noInt      bool
	completed  bool
	oldPC      uint16

	// ModR/M decode staging.
	mod, reg, rm byte
	rmdat        byte
	eaAddr       uint16
	eaSeg        *Segment

	// BIU/BCSM state.
	phase          int
	scheduleFetch  bool
	prefetching    bool
	busRequestType int
	notReady       int
	hlda           int
	refresh        int
	accessCode     bool
	picData        int // -1 = no pending ack result

	memSeg  *Segment
	memAddr uint16
	memData uint16

	pending pendingAccess

	pfq pfq

	// Cycle accounting.
	cycles       int
	cycleDiff    int
	tsc          uint64
	cpuMultiplier uint64 // Q32.32 fixed point multiplier applied to tsc per tick

	bus   Bus
	hooks []InstructionHook
}

// Bus Cycle phases, T1..T4.
const (
	phaseT1 = iota
	phaseT2
	phaseT3
	phaseT4
)

// REP kinds.
const (
	repNone = 0
	repNE   = 1 // REPNE/REPNZ
	repE    = 2 // REP/REPE/REPZ
)

// NewCpu constructs a core bound to bus and performs a hard reset.
// variant selects the family member being emulated.
func NewCpu(bus Bus, variant Variant) *Cpu {
	c := &Cpu{bus: bus}
	c.applyVariant(variant)
	c.Reset(true)
	return c
}

// Variant selects which family member's quirks are active.
type Variant int

const (
	Variant8088 Variant = iota
	Variant8086
	Variant80186
	VariantNECV20
	VariantNECV30
)

func (c *Cpu) applyVariant(v Variant) {
	switch v {
	case Variant8088:
		c.Is8086, c.Is186, c.IsNEC = false, false, false
	case Variant8086:
		c.Is8086, c.Is186, c.IsNEC = true, false, false
	case Variant80186:
		c.Is8086, c.Is186, c.IsNEC = true, true, false
	case VariantNECV20:
		c.Is8086, c.Is186, c.IsNEC = false, true, true
	case VariantNECV30:
		c.Is8086, c.Is186, c.IsNEC = true, true, true
	}
}

// AddHook registers an instruction-boundary observer (e.g. the Lua hook in
// package luahook), standing in for the original's gdbstub_instruction().
func (c *Cpu) AddHook(h InstructionHook) {
	c.hooks = append(c.hooks, h)
}

// Reset initializes the CPU to its power-on state. A hard reset additionally
// re-seats the prefetch queue capacity and clears BIU counters; it is what
// the host should call on cold boot. A soft reset (hard=false) is used by
// some guest control paths and leaves PFQ capacity alone.
func (c *Cpu) Reset(hard bool) {
	c.phase = phaseT1
	c.inRep = repNone
	c.inLock = false
	c.completed = true
	c.repeating = false
	c.clearLock = false
	c.refresh = 0
	c.ovrSeg = nil

	if hard {
		c.pfq.capacity = 4
		if c.Is8086 {
			c.pfq.capacity = 6
		}
		c.pfq.clear(&c.phase)

		c.AX, c.BX, c.CX, c.DX = 0, 0, 0, 0
		c.SI, c.DI, c.BP, c.SP = 0, 0, 0, 0
	}

	c.ES.Load(0)
	c.SS.Load(0)
	c.DS.Load(0)
	c.CS.Load(0xFFFF)
	c.PC = 0

	c.Flags = 0
	if c.IsNEC {
		c.Flags |= FlagMD
	}

	c.aluOp = 0
	c.UseCustomNMIVector = false
	c.CustomNMIVector = 0

	c.accessCode = false
	c.hlda = 0
	c.notReady = 0
	c.busRequestType = 0
	c.picData = -1
	c.memData = 0
	c.memSeg = nil
	c.memAddr = 0

	c.nmiLine = false
	c.nmiEnable = true
	c.nmiMask = true

	c.Halted = false
	c.FatalError = ""

	c.prefetching = true
	c.pfqSchedule(true)
}

// fatal records an unimplemented-feature diagnostic and halts the core. In
// this package its only caller is BRKEM (runNECExtension); the FPU escape
// opcodes are handed to the registered FPU handlers and never reach it. It
// never panics: the host decides how to surface a halted core.
func (c *Cpu) fatal(format string, args ...any) {
	c.FatalError = fmt.Sprintf(format, args...)
	c.Halted = true
}

// Execute runs the core until the cycle budget is exhausted or the core
// halts. It returns the number of ticks actually consumed. A deficit left by
// the previous call (step never stops mid-instruction) is dropped, so every
// call with a positive budget runs at least one instruction.
func (c *Cpu) Execute(ticks int) int {
	if c.cycles < 0 {
		c.cycles = 0
	}
	c.cycles += ticks
	spent := 0
	for c.cycles > 0 && !c.Halted {
		before := c.cycles
		c.step()
		spent += before - c.cycles
		for _, h := range c.hooks {
			if h.AfterInstruction(c) {
				return spent
			}
		}
	}
	return spent
}

// TriggerInterrupt is the external entry point into the INTR microcode,
// used by software triggering of hardware vectors (e.g. a host harness).
func (c *Cpu) TriggerInterrupt(vector uint16) {
	c.intrRoutine(vector, false)
}

// RefreshRead increments the pending DRAM refresh counter; called by a
// DMA channel-0 model on every transfer.
func (c *Cpu) RefreshRead() {
	c.refresh++
}

// SetNMI raises or lowers the NMI line.
func (c *Cpu) SetNMI(active bool) {
	c.nmiLine = active
}

// SubCycles lets a peripheral steal host ticks during its own I/O callback.
func (c *Cpu) SubCycles(n int) int {
	old := c.cycles
	if n > 0 {
		c.cyclesIdle(n)
	}
	return old
}

// ResubCycles un-steals ticks that a peripheral callback didn't actually
// spend, crediting them back as consumed wait states rather than as a flat
// subtraction (it decrements notReady once per actually-elapsed cycle).
func (c *Cpu) ResubCycles(oldCycles int) {
	if oldCycles > c.cycles {
		diff := oldCycles - c.cycles
		for i := 0; i < diff; i++ {
			if c.notReady > 0 {
				c.notReady--
			}
		}
	}
	c.processTimers()
}
