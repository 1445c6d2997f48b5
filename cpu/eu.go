package cpu808x

// euState names the phase the instruction loop is in. The original keeps
// this as a pair of booleans (completed, repeating) plus an inRep byte;
// those fields still carry the actual state (they are threaded through
// every ported op handler in ops_*.go and rep.go), but step()'s own
// control flow is expressed over this small enumeration so the loop reads
// as a state machine rather than as boolean juggling.
type euState int

const (
	// euFetchOpcode: no instruction byte consumed yet this pass; fetch one
	// (either a genuinely new opcode or the next byte of a prefix chain).
	euFetchOpcode euState = iota
	// euContinueREP: re-enter the same string-op handler for another
	// iteration without fetching (opcode and its prefixes already fetched).
	euContinueREP
	// euInstructionDone: the loop exits and the epilogue runs.
	euInstructionDone
)

func (c *Cpu) loopState() euState {
	switch {
	case c.completed:
		return euInstructionDone
	case c.repeating:
		return euContinueREP
	default:
		return euFetchOpcode
	}
}

// step executes exactly one retired instruction (which may itself be one
// pass of a REP-prefixed string op), including any prefix bytes that
// precede it, then runs the instruction-boundary epilogue: interrupt
// check, clearing the transient per-instruction EU state (spec.md §4.4,
// §9 "Interrupt check points"). Prefix opcodes (segment override, LOCK,
// REP) leave completed=false, which loops back to euFetchOpcode for the
// byte that follows; string ops mid-REP leave completed=false and
// repeating=true, which loops back to euContinueREP instead.
func (c *Cpu) step() {
	c.oldPC = c.PC
	c.completed = false

	for c.loopState() != euInstructionDone {
		if c.loopState() == euFetchOpcode {
			c.opcode = c.fetchByte()
		}
		c.completed = true
		c.dispatch(c.opcode)
	}

	c.ovrSeg = nil
	c.inLock = false
	c.inRep = repNone
	c.repCFlag = false
	c.checkInterrupts()
	c.noInt = false
	c.aluOp = 0
}

// illegalOpcode implements spec.md §7's non-fatal illegal-opcode path: the
// byte is consumed (already true, since step fetched it) and a fixed
// 8-tick penalty is charged; execution continues with the next byte.
func (c *Cpu) illegalOpcode(opcode byte) {
	c.wait(8, false)
}

// dispatch decodes and executes one opcode byte, ported from the giant
// switch in the original's main execute loop (808x.c ~2723 onward).
func (c *Cpu) dispatch(opcode byte) {
	switch opcode {
	case 0x00, 0x01, 0x02, 0x03, 0x04, 0x05,
		0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D,
		0x10, 0x11, 0x12, 0x13, 0x14, 0x15,
		0x18, 0x19, 0x1A, 0x1B, 0x1C, 0x1D,
		0x20, 0x21, 0x22, 0x23, 0x24, 0x25,
		0x28, 0x29, 0x2A, 0x2B, 0x2C, 0x2D,
		0x30, 0x31, 0x32, 0x33, 0x34, 0x35,
		0x38, 0x39, 0x3A, 0x3B, 0x3C, 0x3D:
		// ALU groups 00-3F, six of every eight opcodes (ADD/OR/ADC/SBB/
		// AND/SUB/XOR/CMP); the remaining two slots per group are
		// PUSH/POP seg, 0x0F, the segment-override prefixes or the
		// DAA/DAS/AAA/AAS adjust opcodes below.
		c.runALUGroup(opcode)
	case 0x06:
		c.opPushSeg(&c.ES)
	case 0x07:
		c.opPopSeg(&c.ES)
	case 0x0E:
		c.opPushSeg(&c.CS)
	case 0x0F:
		c.opPopCSOr0F()
	case 0x16:
		c.opPushSeg(&c.SS)
	case 0x17:
		c.opPopSeg(&c.SS)
	case 0x1E:
		c.opPushSeg(&c.DS)
	case 0x1F:
		c.opPopSeg(&c.DS)
	case 0x26:
		c.opSegOverride(opcode)
	case 0x27:
		c.daa()
	case 0x2E:
		c.opSegOverride(opcode)
	case 0x2F:
		c.das()
	case 0x36:
		c.opSegOverride(opcode)
	case 0x37:
		c.aaa()
	case 0x3E:
		c.opSegOverride(opcode)
	case 0x3F:
		c.aas()

	case 0x40, 0x41, 0x42, 0x43, 0x44, 0x45, 0x46, 0x47,
		0x48, 0x49, 0x4A, 0x4B, 0x4C, 0x4D, 0x4E, 0x4F:
		c.runIncDecReg(opcode)

	case 0x50, 0x51, 0x52, 0x53, 0x54, 0x55, 0x56, 0x57:
		c.opPushReg(opcode)
	case 0x58, 0x59, 0x5A, 0x5B, 0x5C, 0x5D, 0x5E, 0x5F:
		c.opPopReg(opcode)

	case 0x60:
		if c.Is186 {
			c.opPusha()
		} else {
			c.jcc(opcode+0x10, c.condFor(opcode&0xE))
		}
	case 0x61:
		if c.Is186 {
			c.opPopa()
		} else {
			c.jcc(opcode+0x10, c.condFor(opcode&0xE))
		}
	case 0x62:
		if c.Is186 {
			c.opBound()
		} else {
			c.jcc(opcode+0x10, c.condFor(opcode&0xE))
		}
	case 0x63:
		if c.Is186 {
			c.illegalOpcode(opcode)
		} else {
			c.jcc(opcode+0x10, c.condFor(opcode&0xE))
		}
	case 0x64, 0x65:
		if c.Is186 {
			c.opRepc(opcode)
		} else {
			c.jcc(opcode+0x10, c.condFor(opcode&0xE))
		}
	case 0x66, 0x67:
		if c.Is186 {
			c.illegalOpcode(opcode)
		} else {
			c.jcc(opcode+0x10, c.condFor(opcode&0xE))
		}
	case 0x68:
		if c.Is186 {
			c.opPushImm16()
		} else {
			c.jcc(opcode+0x10, c.condFor(opcode&0xE))
		}
	case 0x69:
		if c.Is186 {
			c.opImulImm(opcode)
		} else {
			c.jcc(opcode+0x10, c.condFor(opcode&0xE))
		}
	case 0x6A:
		if c.Is186 {
			c.opPushImm8()
		} else {
			c.jcc(opcode+0x10, c.condFor(opcode&0xE))
		}
	case 0x6B:
		if c.Is186 {
			c.opImulImm(opcode)
		} else {
			c.jcc(opcode+0x10, c.condFor(opcode&0xE))
		}
	case 0x6C, 0x6D:
		if c.Is186 {
			c.opInsM(opcode)
		} else {
			c.jcc(opcode+0x10, c.condFor(opcode&0xE))
		}
	case 0x6E, 0x6F:
		if c.Is186 {
			c.opOutsM(opcode)
		} else {
			c.jcc(opcode+0x10, c.condFor(opcode&0xE))
		}

	case 0x70, 0x71:
		c.jcc(opcode, c.condFor(0x0))
	case 0x72, 0x73:
		c.jcc(opcode, c.condFor(0x2))
	case 0x74, 0x75:
		c.jcc(opcode, c.condFor(0x4))
	case 0x76, 0x77:
		c.jcc(opcode, c.condFor(0x6))
	case 0x78, 0x79:
		c.jcc(opcode, c.condFor(0x8))
	case 0x7A, 0x7B:
		c.jcc(opcode, c.condFor(0xA))
	case 0x7C, 0x7D:
		c.jcc(opcode, c.condFor(0xC))
	case 0x7E, 0x7F:
		c.jcc(opcode, c.condFor(0xE))

	case 0x80, 0x81, 0x82, 0x83:
		c.runGrp1(opcode)
	case 0x84, 0x85:
		c.runTestRM(opcode)
	case 0x86, 0x87:
		c.opXchgRM(opcode)
	case 0x88, 0x89, 0x8A, 0x8B:
		c.runMovGroup(opcode)
	case 0x8C:
		c.opMovSegRM(false)
	case 0x8D:
		c.opLea()
	case 0x8E:
		c.opMovSegRM(true)
	case 0x8F:
		c.opPopRM()

	case 0x90:
		c.opNop()
	case 0x91, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97:
		c.opXchgAX(opcode)
	case 0x98:
		c.opCBW()
	case 0x99:
		c.opCWD()
	case 0x9A:
		c.opCallFar()
	case 0x9B:
		c.opWait()
	case 0x9C:
		c.opPushf()
	case 0x9D:
		c.opPopf()
	case 0x9E:
		c.opSahf()
	case 0x9F:
		c.opLahf()

	case 0xA0, 0xA1, 0xA2, 0xA3:
		c.opMovAccMem(opcode)
	case 0xA4, 0xA5:
		c.opMovs(8 << (opcode & 1))
	case 0xA6, 0xA7:
		c.opCmpsScas(8<<(opcode&1), false)
	case 0xA8, 0xA9:
		c.runTestAXImm(opcode)
	case 0xAA, 0xAB:
		c.opStos(8 << (opcode & 1))
	case 0xAC, 0xAD:
		c.opLods(8 << (opcode & 1))
	case 0xAE, 0xAF:
		c.opCmpsScas(8<<(opcode&1), true)

	case 0xB0, 0xB1, 0xB2, 0xB3, 0xB4, 0xB5, 0xB6, 0xB7,
		0xB8, 0xB9, 0xBA, 0xBB, 0xBC, 0xBD, 0xBE, 0xBF:
		c.opMovRegImm(opcode)

	case 0xC0, 0xC1:
		if c.Is186 {
			c.runShiftImm8(opcode)
		} else {
			c.illegalOpcode(opcode)
		}
	case 0xC2, 0xC3:
		c.opRetNear(opcode)
	case 0xC4:
		c.opLdsLes(&c.ES)
	case 0xC5:
		c.opLdsLes(&c.DS)
	case 0xC6, 0xC7:
		c.opMovRMImm(opcode)
	case 0xC8:
		if c.Is186 {
			c.opEnter()
		} else {
			c.illegalOpcode(opcode)
		}
	case 0xC9:
		if c.Is186 {
			c.opLeave()
		} else {
			c.illegalOpcode(opcode)
		}
	case 0xCA, 0xCB:
		c.opRetFar(opcode)
	case 0xCC:
		c.opInt3()
	case 0xCD:
		c.opIntImm()
	case 0xCE:
		c.opInto()
	case 0xCF:
		c.opIret()

	case 0xD0, 0xD1, 0xD2, 0xD3:
		c.runShiftRM(opcode)
	case 0xD4:
		c.opAam()
	case 0xD5:
		c.opAad()
	case 0xD6:
		c.opSalc()
	case 0xD7:
		c.opXlat()
	case 0xD8, 0xD9, 0xDA, 0xDB, 0xDC, 0xDD, 0xDE, 0xDF:
		c.opEsc(opcode)

	case 0xE0, 0xE1, 0xE2, 0xE3:
		c.opLoop(opcode)
	case 0xE4, 0xE5:
		c.opInFixed(opcode)
	case 0xE6, 0xE7:
		c.opOutFixed(opcode)
	case 0xE8:
		c.opCallNear()
	case 0xE9:
		c.opJmpNear()
	case 0xEA:
		c.opJmpFar()
	case 0xEB:
		c.opJmpShort()
	case 0xEC, 0xED:
		c.opInDX(opcode)
	case 0xEE, 0xEF:
		c.opOutDX(opcode)

	case 0xF0, 0xF1:
		c.opLockPrefix()
	case 0xF2, 0xF3:
		c.opRepPrefix(opcode)
	case 0xF4:
		c.opHlt()
	case 0xF5:
		c.opCmc()
	case 0xF6, 0xF7:
		c.runGrp3(opcode)
	case 0xF8, 0xF9:
		c.opClcStc(opcode)
	case 0xFA, 0xFB:
		c.opCliSti(opcode)
	case 0xFC, 0xFD:
		c.opCldStd(opcode)
	case 0xFE, 0xFF:
		c.runGrp45(opcode)

	default:
		c.illegalOpcode(opcode)
	}
}

// runTestRM implements opcodes 84/85 (TEST r/m, reg): like the Gb/Eb form
// of the ALU groups, but never writes the result back.
func (c *Cpu) runTestRM(opcode byte) {
	c.doModRM()
	c.wait(2, false)
	bits := 8
	if opcode&1 != 0 {
		bits = 16
	}
	if bits == 16 {
		c.dest = uint32(c.getRM16())
		c.src = uint32(c.getReg16(c.reg))
	} else {
		c.dest = uint32(c.getRM8())
		c.src = uint32(c.getReg8(c.reg))
	}
	c.test(bits)
	if c.mod != 3 {
		c.wait(1, false)
	}
}

// opPopRM implements opcode 0x8F (Grp1A: POP r/m16). The reg field is
// always 0 on real hardware; other values are undocumented and treated the
// same way the original does (execute anyway).
func (c *Cpu) opPopRM() {
	c.doModRM()
	v := c.pop()
	c.wait(1, false)
	c.setRM16(v)
}
