package cpu808x

// 80186 extension opcodes: BOUND, IMUL imm, INS/OUTS, and the NEC-only
// REPC/REPNC prefixes at 0x64/0x65 (opRepc). ROL4/ROR4 and the other NEC
// extensions are reached through 0x0F by runNECExtension in extnec.go.
// PUSHA/POPA/PUSH imm/ENTER/LEAVE live in ops_stack.go;
// shift-by-imm8 lives in ops_shift.go.

// opBound implements 0x62 (BOUND reg16, m16&16): spec.md §4.4.6.
func (c *Cpu) opBound() {
	c.doModRM()
	lowBound := c.ReadWord(c.eaSeg, c.eaAddr)
	highBound := c.ReadWord(c.eaSeg, c.eaAddr+2)
	regVal := c.getReg16(c.reg)
	if lowBound > regVal || highBound < regVal {
		c.PC = c.oldPC
		c.intrRoutine(5, false)
	}
}

// opImulImm implements 0x69 (IMUL reg16, r/m16, imm16) and 0x6B (imm8,
// sign-extended).
func (c *Cpu) opImulImm(opcode byte) {
	c.doModRM()
	rm := uint32(c.getRM16())
	var imm uint32
	if opcode == 0x69 {
		imm = uint32(c.fetchWord())
	} else {
		imm = uint32(uint16(int16(int8(c.fetchByte()))))
	}
	c.dest = rm
	c.src = imm
	c.mul(16, true)
	c.setReg16(c.reg, uint16(c.data))
	overflow := c.dest != 0 && c.dest != 0xFFFF
	c.setFlag(FlagC, overflow)
	c.setFlag(FlagV, overflow)
}

// opRepc handles the 80186-reserved opcodes 0x64/0x65, which are only
// meaningful on NEC cores (REPC/REPNC); on plain 80186 they are illegal.
func (c *Cpu) opRepc(opcode byte) {
	if !c.IsNEC {
		c.illegalOpcode(opcode)
		return
	}
	c.wait(1, false)
	if opcode == 0x64 {
		c.inRep = repNE
	} else {
		c.inRep = repE
	}
	c.repCFlag = true
	c.completed = false
}

// opInsM/opOutsM implement 0x6C/0x6D (INS) and 0x6E/0x6F (OUTS), REP-aware.
func (c *Cpu) opInsM(opcode byte) {
	bits := 8
	if opcode&1 != 0 {
		bits = 16
	}
	if !c.repStart() {
		return
	}
	c.ins(bits)
	c.wait(3, false)
	if c.inRep != repNone {
		c.completed = false
		c.repeating = true
		c.wait(1, false)
		c.CX--
		if c.irqPending() {
			c.wait(2, false)
			c.repInterrupt()
		} else {
			c.wait(2, false)
			if c.CX == 0 {
				c.repEnd()
			} else {
				c.wait(1, false)
			}
		}
	}
}

func (c *Cpu) opOutsM(opcode byte) {
	bits := 8
	if opcode&1 != 0 {
		bits = 16
	}
	if !c.repStart() {
		return
	}
	c.wait(1, false)
	c.outs(bits)
	if c.inRep != repNone {
		c.completed = false
		c.repeating = true
		c.wait(1, false)
		c.CX--
		if c.irqPending() {
			c.wait(2, false)
			c.repInterrupt()
		} else {
			c.wait(2, false)
			if c.CX == 0 {
				c.repEnd()
			} else {
				c.wait(1, false)
			}
		}
	}
}
