package cpu808x

// opSegOverride implements the segment-override prefixes 26/2E/36/3E
// (ES:/CS:/SS:/DS:). Prefixes leave completed=false so the EU loop fetches
// the next byte without clearing the override (spec.md §4.4 step 3).
func (c *Cpu) opSegOverride(opcode byte) {
	c.wait(1, false)
	c.ovrSeg = c.segPtr((opcode >> 3) & 3)
	c.completed = false
}

// opLockPrefix implements F0/F1 (LOCK).
func (c *Cpu) opLockPrefix() {
	c.inLock = true
	c.wait(1, false)
	c.completed = false
}

// opRepPrefix implements F2/F3 (REPNE/REPE).
func (c *Cpu) opRepPrefix(opcode byte) {
	c.wait(1, false)
	if opcode == 0xF2 {
		c.inRep = repNE
	} else {
		c.inRep = repE
	}
	c.completed = false
	c.repCFlag = false
}

// opPopCSOr0F implements the dual meaning of opcode 0x0F: legacy 8086 "POP
// CS", or (when is_nec) the escape into the V20/V30 extension table.
func (c *Cpu) opPopCSOr0F() {
	if c.IsNEC {
		c.runNECExtension()
		return
	}
	c.wait(1, false)
	c.CS.Load(c.pop())
	c.flushQueue()
}

// opCBW/opCWD implement 98/99.
func (c *Cpu) opCBW() {
	c.wait(1, false)
	c.AX = uint16(int16(int8(byte(c.AX))))
}

func (c *Cpu) opCWD() {
	c.wait(4, false)
	if !topBit(uint32(c.AX), 16) {
		c.DX = 0
	} else {
		c.wait(1, false)
		c.DX = 0xFFFF
	}
}

// opWait implements 9B (WAIT). No coprocessor TEST input is modelled: WAIT
// spends a fixed number of ticks, checks for interrupts once, and
// completes; it does not loop.
func (c *Cpu) opWait() {
	if !c.repeating {
		c.wait(2, false)
	}
	c.wait(5, false)
	c.wait(7, false)
	c.checkInterrupts()
}

// opHlt implements F4 (HLT): the non-hack path busy-waits checking
// interrupts every pass rather than yielding the host thread. A pass that
// finds no interrupt ends the step once the cycle budget is spent, and the
// HLT resumes on the next step.
func (c *Cpu) opHlt() {
	if c.repeating {
		c.wait(1, false)
		c.wait(1, false)
		c.wait(1, false)
		if c.irqPending() {
			c.repeating = false
			c.checkInterrupts()
			c.wait(7, false)
		} else {
			c.repeating = true
			c.completed = c.cycles <= 0
		}
	} else {
		c.wait(1, false)
		c.suspendPrefetch()
		c.wait(2, false)
		c.repeating = true
		c.completed = false
	}
}

// Flag-toggle opcodes F5, F8/F9, FA/FB, FC/FD.
func (c *Cpu) opCmc() {
	c.wait(1, false)
	c.setFlag(FlagC, !c.CF())
}

func (c *Cpu) opClcStc(opcode byte) {
	c.wait(1, false)
	c.setFlag(FlagC, opcode&1 != 0)
}

func (c *Cpu) opCliSti(opcode byte) {
	c.wait(1, false)
	c.setFlag(FlagI, opcode&1 != 0)
}

func (c *Cpu) opCldStd(opcode byte) {
	c.wait(1, false)
	c.setFlag(FlagD, opcode&1 != 0)
}

// opNop implements 90 as plain NOP (the 0x91-0x97 XCHG-AX forms are handled
// separately since opcode 0x90 specifically means XCHG AX,AX == NOP).
func (c *Cpu) opNop() {
	c.wait(1, false)
	c.wait(1, false)
}
