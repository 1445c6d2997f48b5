package cpu808x

// jumpRel performs a relative jump of delta from the current PC, suspending
// and flushing the prefetch queue (spec.md §4.4.5).
func (c *Cpu) jumpRel(delta uint16) {
	c.wait(1, false)
	c.suspendPrefetch()
	c.wait(1, false)
	c.PC += delta
	c.flushQueue()
}

func (c *Cpu) jumpShort(disp byte) {
	c.jumpRel(uint16(int16(int8(disp))))
}

// jcc implements the conditional-jump family (opcodes 0x70-0x7F and their
// 0x60-0x6F undocumented aliases on non-186 cores).
func (c *Cpu) jcc(opcode byte, cond bool) {
	c.wait(1, false)
	disp := c.fetchByte()
	c.wait(1, false)
	taken := cond
	if opcode&1 != 0 {
		taken = !cond
	}
	if taken {
		c.jumpShort(disp)
	}
}

// condFor evaluates the condition tested by a Jcc opcode's low nibble
// (0x0-0xF pattern shared between the 0x70s and 0x60 aliases).
func (c *Cpu) condFor(nibble byte) bool {
	switch nibble & 0xE {
	case 0x0:
		return c.OF()
	case 0x2:
		return c.CF()
	case 0x4:
		return c.ZF()
	case 0x6:
		return c.CF() || c.ZF()
	case 0x8:
		return c.SF()
	case 0xA:
		return c.PF()
	case 0xC:
		return c.SF() != c.OF()
	default: // 0xE
		return c.ZF() || (c.SF() != c.OF())
	}
}

// opLoop implements opcodes E0-E3 (LOOPNE/LOOPE/LOOP/JCXZ).
func (c *Cpu) opLoop(opcode byte) {
	c.wait(3, false)
	disp := c.fetchByte()
	if opcode != 0xE2 {
		c.wait(1, false)
	}
	var take bool
	if opcode != 0xE3 {
		c.CX--
		take = c.CX != 0
		switch opcode {
		case 0xE0: // LOOPNE/LOOPNZ
			if c.ZF() {
				take = false
			}
		case 0xE1: // LOOPE/LOOPZ
			if !c.ZF() {
				take = false
			}
		}
	} else { // JCXZ
		take = c.CX == 0
	}
	if take {
		c.jumpShort(disp)
	}
}

// opCallNear implements E8 (CALL rel16).
func (c *Cpu) opCallNear() {
	c.wait(1, false)
	disp := c.fetchWord()
	oldPC := c.jumpNear(disp)
	c.wait(2, false)
	c.push(oldPC)
}

// jumpNear advances PC by delta (post-fetch relative displacement) and
// returns the pre-jump PC, suspending/flushing prefetch as jump() does.
func (c *Cpu) jumpNear(delta uint16) uint16 {
	c.wait(1, false)
	c.suspendPrefetch()
	c.wait(1, false)
	old := c.PC
	c.PC += delta
	c.flushQueue()
	return old
}

// opJmpNear implements E9 (JMP rel16).
func (c *Cpu) opJmpNear() {
	c.wait(1, false)
	disp := c.fetchWord()
	c.jumpNear(disp)
}

// opJmpFar implements EA (JMP ptr16:16).
func (c *Cpu) opJmpFar() {
	c.wait(1, false)
	newIP := c.fetchWord()
	newCS := c.fetchWord()
	c.CS.Load(newCS)
	c.suspendPrefetch()
	c.PC = newIP
	c.wait(2, false)
	c.flushQueue()
	c.wait(1, false)
}

// opJmpShort implements EB (JMP rel8).
func (c *Cpu) opJmpShort() {
	c.wait(1, false)
	disp := c.fetchByte()
	c.jumpShort(disp)
	c.wait(1, false)
}

// opCallFar implements 9A (CALL ptr16:16).
func (c *Cpu) opCallFar() {
	c.wait(1, false)
	newIP := c.fetchWord()
	newCS := c.fetchWord()
	c.suspendPrefetch()
	c.wait(1, false)
	c.push(c.CS.Selector)
	c.CS.Load(newCS)
	c.wait(2, false)
	c.flushQueue()
	c.wait(1, false)
	c.push(c.PC)
	c.PC = newIP
}

// farret implements the RETF/IRET tail (pop IP, optionally pop CS).
func (c *Cpu) farret(far bool) {
	c.wait(1, false)
	newIP := c.pop()
	c.suspendPrefetch()
	c.wait(2, false)

	var newCS uint16
	if far {
		c.wait(1, false)
		newCS = c.pop()
		c.flushQueue()
		c.wait(2, false)
	} else {
		c.flushQueue()
		c.wait(2, false)
	}

	c.wait(2, false)
	if far {
		c.CS.Load(newCS)
	}
	c.PC = newIP
}

// opRetNear implements C2/C3 (RETN imm16 / RETN).
func (c *Cpu) opRetNear(opcode byte) {
	if opcode == 0xC2 {
		c.wait(1, false)
		imm := c.fetchWord()
		c.wait(1, false)
		newIP := c.pop()
		c.suspendPrefetch()
		c.wait(2, false)
		c.flushQueue()
		c.wait(3, false)
		c.SP += imm
		c.PC = newIP
	} else {
		c.wait(1, false)
		_ = c.fetchWord()
		newIP := c.pop()
		c.suspendPrefetch()
		c.wait(1, false)
		c.flushQueue()
		c.wait(2, false)
		c.PC = newIP
	}
}

// opRetFar implements CA/CB (RETF imm16 / RETF).
func (c *Cpu) opRetFar(opcode byte) {
	if opcode == 0xCA {
		c.wait(1, false)
		imm := c.fetchWord()
		c.farret(true)
		c.SP += imm
		c.wait(1, false)
	} else {
		c.wait(1, false)
		c.wait(1, false)
		c.farret(true)
	}
}

// opInt3/opIntImm/opInto implement CC/CD/CE.
func (c *Cpu) opInt3() {
	c.wait(1, false)
	c.wait(4, false)
	c.int3()
}

func (c *Cpu) opIntImm() {
	c.wait(1, false)
	vec := c.fetchByte()
	c.wait(1, false)
	c.swInt(vec)
}

func (c *Cpu) opInto() {
	c.wait(1, false)
	if c.OF() {
		c.swInt(4)
	}
}

// opIret implements CF (IRET).
func (c *Cpu) opIret() {
	c.wait(1, false)
	c.wait(1, false)
	c.farret(true)
	if c.IsNEC {
		c.Flags = c.pop() | 0x8002
	} else {
		c.Flags = c.pop() | 0x0002
	}
	c.wait(1, false)
	c.noInt = true
	c.nmiEnable = true
}

// opIn/opOut implement E4-E7 (fixed-port) and EC-EF (DX-port) forms.
func (c *Cpu) opInFixed(opcode byte) {
	bits := 8
	if opcode&1 != 0 {
		bits = 16
	}
	c.wait(1, false)
	port := uint16(c.fetchByte())
	c.wait(1, false)
	if bits == 16 {
		c.AX = c.InWord(port)
	} else {
		c.AX = c.AX&0xFF00 | uint16(c.InByte(port))
	}
}

func (c *Cpu) opOutFixed(opcode byte) {
	bits := 8
	if opcode&1 != 0 {
		bits = 16
	}
	c.wait(1, false)
	port := uint16(c.fetchByte())
	c.wait(2, false)
	if bits == 16 {
		c.OutWord(port, c.AX)
	} else {
		c.OutByte(port, byte(c.AX))
	}
}

func (c *Cpu) opInDX(opcode byte) {
	bits := 8
	if opcode&1 != 0 {
		bits = 16
	}
	c.wait(1, false)
	if bits == 16 {
		c.AX = c.InWord(c.DX)
	} else {
		c.AX = c.AX&0xFF00 | uint16(c.InByte(c.DX))
	}
}

func (c *Cpu) opOutDX(opcode byte) {
	bits := 8
	if opcode&1 != 0 {
		bits = 16
	}
	c.wait(2, false)
	if bits == 16 {
		c.OutWord(c.DX, c.AX)
	} else {
		c.OutByte(c.DX, byte(c.AX))
	}
	c.wait(1, false)
}

// opAam/opAad implement D4/D5 (ASCII adjust after multiply/before divide).
func (c *Cpu) opAam() {
	c.wait(1, false)
	base := c.fetchByte()
	if base == 0 {
		c.swInt(0)
		return
	}
	al := byte(c.AX)
	c.AX = (uint16(al/base) << 8) | uint16(al%base)
	c.dest = uint32(byte(c.AX))
	c.setPZS(16)
}

func (c *Cpu) opAad() {
	c.wait(1, false)
	base := c.fetchByte()
	al := byte(c.AX)
	ah := byte(c.AX >> 8)
	result := uint16(ah)*uint16(base) + uint16(al)
	c.AX = result & 0x00FF
	c.dest = uint32(byte(result))
	c.src = 0
	c.setPZS(8)
}

// opSalc implements D6 (SALC, undocumented set-AL-from-carry).
func (c *Cpu) opSalc() {
	c.wait(1, false)
	if c.CF() {
		c.AX = c.AX&0xFF00 | 0x00FF
	} else {
		c.AX = c.AX &^ 0x00FF
	}
}
