package cpu808x

// runMovGroup implements the 88-8B MOV r/m,reg and MOV reg,r/m forms.
func (c *Cpu) runMovGroup(opcode byte) {
	c.doModRM()
	bits := 8
	if opcode&1 != 0 {
		bits = 16
	}
	toReg := opcode&2 != 0

	c.wait(2, false)
	if toReg {
		if bits == 16 {
			c.setReg16(c.reg, c.getRM16())
		} else {
			c.setReg8(c.reg, c.getRM8())
		}
	} else {
		if bits == 16 {
			c.setRM16(c.getReg16(c.reg))
		} else {
			c.setRM8(c.getReg8(c.reg))
		}
	}
}

// opMovSegRM implements 8C (MOV r/m,Sreg) and 8E (MOV Sreg,r/m).
func (c *Cpu) opMovSegRM(toSeg bool) {
	c.doModRM()
	c.wait(2, false)
	seg := c.segPtr(c.reg)
	if toSeg {
		seg.Load(c.getRM16())
		if seg == &c.SS {
			c.noInt = true
		}
	} else {
		c.setRM16(seg.Selector)
	}
}

// opMovRegImm implements B0-BF (MOV reg, imm).
func (c *Cpu) opMovRegImm(opcode byte) {
	c.wait(1, false)
	if opcode&0x08 != 0 {
		v := c.fetchWord()
		c.wait(1, false)
		c.setReg16(opcode&7, v)
	} else {
		v := c.fetchByte()
		c.wait(1, false)
		c.setReg8(opcode&7, v)
	}
}

// opMovRMImm implements C6/C7 (MOV r/m, imm).
func (c *Cpu) opMovRMImm(opcode byte) {
	c.doModRM()
	c.wait(2, false)
	if opcode&1 != 0 {
		v := c.fetchWord()
		c.setRM16(v)
	} else {
		v := c.fetchByte()
		c.setRM8(v)
	}
}

// opMovAccMem implements A0-A3 (MOV AL/AX, moffs / moffs, AL/AX).
func (c *Cpu) opMovAccMem(opcode byte) {
	ofs := c.fetchWord()
	seg := c.segOrDefault(&c.DS)
	wide := opcode&1 != 0
	toAcc := opcode&2 == 0
	c.wait(1, false)
	if toAcc {
		if wide {
			c.AX = c.ReadWord(seg, ofs)
		} else {
			c.AX = c.AX&0xFF00 | uint16(c.ReadByte(seg, ofs))
		}
	} else {
		if wide {
			c.WriteWord(seg, ofs, c.AX)
		} else {
			c.WriteByte(seg, ofs, byte(c.AX))
		}
	}
}

// opLea implements 8D (LEA reg, m).
func (c *Cpu) opLea() {
	c.doModRM()
	c.wait(2, false)
	c.setReg16(c.reg, c.eaAddr)
}

// opXchgRM implements 86/87 (XCHG r/m, reg).
func (c *Cpu) opXchgRM(opcode byte) {
	c.doModRM()
	c.wait(3, false)
	if opcode&1 != 0 {
		rm := c.getRM16()
		reg := c.getReg16(c.reg)
		c.setRM16(reg)
		c.setReg16(c.reg, rm)
	} else {
		rm := c.getRM8()
		reg := c.getReg8(c.reg)
		c.setRM8(reg)
		c.setReg8(c.reg, rm)
	}
}

// opXchgAX implements 91-97 (XCHG AX, reg).
func (c *Cpu) opXchgAX(opcode byte) {
	c.wait(3, false)
	r := opcode & 7
	tmp := c.AX
	c.AX = c.getReg16(r)
	c.setReg16(r, tmp)
}

// opLahf/opSahf implement 9F/9E.
func (c *Cpu) opLahf() {
	c.wait(2, false)
	c.AX = c.AX&0x00FF | uint16(byte(c.Flags))<<8
}

func (c *Cpu) opSahf() {
	c.wait(2, false)
	mask := uint16(FlagC | FlagP | FlagA | FlagZ | FlagS)
	c.Flags = (c.Flags &^ mask) | (uint16(byte(c.AX>>8)) & mask)
}

// opLdsLes implements C4/C5 (LDS/LES reg, m).
func (c *Cpu) opLdsLes(seg *Segment) {
	c.doModRM()
	c.wait(2, false)
	ofs := c.ReadWord(c.eaSeg, c.eaAddr)
	sel := c.ReadWord(c.eaSeg, c.eaAddr+2)
	c.setReg16(c.reg, ofs)
	seg.Load(sel)
}

// opXlat implements D7 (XLAT).
func (c *Cpu) opXlat() {
	seg := c.segOrDefault(&c.DS)
	addr := c.BX + uint16(byte(c.AX))
	c.wait(2, false)
	c.AX = c.AX&0xFF00 | uint16(c.ReadByte(seg, addr))
}
