package cpu808x

// runALUGroup implements the operand forms (r/m,reg; reg,r/m; accumulator,
// immediate; each in byte and word width) shared by the eight
// 00-3F ALU opcode groups (ADD/OR/ADC/SBB/AND/SUB/XOR/CMP), selected by
// cpu.aluOp (spec.md §4.4.2).

// runALUGroup decodes one of the 00-3F opcodes: bits 3-5 select the ALU
// operation, bits 0-2 select the addressing form.
func (c *Cpu) runALUGroup(opcode byte) {
	c.aluOp = (opcode >> 3) & 7
	form := opcode & 7
	bits := 8
	if form&1 != 0 {
		bits = 16
	}

	switch form {
	case 0, 1: // Eb,Gb / Ev,Gv : r/m <- r/m op reg
		c.doModRM()
		c.wait(2, false)
		if bits == 16 {
			c.dest = uint32(c.getRM16())
			c.src = uint32(c.getReg16(c.reg))
		} else {
			c.dest = uint32(c.getRM8())
			c.src = uint32(c.getReg8(c.reg))
		}
		c.aluOpApply(bits)
		if c.aluOp != aluCmp {
			if bits == 16 {
				c.setRM16(uint16(c.data))
			} else {
				c.setRM8(byte(c.data))
			}
		}
	case 2, 3: // Gb,Eb / Gv,Ev : reg <- reg op r/m
		c.doModRM()
		c.wait(2, false)
		if bits == 16 {
			c.src = uint32(c.getRM16())
			c.dest = uint32(c.getReg16(c.reg))
		} else {
			c.src = uint32(c.getRM8())
			c.dest = uint32(c.getReg8(c.reg))
		}
		c.aluOpApply(bits)
		if c.aluOp != aluCmp {
			if bits == 16 {
				c.setReg16(c.reg, uint16(c.data))
			} else {
				c.setReg8(c.reg, byte(c.data))
			}
		}
	case 4, 5: // AL/AX, imm
		c.wait(1, false)
		if bits == 16 {
			c.src = uint32(c.fetchWord())
			c.dest = uint32(c.AX)
		} else {
			c.src = uint32(c.fetchByte())
			c.dest = uint32(byte(c.AX))
		}
		c.wait(2, false)
		c.aluOpApply(bits)
		if c.aluOp != aluCmp {
			if bits == 16 {
				c.AX = uint16(c.data)
			} else {
				c.AX = c.AX&0xFF00 | uint16(byte(c.data))
			}
		}
	}
}

// runGrp1 decodes opcodes 80/81/82/83 (ALU r/m, imm): the reg field of
// ModR/M selects the ALU op rather than a register.
func (c *Cpu) runGrp1(opcode byte) {
	c.doModRM()
	c.aluOp = c.reg
	bits := 8
	if opcode&1 != 0 {
		bits = 16
	}
	signExtend := opcode == 0x83

	var imm uint32
	if bits == 16 {
		c.dest = uint32(c.getRM16())
	} else {
		c.dest = uint32(c.getRM8())
	}
	c.wait(2, false)
	if signExtend {
		imm = uint32(uint16(int16(int8(c.fetchByte()))))
	} else if bits == 16 {
		imm = uint32(c.fetchWord())
	} else {
		imm = uint32(c.fetchByte())
	}
	c.src = imm
	c.aluOpApply(bits)
	if c.aluOp != aluCmp {
		if bits == 16 {
			c.setRM16(uint16(c.data))
		} else {
			c.setRM8(byte(c.data))
		}
	}
}

// runTestAXImm implements opcodes A8/A9 (TEST AL/AX, imm).
func (c *Cpu) runTestAXImm(opcode byte) {
	bits := 8
	if opcode&1 != 0 {
		bits = 16
	}
	c.wait(1, false)
	if bits == 16 {
		c.src = uint32(c.fetchWord())
		c.dest = uint32(c.AX)
	} else {
		c.src = uint32(c.fetchByte())
		c.dest = uint32(byte(c.AX))
	}
	c.test(bits)
	c.wait(1, false)
}

// runIncDecReg implements opcodes 40-4F (INC/DEC rw).
func (c *Cpu) runIncDecReg(opcode byte) {
	c.wait(1, false)
	r := opcode & 7
	c.dest = uint32(c.getReg16(r))
	savedCF := c.CF()
	if opcode < 0x48 {
		c.src = 1
		c.add(16)
	} else {
		c.src = 1
		c.sub(16)
	}
	c.setFlag(FlagC, savedCF) // INC/DEC never touch carry
	c.setReg16(r, uint16(c.data))
}
