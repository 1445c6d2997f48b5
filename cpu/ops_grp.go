package cpu808x

// runGrp3 implements opcodes F6/F7: TEST/NOT/NEG/MUL/IMUL/DIV/IDIV, selected
// by the reg field of ModR/M (spec.md §4.4.2).
func (c *Cpu) runGrp3(opcode byte) {
	bits := 8
	if opcode&1 != 0 {
		bits = 16
	}
	c.doModRM()
	if bits == 16 {
		c.data = uint32(c.getRM16())
	} else {
		c.data = uint32(c.getRM8())
	}

	switch c.reg & 7 {
	case 0, 1: // TEST
		c.wait(2, false)
		if bits == 16 {
			c.src = uint32(c.fetchWord())
		} else {
			c.src = uint32(c.fetchByte())
		}
		c.wait(1, false)
		c.dest = c.data
		c.test(bits)
		if c.mod != 3 {
			c.wait(1, false)
		}
	case 2: // NOT
		c.wait(2, false)
		c.data = ^c.data & maskBits(bits)
		if c.mod != 3 {
			c.wait(2, false)
		}
		c.setEA(bits)
	case 3: // NEG
		c.wait(2, false)
		c.src = c.data
		c.dest = 0
		c.sub(bits)
		if c.mod != 3 {
			c.wait(2, false)
		}
		c.setEA(bits)
	case 4, 5: // MUL / IMUL
		c.wait(1, false)
		var acc uint32
		if bits == 16 {
			acc = uint32(c.AX)
		} else {
			acc = uint32(byte(c.AX))
		}
		c.dest = acc
		c.src = c.data
		c.mul(bits, c.reg&7 == 5)
		if bits == 16 {
			c.AX = uint16(c.data)
			c.DX = uint16(c.dest)
		} else {
			c.AX = c.AX&0xFF00 | uint16(byte(c.data))
			c.AX = c.AX&0x00FF | uint16(byte(c.dest))<<8
		}
	case 6, 7: // DIV / IDIV
		signed := c.reg&7 == 7
		var res divResult
		if bits == 16 {
			res = c.divide(16, uint32(c.AX), uint32(c.DX), c.data, signed)
			if !res.fault {
				c.AX = uint16(res.quotient)
				c.DX = uint16(res.remainder)
			}
		} else {
			res = c.divide(8, uint32(byte(c.AX)), uint32(byte(c.AX>>8)), c.data, signed)
			if !res.fault {
				c.AX = c.AX&0xFF00 | uint16(byte(res.quotient))
				c.AX = c.AX&0x00FF | uint16(byte(res.remainder))<<8
			}
		}
		// divide already vectors through INT 0 on fault and leaves AX/DX
		// untouched; nothing left to do here.
	}
}

// setEA writes cpu.data back to the r/m operand staged by doModRM, at the
// given width. Used by the Grp3/Grp4/5 handlers that read-modify-write.
func (c *Cpu) setEA(bits int) {
	if bits == 16 {
		c.setRM16(uint16(c.data))
	} else {
		c.setRM8(byte(c.data))
	}
}

// runGrp45 implements opcodes FE/FF: INC/DEC r/m, CALL/JMP r/m (near and
// far), PUSH r/m.
func (c *Cpu) runGrp45(opcode byte) {
	bits := 8
	if opcode&1 != 0 {
		bits = 16
	}
	c.doModRM()

	switch c.reg & 7 {
	case 0, 1: // INC/DEC rm
		if bits == 16 {
			c.dest = uint32(c.getRM16())
		} else {
			c.dest = uint32(c.getRM8())
		}
		c.src = 1
		savedCF := c.CF()
		if c.reg&7 == 0 {
			c.data = (c.dest + c.src) & maskBits(bits)
			c.setOFAdd(bits)
		} else {
			c.data = (c.dest - c.src) & maskBits(bits)
			c.setOFSub(bits)
		}
		c.doAF()
		c.setPZS(bits)
		c.setFlag(FlagC, savedCF)
		c.wait(2, false)
		c.setEA(bits)
	case 2: // CALL rm (near, indirect)
		target := c.getRM16()
		c.wait(2, false)
		c.suspendPrefetch()
		c.wait(4, false)
		c.flushQueue()
		c.push(c.PC)
		c.PC = target
	case 3: // CALL rmd (far, indirect)
		target := c.ReadWord(c.eaSeg, c.eaAddr)
		newCS := c.ReadWord(c.eaSeg, c.eaAddr+2)
		c.wait(1, false)
		c.suspendPrefetch()
		c.wait(3, false)
		c.push(c.CS.Selector)
		c.CS.Load(newCS)
		c.wait(3, false)
		c.flushQueue()
		c.wait(3, false)
		c.push(c.PC)
		c.PC = target
	case 4: // JMP rm (near, indirect)
		target := c.getRM16()
		c.suspendPrefetch()
		c.wait(4, false)
		c.flushQueue()
		c.PC = target
	case 5: // JMP rmd (far, indirect)
		target := c.ReadWord(c.eaSeg, c.eaAddr)
		newCS := c.ReadWord(c.eaSeg, c.eaAddr+2)
		c.suspendPrefetch()
		c.wait(4, false)
		c.flushQueue()
		c.CS.Load(newCS)
		c.PC = target
	case 6, 7: // PUSH rm
		var v uint16
		if bits == 16 {
			v = c.getRM16()
		} else {
			v = uint16(c.getRM8())
		}
		if c.mod != 3 {
			c.wait(1, false)
		}
		c.wait(4, false)
		c.push(v)
	}
}
