package cpu808x

// DAA, DAS, AAA and AAS reproduce documented BCD adjustment results and the
// undefined overflow/sign-flag behavior measured on real 8088 silicon
// (credited in the source to research by dbalsom on GitHub). These tables
// are preserved literally, per spec.md §9: they are ground truth, not
// formulas to re-derive.

func (c *Cpu) setCA() {
	c.setFlag(FlagC, true)
	c.setFlag(FlagA, true)
}

func (c *Cpu) clearCA() {
	c.setFlag(FlagC, false)
	c.setFlag(FlagA, false)
}

// aa is the shared AAA/AAS tail: mask AL to its low nibble and spend the
// fixed 6-tick microcode cost.
func (c *Cpu) aa() {
	al := byte(c.data & 0x0f)
	c.AX = c.AX&0xFF00 | uint16(al)
	c.wait(6, false)
}

func (c *Cpu) daa() {
	al := byte(c.AX)
	c.dest = uint32(al)
	c.setFlag(FlagV, false)
	oldAF := c.AF()
	oldCF := c.CF()

	if oldCF {
		if al >= 0x1a && al <= 0x7f {
			c.setFlag(FlagV, true)
		}
	} else if al >= 0x7a && al <= 0x7f {
		c.setFlag(FlagV, true)
	}

	if oldAF || (al&0x0f) > 9 {
		c.src = 6
		c.data = c.dest + c.src
		c.dest = c.data
		c.setFlag(FlagA, true)
	}

	limit := byte(0x99)
	if oldAF {
		limit = 0x9f
	}
	if oldCF || al > limit {
		c.src = 0x60
		c.data = c.dest + c.src
		c.dest = c.data
		c.setFlag(FlagC, true)
	}

	al = byte(c.dest)
	c.AX = c.AX&0xFF00 | uint16(al)
	c.setPZS(8)
	c.wait(3, false)
}

func (c *Cpu) das() {
	al := byte(c.AX)
	c.dest = uint32(al)
	c.setFlag(FlagV, false)
	oldAF := c.AF()
	oldCF := c.CF()

	if !oldAF {
		if !oldCF {
			if al >= 0x9a && al <= 0xdf {
				c.setFlag(FlagV, true)
			}
		} else if al >= 0x80 && al <= 0xdf {
			c.setFlag(FlagV, true)
		}
	} else {
		if !oldCF {
			if (al >= 0x80 && al <= 0x85) || (al >= 0xa0 && al <= 0xe5) {
				c.setFlag(FlagV, true)
			}
		} else if al >= 0x80 && al <= 0xe5 {
			c.setFlag(FlagV, true)
		}
	}

	if oldAF || (al&0xf) > 9 {
		c.src = 6
		c.data = c.dest - c.src
		c.dest = c.data
		c.setFlag(FlagA, true)
	}

	limit := byte(0x99)
	if oldAF {
		limit = 0x9f
	}
	if c.CF() || al > limit {
		c.src = 0x60
		c.data = c.dest - c.src
		c.dest = c.data
		c.setFlag(FlagC, true)
	} else {
		c.setFlag(FlagC, false)
	}

	al = byte(c.dest)
	c.AX = c.AX&0xFF00 | uint16(al)
	c.setPZS(8)
	c.wait(3, false)
}

func (c *Cpu) aaa() {
	c.wait(1, false)
	al := byte(c.AX)
	oldAL := al
	var newAL byte
	if c.AF() || (al&0xf) > 9 {
		c.src = 6
		newAL = al + 6
		c.AX += 0x100 // ++AH
		c.setCA()
	} else {
		c.src = 0
		newAL = al
		c.clearCA()
		c.wait(1, false)
	}
	c.dest = uint32(al)
	c.data = c.dest + c.src
	c.setPZS(8)
	c.setFlag(FlagV, false)
	c.setFlag(FlagZ, false)
	c.setFlag(FlagS, false)
	if newAL == 0 {
		c.setFlag(FlagZ, true)
	}
	if oldAL >= 0x7a && oldAL <= 0x7f {
		c.setFlag(FlagV, true)
	}
	if oldAL <= 0x7a && oldAL <= 0xf9 {
		c.setFlag(FlagS, true)
	}
	c.aa()
}

func (c *Cpu) aas() {
	oldAF := c.AF()
	al := byte(c.AX)
	oldAL := al
	c.wait(1, false)
	if c.AF() || (al&0xf) > 9 {
		c.src = 6
		c.AX -= 0x100 // --AH
		c.setCA()
	} else {
		c.src = 0
		c.clearCA()
		c.wait(1, false)
	}
	c.dest = uint32(al)
	c.data = c.dest - c.src
	newAL := byte(c.data)
	c.AX = c.AX&0xFF00 | uint16(newAL)
	c.setPZS(8)
	c.setFlag(FlagV, false)
	c.setFlag(FlagS, false)
	if oldAF && oldAL >= 0x80 && oldAL <= 0x85 {
		c.setFlag(FlagV, true)
	}
	if !oldAF && oldAL >= 0x80 {
		c.setFlag(FlagS, true)
	}
	if oldAF && (oldAL <= 0x05 || oldAL >= 0x86) {
		c.setFlag(FlagS, true)
	}
	c.aa()
}
