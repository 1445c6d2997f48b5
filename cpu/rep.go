package cpu808x

// String-primitive helpers, ported from the original's lods/lods_di/stos/
// ins/outs. stringIncrement advances SI or DI by the operand width,
// honoring the direction flag, with 16-bit wraparound.

func (c *Cpu) stringIncrement(addr uint16, bits int) uint16 {
	d := uint16(bits >> 3)
	if c.DF() {
		addr -= d
	} else {
		addr += d
	}
	return addr
}

func (c *Cpu) segOrDefault(def *Segment) *Segment {
	if c.ovrSeg != nil {
		return c.ovrSeg
	}
	return def
}

func (c *Cpu) lods(bits int) uint32 {
	var v uint32
	if bits == 16 {
		v = uint32(c.ReadWord(c.segOrDefault(&c.DS), c.SI))
	} else {
		v = uint32(c.ReadByte(c.segOrDefault(&c.DS), c.SI))
	}
	c.SI = c.stringIncrement(c.SI, bits)
	return v
}

func (c *Cpu) lodsDI(bits int) uint32 {
	var v uint32
	if bits == 16 {
		v = uint32(c.ReadWord(&c.ES, c.DI))
	} else {
		v = uint32(c.ReadByte(&c.ES, c.DI))
	}
	c.DI = c.stringIncrement(c.DI, bits)
	return v
}

func (c *Cpu) stos(bits int, v uint32) {
	if bits == 16 {
		c.WriteWord(&c.ES, c.DI, uint16(v))
	} else {
		c.WriteByte(&c.ES, c.DI, byte(v))
	}
	c.DI = c.stringIncrement(c.DI, bits)
}

func (c *Cpu) ins(bits int) {
	var v uint32
	if bits == 16 {
		v = uint32(c.InWord(c.DX))
	} else {
		v = uint32(c.InByte(c.DX))
	}
	c.stos(bits, v)
}

func (c *Cpu) outs(bits int) {
	v := c.lods(bits)
	if bits == 16 {
		c.OutWord(c.DX, uint16(v))
	} else {
		c.OutByte(c.DX, byte(v))
	}
}

// repStart implements spec.md §4.4.4's rep_start(): on fresh entry into a
// REP-prefixed string op, CX==0 terminates immediately; otherwise the
// iteration proceeds. Returns false when the instruction should be skipped
// entirely (CX was already 0 on entry).
func (c *Cpu) repStart() bool {
	if !c.repeating {
		c.wait(2, false)
		if c.inRep != repNone {
			if c.CX == 0 {
				c.wait(4, false)
				c.repEnd()
				return false
			}
			c.wait(7, false)
		}
	}
	c.completed = true
	return true
}

func (c *Cpu) repEnd() {
	c.repeating = false
	c.inRep = repNone
	c.completed = true
}

// irqPending is the fast poll rep iterations use to decide whether to
// preempt via repInterrupt; it does not itself service the interrupt.
func (c *Cpu) irqPending() bool {
	if c.TF() {
		return true
	}
	if c.nmiLine && c.nmiEnable && c.nmiMask {
		return true
	}
	return c.IF() && c.bus != nil && c.bus.IntPending()
}

// opMovs implements REP-aware MOVS (opcodes A4/A5).
func (c *Cpu) opMovs(bits int) {
	if !c.repStart() {
		return
	}
	v := c.lods(bits)
	c.wait(1, false)
	c.stos(bits, v)
	c.wait(1, false)

	if c.inRep != repNone {
		c.completed = false
		c.repeating = true
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
	} else {
		c.wait(1, false)
	}
}

// opCmpsScas implements REP-aware CMPS/SCAS (opcodes A6/A7, AE/AF). scas is
// true for the AE/AF (no-LODS, compare against AX) encodings.
func (c *Cpu) opCmpsScas(bits int, scas bool) {
	if !c.repStart() {
		return
	}
	var a uint32
	if !scas {
		c.wait(1, false)
		a = c.lods(bits)
	} else {
		a = uint32(c.AX)
		if bits == 8 {
			a = uint32(byte(c.AX))
		}
	}
	c.wait(2, false)
	b := c.lodsDI(bits)
	c.src = b
	c.dest = a
	c.wait(3, false)
	c.sub(bits)

	if c.inRep != repNone {
		c.completed = false
		c.repeating = true
		c.wait(1, false)
		c.CX--

		terminate := false
		flagSet := c.CF()
		if !c.repCFlag {
			flagSet = c.ZF()
		}
		wantSet := c.inRep == repNE
		if flagSet == wantSet {
			c.repEnd()
			c.wait(1, false)
			terminate = true
		}

		if !terminate {
			c.wait(1, false)
			if c.irqPending() {
				c.wait(1, false)
				c.repInterrupt()
			}
			c.wait(1, false)
			if c.CX == 0 {
				c.repEnd()
			} else {
				c.wait(1, false)
			}
		} else {
			c.wait(1, false)
		}
	}
}

// opStos implements REP-aware STOS (opcodes AA/AB).
func (c *Cpu) opStos(bits int) {
	if !c.repStart() {
		return
	}
	v := uint32(c.AX)
	if bits == 8 {
		v = uint32(byte(c.AX))
	}
	c.wait(1, false)
	c.stos(bits, v)
	if c.inRep != repNone {
		c.completed = false
		c.repeating = true
		c.wait(1, false)
		if c.irqPending() {
			c.wait(1, false)
			c.repInterrupt()
			return
		}
		c.wait(1, false)
		c.CX--
		if c.CX == 0 {
			c.repEnd()
		} else {
			c.wait(1, false)
		}
	} else {
		c.wait(1, false)
	}
}

// opLods implements REP-aware LODS (opcodes AC/AD).
func (c *Cpu) opLods(bits int) {
	if !c.repStart() {
		return
	}
	v := c.lods(bits)
	if bits == 16 {
		c.AX = uint16(v)
	} else {
		c.AX = c.AX&0xFF00 | uint16(byte(v))
	}
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
