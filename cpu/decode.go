package cpu808x

// eaTableEntry describes one of the eight mod!=3 r/m forms: which base
// registers (if any) combine into the effective address, and which segment
// is the default (SS for the two BP-based forms, DS otherwise).
type eaTableEntry struct {
	useBP, useBX bool
	useSI, useDI bool
	defaultSS    bool
}

var eaTable = [8]eaTableEntry{
	0: {useBX: true, useSI: true},
	1: {useBX: true, useDI: true},
	2: {useBP: true, useSI: true, defaultSS: true},
	3: {useBP: true, useDI: true, defaultSS: true},
	4: {useSI: true},
	5: {useDI: true},
	6: {useBP: true, defaultSS: true}, // mod!=0: BP alone; mod==0: disp16 only
	7: {useBX: true},
}

// doModRM reads the ModR/M byte and, when mod != 3, computes eaAddr/eaSeg
// per the standard addressing table, charging the fixed EA cycle cost of
// spec.md §4.4.1.
func (c *Cpu) doModRM() {
	c.rmdat = c.fetchByte()
	c.mod = c.rmdat >> 6
	c.reg = (c.rmdat >> 3) & 7
	c.rm = c.rmdat & 7

	if c.mod == 3 {
		return
	}

	entry := eaTable[c.rm]
	var addr uint16
	cost := 0

	switch {
	case c.rm == 6 && c.mod == 0:
		addr = c.fetchWord()
		cost = 6
	default:
		if entry.useBX {
			addr += c.BX
		}
		if entry.useBP {
			addr += c.BP
		}
		if entry.useSI {
			addr += c.SI
		}
		if entry.useDI {
			addr += c.DI
		}
		cost = entry.baseCost()
	}

	switch c.mod {
	case 1:
		disp := int8(c.fetchByte())
		addr += uint16(int16(disp))
		cost += 4
	case 2:
		disp := c.fetchWord()
		addr += disp
		cost += 4
	}

	c.eaAddr = addr
	if c.ovrSeg != nil {
		c.eaSeg = c.ovrSeg
	} else if entry.defaultSS && !(c.rm == 6 && c.mod == 0) {
		c.eaSeg = &c.SS
	} else {
		c.eaSeg = &c.DS
	}

	c.wait(cost, false)
}

// baseCost is the fixed EA cycle charge for the addressing form before any
// displacement is added (spec.md §4.4.1: 2/3/4 ticks depending on form).
func (e eaTableEntry) baseCost() int {
	switch {
	case e.useBX && e.useSI, e.useBP && e.useDI:
		return 7
	case e.useBX && e.useDI, e.useBP && e.useSI:
		return 8
	case e.useSI, e.useDI:
		return 5
	case e.useBP, e.useBX:
		return 5
	default:
		return 0
	}
}

// segOverride installs seg as the active override for the current
// instruction, cleared automatically at the next instruction boundary.
func (c *Cpu) segOverride(seg *Segment) {
	c.ovrSeg = seg
}
