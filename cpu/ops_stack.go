package cpu808x

// opPushReg/opPopReg implement opcodes 50-57/58-5F (PUSH/POP reg16).
func (c *Cpu) opPushReg(opcode byte) {
	c.wait(1, false)
	c.push(c.getReg16(opcode & 7))
}

func (c *Cpu) opPopReg(opcode byte) {
	c.wait(1, false)
	c.setReg16(opcode&7, c.pop())
}

// opPushSeg/opPopSeg implement 06/0E/16/1E (PUSH seg) and 07/17/1F (POP
// seg); 0F as POP CS is the 8086-legacy path, handled by the dispatcher.
func (c *Cpu) opPushSeg(seg *Segment) {
	c.wait(1, false)
	c.push(seg.Selector)
}

func (c *Cpu) opPopSeg(seg *Segment) {
	v := c.pop()
	seg.Load(v)
	if seg == &c.SS {
		c.noInt = true
	}
}

// opPushf/opPopf implement 9C/9D, masking per variant (spec.md §8).
func (c *Cpu) opPushf() {
	c.wait(1, false)
	c.push(c.Flags | 0x0002)
}

func (c *Cpu) opPopf() {
	v := c.pop()
	mask := c.pushfMask()
	c.Flags = (v & mask) | 0x0002
	c.noInt = true
}

// opPushImm16/opPushImm8 implement the 80186 PUSH imm opcodes 68/6A.
func (c *Cpu) opPushImm16() {
	v := c.fetchWord()
	c.wait(1, false)
	c.push(v)
}

func (c *Cpu) opPushImm8() {
	v := uint16(int16(int8(c.fetchByte())))
	c.wait(1, false)
	c.push(v)
}

// opPusha/opPopa implement the 80186 PUSHA/POPA opcodes 60/61.
func (c *Cpu) opPusha() {
	oldSP := c.SP
	c.wait(1, false)
	c.push(c.AX)
	c.push(c.CX)
	c.push(c.DX)
	c.push(c.BX)
	c.push(oldSP)
	c.push(c.BP)
	c.push(c.SI)
	c.push(c.DI)
}

func (c *Cpu) opPopa() {
	c.DI = c.pop()
	c.SI = c.pop()
	c.BP = c.pop()
	c.pop() // discard saved SP
	c.BX = c.pop()
	c.DX = c.pop()
	c.CX = c.pop()
	c.AX = c.pop()
}

// opEnter/opLeave implement the 80186 ENTER/LEAVE opcodes C8/C9.
func (c *Cpu) opEnter() {
	size := c.fetchWord()
	level := c.fetchByte() & 0x1f
	c.wait(3, false)
	c.push(c.BP)
	frameTemp := c.SP
	if level > 0 {
		bp := c.BP
		for i := byte(1); i < level; i++ {
			bp -= 2
			c.push(c.ReadWord(&c.SS, bp))
		}
		c.push(frameTemp)
	}
	c.BP = frameTemp
	c.SP = c.BP - size
}

func (c *Cpu) opLeave() {
	c.SP = c.BP
	c.BP = c.pop()
}
