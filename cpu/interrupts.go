package cpu808x

// push writes v to SS:[SP-2] and decrements SP by 2, reproducing the
// documented 80186 boundary case at SP==1 (spec.md §8): the write still
// lands at SS:[0xFFFF] and SS:[0x0000] and SP wraps to 0xFFFF, because SP
// is decremented modulo 0x10000 before the write address is formed, exactly
// as the original's push() does for non-NEC 80186 cores and later.
func (c *Cpu) push(v uint16) {
	c.SP -= 2
	c.WriteWord(&c.SS, c.SP, v)
}

func (c *Cpu) pop() uint16 {
	v := c.ReadWord(&c.SS, c.SP)
	c.SP += 2
	return v
}

// nearcall pushes the return IP and jumps to target within the same CS.
func (c *Cpu) nearcall(target uint16) {
	c.push(c.PC)
	c.jump(target)
}

// farcall2 implements the INTR-microcode FARCALL2 step (spec.md §4.4.3):
// push CS, load new CS, then near-call push-IP to the new offset.
func (c *Cpu) farcall2(newCS, newIP uint16) {
	c.push(c.CS.Selector)
	c.CS.Load(newCS)
	c.nearcall(newIP)
}

// jump sets PC and flushes the prefetch queue, per spec.md §4.4.5.
func (c *Cpu) jump(target uint16) {
	c.PC = target
	c.suspendPrefetch()
	c.flushQueue()
}

// intrRoutine is the INTR microcode (spec.md §4.4.3): read the new IP/CS
// from the IVT via the BIU, suspend prefetch, push FLAGS, clear T and I,
// and FARCALL2 into the handler.
func (c *Cpu) intrRoutine(vector uint16, fromSoftware bool) {
	var ivt Segment // selector 0: the IVT starts at linear address 0
	vecAddr := vector * 4
	newIP := c.ReadWord(&ivt, vecAddr)
	newCS := c.ReadWord(&ivt, vecAddr+2)

	c.suspendPrefetch()
	c.push(c.Flags)
	c.setFlag(FlagT, false)
	c.setFlag(FlagI, false)
	c.farcall2(newCS, newIP)
}

// swInt dispatches a software INT n instruction.
func (c *Cpu) swInt(vector byte) {
	c.intrRoutine(uint16(vector), true)
}

// int3 dispatches the one-byte breakpoint interrupt (opcode 0xCC).
func (c *Cpu) int3() {
	c.intrRoutine(3, true)
}

// checkInterrupts runs the priority-ordered per-instruction completion
// check of spec.md §4.4.3: trap flag, then NMI, then maskable IRQ.
func (c *Cpu) checkInterrupts() {
	if c.noInt {
		return
	}

	if c.TF() {
		c.intrRoutine(1, false)
		return
	}

	if c.nmiLine && c.nmiEnable && c.nmiMask {
		c.nmiEnable = false
		vector := uint16(2)
		if c.UseCustomNMIVector {
			vector = uint16(c.CustomNMIVector)
		}
		c.intrRoutine(vector, false)
		c.nmiLine = false
		return
	}

	if c.IF() && c.bus != nil && c.bus.IntPending() {
		c.wait(4, false)
		c.PICAcknowledge() // first ack: no data returned on real silicon
		vector := uint16(c.PICAcknowledge())
		c.intrRoutine(vector, false)
	}
}

// repPrefixLen is the byte length of the REP/segment-override prefix chain
// preceding the current string opcode, used by repInterrupt's IP rewind
// (spec.md §4.4.4): 2 bytes normally, 3 when a NEC core also has a segment
// override active.
func (c *Cpu) repPrefixLen() uint16 {
	if c.IsNEC && c.ovrSeg != nil {
		return 3
	}
	return 2
}

// repInterrupt rewinds PC by the prefix length, ends the REP, and lets the
// next instruction-boundary check service the pending interrupt.
func (c *Cpu) repInterrupt() {
	c.suspendPrefetch()
	c.wait(4, false)
	c.flushQueue()
	c.PC -= c.repPrefixLen()
	c.repEnd()
}
