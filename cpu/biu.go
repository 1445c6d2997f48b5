package cpu808x

// Bus request flags, the bitset named bus_request_type in spec.md §3.
const (
	reqOut  = 1 << iota // write, not read
	reqHigh             // this is the high byte of a split word access
	reqWide             // single 16-bit aligned access on 8086
	reqCode             // code fetch (vs. operand access)
	reqIO               // IO space (vs. memory)
	reqMem              // memory space
	reqPic              // PIC interrupt-acknowledge cycle
)

// pendingAccess is the EU's in-flight non-code bus request, staged for the
// BCSM to carry out at the right phase.
type pendingAccess struct {
	flags   int
	addr    uint32 // memory: linear address. IO: port number.
	wdata   uint16 // write data
	rdata   uint16 // read result, valid after T3
	picByte byte
}

// biuTick advances the BCSM by one phase and performs the side effect that
// belongs to that phase (spec.md §4.1). busActive tells it whether the EU
// currently has a non-code access pending; pending carries that access.
func (c *Cpu) biuTick(busActive bool, pending *pendingAccess) {
	switch c.phase {
	case phaseT1:
		c.accessCode = !busActive && c.scheduleFetch
	case phaseT2:
		c.scheduleFetch = c.prefetching && !c.pfq.full()
		if !c.pfq.full() && c.Is8086 {
			// On 8086 one free slot does not qualify for a (2-byte) fetch.
			if c.pfq.freeSlots() < 2 && c.pfq.ip%2 == 0 {
				c.scheduleFetch = false
			}
		}
		if busActive && pending.flags&reqOut != 0 {
			c.runBusStore(pending)
		}
	case phaseT3:
		if busActive {
			if pending.flags&reqOut == 0 {
				c.runBusLoad(pending)
			}
		} else if c.accessCode {
			c.runCodeFetch()
		}
	case phaseT4:
		// no external effect
	}
	c.phase = (c.phase + 1) % 4
}

func (c *Cpu) runBusStore(p *pendingAccess) {
	switch {
	case p.flags&reqIO != 0:
		if p.flags&reqHigh != 0 || p.flags&reqWide != 0 {
			c.bus.OutWord(uint16(p.addr), p.wdata)
		} else {
			c.bus.OutByte(uint16(p.addr), byte(p.wdata))
		}
	case p.flags&reqMem != 0:
		if p.flags&reqWide != 0 {
			c.bus.WriteMemWord(p.addr, p.wdata)
		} else {
			c.bus.WriteMemByte(p.addr, byte(p.wdata))
		}
	}
}

func (c *Cpu) runBusLoad(p *pendingAccess) {
	switch {
	case p.flags&reqIO != 0:
		if p.flags&reqWide != 0 {
			p.rdata = c.bus.InWord(uint16(p.addr))
		} else {
			p.rdata = uint16(c.bus.InByte(uint16(p.addr)))
		}
	case p.flags&reqMem != 0:
		if p.flags&reqWide != 0 {
			p.rdata = c.bus.ReadMemWord(p.addr)
		} else {
			p.rdata = uint16(c.bus.ReadMemByte(p.addr))
		}
	case p.flags&reqPic != 0:
		p.picByte = c.bus.IRQAck()
	}
}

func (c *Cpu) runCodeFetch() {
	b := c.bus.ReadMemByte(c.CS.Linear(c.pfq.ip))
	c.pfq.push(b)
	c.pfq.ip++
}

// wait is the single point where EU cycle consumption is interleaved with
// BIU/BCSM stepping (spec.md §4.5): the heart of cycle accuracy. n host
// ticks elapse; busActive tells the BCSM whether a non-code access is
// pending this call (the caller must have staged it via c.pending first).
func (c *Cpu) wait(n int, busActive bool) {
	for i := 0; i < n; i++ {
		if c.notReady > 0 {
			c.notReady--
		} else {
			c.biuTick(busActive, &c.pending)
		}
		c.dmaTick()
		c.cycles--
		c.tsc += (c.cpuMultiplier >> 32)
		if c.bus != nil && uint32(c.tsc) >= c.bus.TimerTarget() {
			c.bus.TimerProcess()
		}
	}
}

// dmaTick drains queued DRAM refresh cycles at safe points: idle or T3/T4,
// never inside a LOCK# region (spec.md §5).
func (c *Cpu) dmaTick() {
	if c.inLock || c.refresh == 0 {
		return
	}
	if c.phase == phaseT3 || c.phase == phaseT4 || c.busRequestType == 0 {
		c.refresh--
	}
}

// cyclesIdle spends n ticks with no bus access pending, letting prefetch
// fills happen if scheduled.
func (c *Cpu) cyclesIdle(n int) {
	c.wait(n, false)
}

// cyclesPasv is an alias used by passive (non-EU-initiated) cycle spends,
// matching the original's cycles_pasv naming.
func (c *Cpu) cyclesPasv(n int) {
	c.wait(n, false)
}

// cyclesBIU spends 4 ticks performing a staged bus access.
func (c *Cpu) cyclesBIU() {
	c.wait(4, true)
}

// processTimers is the external hook invoked whenever cycles are un-stolen
// by ResubCycles; mirrors the original's post-resub timer catch-up.
func (c *Cpu) processTimers() {
	if c.bus != nil {
		c.bus.TimerProcess()
	}
}

// pfqSchedule re-evaluates whether a code fetch should be scheduled, per
// the rule in spec.md §4.2. forceRestart additionally reseeds pfq.ip at PC
// (used by reset and by flush_queue call sites).
func (c *Cpu) pfqSchedule(forceRestart bool) {
	if forceRestart {
		c.pfq.ip = c.PC
	}
	c.scheduleFetch = c.prefetching && !c.pfq.full()
}

// flushQueue implements spec.md §4.2 flush_queue(): discard buffered bytes
// and reset phase to T1.
func (c *Cpu) flushQueue() {
	c.pfq.clear(&c.phase)
	c.pfqSchedule(true)
}

// suspendPrefetch implements spec.md §4.2 suspend_prefetch(): finish the
// current bus phase, wait until T1, insert one idle tick, and stop
// scheduling fetches.
func (c *Cpu) suspendPrefetch() {
	for c.phase != phaseT1 {
		c.wait(1, false)
	}
	c.wait(1, false)
	c.scheduleFetch = false
	c.prefetching = false
}

// beginNonCodeAccess implements the prefetch abort policy of spec.md §4.2
// before the EU issues a memory/IO/PIC access.
func (c *Cpu) beginNonCodeAccess() {
	switch c.phase {
	case phaseT1, phaseT2:
		c.phase = phaseT1
	case phaseT3, phaseT4:
		leftover := 5 - c.phase
		c.wait(leftover+2, false)
		c.phase = phaseT1
	}
}

// ReadByte performs a BIU-mediated memory byte read: one 4-tick MEM cycle.
func (c *Cpu) ReadByte(seg *Segment, ofs uint16) byte {
	c.beginNonCodeAccess()
	c.pending = pendingAccess{flags: reqMem, addr: seg.Linear(ofs)}
	c.cyclesBIU()
	return byte(c.pending.rdata)
}

// ReadWord performs a BIU-mediated memory word read per spec.md §4.2's
// WIDE/split rule.
func (c *Cpu) ReadWord(seg *Segment, ofs uint16) uint16 {
	if c.Is8086 && ofs%2 == 0 {
		c.beginNonCodeAccess()
		c.pending = pendingAccess{flags: reqMem | reqWide, addr: seg.Linear(ofs)}
		c.cyclesBIU()
		return c.pending.rdata
	}
	lo := c.ReadByte(seg, ofs)
	hiAddr := ofs + 1
	if !(c.Is186 && !c.IsNEC) {
		hiAddr &= 0xFFFF
	}
	hi := c.ReadByte(seg, hiAddr)
	return uint16(lo) | uint16(hi)<<8
}

// WriteByte performs a BIU-mediated memory byte write.
func (c *Cpu) WriteByte(seg *Segment, ofs uint16, v byte) {
	c.beginNonCodeAccess()
	c.pending = pendingAccess{flags: reqMem | reqOut, addr: seg.Linear(ofs), wdata: uint16(v)}
	c.cyclesBIU()
}

// WriteWord performs a BIU-mediated memory word write. A split write forms
// the high byte's offset as a 16-bit ofs+1, so it wraps at 0xFFFF on every
// variant, the 80186 included (as does ReadWord).
func (c *Cpu) WriteWord(seg *Segment, ofs uint16, v uint16) {
	if c.Is8086 && ofs%2 == 0 {
		c.beginNonCodeAccess()
		c.pending = pendingAccess{flags: reqMem | reqOut | reqWide, addr: seg.Linear(ofs), wdata: v}
		c.cyclesBIU()
		return
	}
	c.WriteByte(seg, ofs, byte(v))
	hiAddr := ofs + 1
	if !(c.Is186 && !c.IsNEC) {
		hiAddr &= 0xFFFF
	}
	c.WriteByte(seg, hiAddr, byte(v>>8))
}

// InByte/InWord/OutByte/OutWord mirror the memory operations against IO
// space, using the same split-access alignment rule (against port parity).
func (c *Cpu) InByte(port uint16) byte {
	c.beginNonCodeAccess()
	c.pending = pendingAccess{flags: reqIO, addr: uint32(port)}
	c.cyclesBIU()
	return byte(c.pending.rdata)
}

func (c *Cpu) InWord(port uint16) uint16 {
	if c.Is8086 && port%2 == 0 {
		c.beginNonCodeAccess()
		c.pending = pendingAccess{flags: reqIO | reqWide, addr: uint32(port)}
		c.cyclesBIU()
		return c.pending.rdata
	}
	lo := c.InByte(port)
	hi := c.InByte(port + 1)
	return uint16(lo) | uint16(hi)<<8
}

func (c *Cpu) OutByte(port uint16, v byte) {
	c.beginNonCodeAccess()
	c.pending = pendingAccess{flags: reqIO | reqOut, addr: uint32(port), wdata: uint16(v)}
	c.cyclesBIU()
}

func (c *Cpu) OutWord(port uint16, v uint16) {
	if c.Is8086 && port%2 == 0 {
		c.beginNonCodeAccess()
		c.pending = pendingAccess{flags: reqIO | reqOut | reqWide, addr: uint32(port), wdata: v}
		c.cyclesBIU()
		return
	}
	c.OutByte(port, byte(v))
	c.OutByte(port+1, byte(v>>8))
}

// PICAcknowledge runs a 4-tick PIC bus cycle under LOCK#. The maskable-IRQ
// sequence calls this twice (spec.md §4.4.3).
func (c *Cpu) PICAcknowledge() byte {
	wasLocked := c.inLock
	c.inLock = true
	c.beginNonCodeAccess()
	c.pending = pendingAccess{flags: reqPic}
	c.cyclesBIU()
	c.inLock = wasLocked
	return c.pending.picByte
}
