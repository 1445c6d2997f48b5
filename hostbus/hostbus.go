// Package hostbus is a minimal reference implementation of cpu808x.Bus: a
// flat 1MB memory array, an 8-bit IO port space backed by the same kind of
// array, a PIC stub that serves one pending IRQ at a time, and a timer stub
// driven by a fixed tick target. It exists so the core can be exercised
// without a full chipset; cmd/pcbox808x uses it as is.
package hostbus

import cpu808x "github.com/jriwanek/pcbox-808x/cpu"

const memSize = 1 << 20 // 20-bit address space

// Memory is a flat byte array standing in for guest RAM (and, since nothing
// in this reference bus distinguishes ROM, also guest ROM).
type Memory struct {
	data [memSize]byte
}

func (m *Memory) ReadMemByte(addr uint32) byte {
	return m.data[addr&(memSize-1)]
}

func (m *Memory) ReadMemWord(addr uint32) uint16 {
	lo := m.data[addr&(memSize-1)]
	hi := m.data[(addr+1)&(memSize-1)]
	return uint16(lo) | uint16(hi)<<8
}

func (m *Memory) WriteMemByte(addr uint32, v byte) {
	m.data[addr&(memSize-1)] = v
}

func (m *Memory) WriteMemWord(addr uint32, v uint16) {
	m.data[addr&(memSize-1)] = byte(v)
	m.data[(addr+1)&(memSize-1)] = byte(v >> 8)
}

// Load copies img into memory starting at addr.
func (m *Memory) Load(addr uint32, img []byte) {
	copy(m.data[addr&(memSize-1):], img)
}

// Ports is a flat 64K IO port space with no device semantics: reads return
// whatever was last written (0 initially), matching an unpopulated bus.
type Ports struct {
	data [1 << 16]byte
}

func (p *Ports) InByte(port uint16) byte  { return p.data[port] }
func (p *Ports) OutByte(port uint16, v byte) { p.data[port] = v }

func (p *Ports) InWord(port uint16) uint16 {
	return uint16(p.data[port]) | uint16(p.data[port+1])<<8
}

func (p *Ports) OutWord(port uint16, v uint16) {
	p.data[port] = byte(v)
	p.data[port+1] = byte(v >> 8)
}

// PIC is a single-line interrupt controller stub: SetIRQ(vector) raises it
// and latches vector. Every IRQAck returns the latched vector and clears
// the line, so the core's second acknowledge still reads the same vector.
type PIC struct {
	pending bool
	vector  byte
}

func (p *PIC) SetIRQ(vector byte) {
	p.pending = true
	p.vector = vector
}

func (p *PIC) ClearIRQ() { p.pending = false }

func (p *PIC) IntPending() bool { return p.pending }

func (p *PIC) IRQAck() byte {
	v := p.vector
	p.pending = false
	return v
}

// Timer is a fixed-rate stub: Process fires tick() every time the TSC
// crosses a multiple of period. A nil tick is a legal no-op timer.
type Timer struct {
	period uint32
	tick   func()
	tsc    uint64
}

func NewTimer(period uint32, tick func()) *Timer {
	if period == 0 {
		period = 1
	}
	return &Timer{period: period, tick: tick}
}

func (t *Timer) TimerTarget() uint32 {
	return uint32(t.tsc) + t.period
}

func (t *Timer) TimerProcess() {
	t.tsc += uint64(t.period)
	if t.tick != nil {
		t.tick()
	}
}

func (t *Timer) TSC() uint64 { return t.tsc }

// Bus wires Memory, Ports, PIC and Timer together behind cpu808x.Bus.
type Bus struct {
	Memory
	Ports
	PIC
	*Timer
}

// New constructs a Bus with a no-op timer firing every period host ticks.
func New(timerPeriod uint32) *Bus {
	return &Bus{Timer: NewTimer(timerPeriod, nil)}
}

var _ cpu808x.Bus = (*Bus)(nil)
