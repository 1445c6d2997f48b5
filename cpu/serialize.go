package cpu808x

import (
	"encoding/binary"
	"errors"
)

// cpuSerializeVersion is incremented whenever the binary layout changes.
const cpuSerializeVersion = 1

// cpuSerializeSize is the number of bytes produced by Serialize: version(1)
// + 8 general registers(16) + PC(2) + 4 segment selectors(8) + flags(2) +
// variant bits(3) + NMI latch state(3) + halted(1) + custom NMI vector(4) +
// use-custom-NMI flag(1) + PFQ snapshot(10) + BCSM phase(2) + TSC(8).
// Update this constant whenever the binary layout changes.
const cpuSerializeSize = 1 + 16 + 2 + 8 + 2 + 3 + 3 + 1 + 4 + 1 + 10 + 2 + 8

// SerializeSize returns the number of bytes needed for Serialize.
func (c *Cpu) SerializeSize() int { return cpuSerializeSize }

// Serialize writes the architectural registers, FLAGS, variant and NMI
// settings, the halted flag, the custom NMI vector, the prefetch queue, the
// BCSM phase and the TSC into buf, which must be at least SerializeSize()
// bytes. It does not save the fetch-scheduling flags (scheduleFetch,
// prefetching), the notReady/hlda/refresh counters, the cycle budget, the
// REP state or FatalError. Taking a snapshot
// between instructions (e.g. from an InstructionHook) captures a consistent
// point; mid-instruction EU scratch (src/dest/data, ModR/M staging) is not
// included since it never survives past the current step().
func (c *Cpu) Serialize(buf []byte) error {
	if len(buf) < cpuSerializeSize {
		return errors.New("cpu808x: serialize buffer too small")
	}

	be := binary.BigEndian
	buf[0] = cpuSerializeVersion
	off := 1

	for _, r := range []uint16{c.AX, c.BX, c.CX, c.DX, c.SI, c.DI, c.BP, c.SP} {
		be.PutUint16(buf[off:], r)
		off += 2
	}
	be.PutUint16(buf[off:], c.PC)
	off += 2

	for _, s := range []*Segment{&c.ES, &c.CS, &c.SS, &c.DS} {
		be.PutUint16(buf[off:], s.Selector)
		off += 2
	}

	be.PutUint16(buf[off:], c.Flags)
	off += 2

	buf[off] = boolByte(c.Is8086)
	buf[off+1] = boolByte(c.Is186)
	buf[off+2] = boolByte(c.IsNEC)
	off += 3

	buf[off] = boolByte(c.nmiLine)
	buf[off+1] = boolByte(c.nmiEnable)
	buf[off+2] = boolByte(c.nmiMask)
	off += 3

	buf[off] = boolByte(c.Halted)
	off++

	be.PutUint32(buf[off:], c.CustomNMIVector)
	off += 4
	buf[off] = boolByte(c.UseCustomNMIVector)
	off++

	off += c.pfq.serialize(buf[off:])

	be.PutUint16(buf[off:], uint16(c.phase))
	off += 2

	be.PutUint64(buf[off:], c.tsc)
	off += 8

	return nil
}

// Deserialize restores state captured by Serialize. Segment bases are
// recomputed from the restored selectors via Segment.Load, preserving the
// base==selector<<4 invariant. The bus and hooks are left unchanged.
func (c *Cpu) Deserialize(buf []byte) error {
	if len(buf) < cpuSerializeSize {
		return errors.New("cpu808x: deserialize buffer too small")
	}
	if buf[0] != cpuSerializeVersion {
		return errors.New("cpu808x: unsupported serialize version")
	}

	be := binary.BigEndian
	off := 1

	regs := []*uint16{&c.AX, &c.BX, &c.CX, &c.DX, &c.SI, &c.DI, &c.BP, &c.SP}
	for _, r := range regs {
		*r = be.Uint16(buf[off:])
		off += 2
	}
	c.PC = be.Uint16(buf[off:])
	off += 2

	for _, s := range []*Segment{&c.ES, &c.CS, &c.SS, &c.DS} {
		s.Load(be.Uint16(buf[off:]))
		off += 2
	}

	c.Flags = be.Uint16(buf[off:])
	off += 2

	c.Is8086 = buf[off] != 0
	c.Is186 = buf[off+1] != 0
	c.IsNEC = buf[off+2] != 0
	off += 3

	c.nmiLine = buf[off] != 0
	c.nmiEnable = buf[off+1] != 0
	c.nmiMask = buf[off+2] != 0
	off += 3

	c.Halted = buf[off] != 0
	off++

	c.CustomNMIVector = be.Uint32(buf[off:])
	off += 4
	c.UseCustomNMIVector = buf[off] != 0
	off++

	off += c.pfq.deserialize(buf[off:])

	c.phase = int(be.Uint16(buf[off:]))
	off += 2

	c.tsc = be.Uint64(buf[off:])
	off += 8

	return nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// serialize writes the queue's capacity, fill count, buffered bytes, and
// fetch cursor. Always writes the full 6-byte buffer regardless of
// capacity, so the 8088 (4-byte queue) and 8086 (6-byte queue) share one
// layout. Returns the number of bytes written.
func (q *pfq) serialize(buf []byte) int {
	be := binary.BigEndian
	buf[0] = byte(q.capacity)
	buf[1] = byte(q.pos)
	copy(buf[2:8], q.buf[:])
	be.PutUint16(buf[8:], q.ip)
	return 10
}

func (q *pfq) deserialize(buf []byte) int {
	be := binary.BigEndian
	q.capacity = int(buf[0])
	q.pos = int(buf[1])
	copy(q.buf[:], buf[2:8])
	q.ip = be.Uint16(buf[8:])
	return 10
}
