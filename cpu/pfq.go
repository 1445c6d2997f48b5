package cpu808x

// pfq is the prefetch queue: a fixed-capacity FIFO of instruction bytes
// fed by the BIU and drained by the EU (spec.md §4.3).
type pfq struct {
	capacity int
	pos      int // bytes currently valid
	buf      [6]byte
	ip       uint16 // guest address of the next byte to be fetched INTO the queue
}

// clear discards all buffered bytes and forces the BCSM back to T1, per the
// flush contract in spec.md §4.3. Also resets ip on the next schedule.
func (q *pfq) clear(phase *int) {
	q.pos = 0
	*phase = phaseT1
}

// full reports whether the queue cannot accept any more bytes.
func (q *pfq) full() bool { return q.pos >= q.capacity }

// freeSlots is capacity - pos, used by the BIU's schedule_fetch rule.
func (q *pfq) freeSlots() int { return q.capacity - q.pos }

// push appends one byte fetched by the BCSM at phase T3 of a code cycle.
func (q *pfq) push(b byte) {
	if q.pos >= q.capacity {
		return
	}
	q.buf[q.pos] = b
	q.pos++
}

// dequeue removes and returns the oldest byte.
func (q *pfq) dequeue() byte {
	b := q.buf[0]
	copy(q.buf[:q.pos-1], q.buf[1:q.pos])
	q.pos--
	return b
}

// fetchByte blocks (consuming host ticks via the BIU/BCSM) until at least
// one byte is queued, then dequeues it and advances architectural PC. When
// the queue is empty and prefetching was suspended (by a jump, call, return
// or interrupt), it first restarts prefetching with ip reseeded at PC.
func (c *Cpu) fetchByte() byte {
	if c.pfq.pos == 0 && !c.prefetching {
		c.prefetching = true
		c.pfqSchedule(true)
	}
	for c.pfq.pos == 0 {
		c.wait(1, false)
	}
	b := c.pfq.dequeue()
	c.PC++
	return b
}

// fetchWord is two back-to-back fetchByte calls in little-endian order.
func (c *Cpu) fetchWord() uint16 {
	lo := c.fetchByte()
	hi := c.fetchByte()
	return uint16(lo) | uint16(hi)<<8
}
