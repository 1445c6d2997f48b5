package cpu808x

// FPU coprocessor semantics are explicitly out of scope (spec.md §1): this
// core only decodes the ESC opcodes D8-DF and dispatches the already-staged
// ModR/M byte to an external op table, exactly as the original hands
// rmdat off to ops_fpu_8087_d8..df / ops_sf_fpu_8087_d8..df. Re-architected
// per spec.md §9 as a pair of 256-entry handler arrays (soft and native)
// indexed by ModR/M, selected by a runtime flag, rather than the original's
// raw C function-pointer tables.

// FPUHandler is one entry of an ESC op table. rmdat is the raw ModR/M byte
// (callers needing the decoded mod/reg/rm or effective address can read
// c.mod/c.reg/c.rm/c.eaAddr/c.eaSeg, staged by doModRM before dispatch).
type FPUHandler func(c *Cpu, rmdat byte)

// fpuOpTable holds the 8 ESC opcodes (D8-DF) x 256 ModR/M values.
type fpuOpTable [8][256]FPUHandler

var softFPUOps fpuOpTable
var nativeFPUOps fpuOpTable

// UseSoftFPU selects softFPUOps over nativeFPUOps for opEsc. No handlers
// are registered by this package; a host that models an 8087 installs its
// own via RegisterFPUHandler.
var UseSoftFPU = true

// RegisterFPUHandler installs h at the given ESC opcode (0xD8-0xDF) and
// ModR/M byte, in either the soft or native table.
func RegisterFPUHandler(soft bool, escOpcode byte, rmdat byte, h FPUHandler) {
	table := &nativeFPUOps
	if soft {
		table = &softFPUOps
	}
	table[escOpcode-0xD8][rmdat] = h
}

// opEsc implements opcodes D8-DF. It stages ModR/M (computing the effective
// address for memory operands) and dispatches to the selected table. With
// no FPU present -- the common case for this core -- an unregistered entry
// is a silent no-op, matching how the original runs fine with hasfpu==0.
func (c *Cpu) opEsc(opcode byte) {
	c.doModRM()
	c.wait(1, false)

	table := &nativeFPUOps
	if UseSoftFPU {
		table = &softFPUOps
	}
	if h := table[opcode-0xD8][c.rmdat]; h != nil {
		h(c, c.rmdat)
	}
}
