// Package luahook implements cpu808x.InstructionHook with a Lua script,
// in the spirit of the machine monitor's breakpoint conditions (register,
// memory, and hit-count predicates) but evaluated by an embedded gopher-lua
// state instead of the hand-rolled expression parser, so guest-side debug
// scripts can inspect and react to CPU state each retired instruction.
package luahook

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	cpu808x "github.com/jriwanek/pcbox-808x/cpu"
)

// Hook runs a Lua chunk once per retired instruction. The chunk's on_step
// function is called with two arguments: a "cpu" table (ax, bx, cx, dx, si,
// di, bp, sp, pc, flags, cs, ds, es, ss, halted -- a snapshot built fresh
// for each call) and a "mem" table with byte/word read functions. Returning
// true from on_step requests that Execute stop.
type Hook struct {
	state   *lua.LState
	onStep  lua.LValue
	lastErr error
}

// New compiles script and resolves its on_step(cpu, mem) function. script
// is expected to assign a global function named on_step; any other globals
// it defines are left in the Lua state for onStep to use as persistent
// storage (running totals, breakpoint tables, etc).
func New(script string) (*Hook, error) {
	l := lua.NewState()
	if err := l.DoString(script); err != nil {
		l.Close()
		return nil, fmt.Errorf("luahook: loading script: %w", err)
	}

	fn := l.GetGlobal("on_step")
	if fn.Type() != lua.LTFunction {
		l.Close()
		return nil, fmt.Errorf("luahook: script did not define on_step")
	}

	return &Hook{state: l, onStep: fn}, nil
}

// Close releases the Lua state. The Hook must not be used afterward.
func (h *Hook) Close() { h.state.Close() }

// LastError returns the most recent Lua runtime error, if any, from
// AfterInstruction. Hooks are never allowed to panic the CPU loop: a
// script error is recorded here and treated as "don't stop".
func (h *Hook) LastError() error { return h.lastErr }

// AfterInstruction implements cpu808x.InstructionHook.
func (h *Hook) AfterInstruction(c *cpu808x.Cpu) bool {
	l := h.state
	l.Push(h.onStep)
	l.Push(cpuTable(l, c))
	l.Push(memTable(l, c))

	if err := l.PCall(2, 1, nil); err != nil {
		h.lastErr = fmt.Errorf("luahook: on_step: %w", err)
		return false
	}
	h.lastErr = nil

	ret := l.Get(-1)
	l.Pop(1)
	return lua.LVAsBool(ret)
}

func cpuTable(l *lua.LState, c *cpu808x.Cpu) *lua.LTable {
	t := l.NewTable()
	t.RawSetString("ax", lua.LNumber(c.AX))
	t.RawSetString("bx", lua.LNumber(c.BX))
	t.RawSetString("cx", lua.LNumber(c.CX))
	t.RawSetString("dx", lua.LNumber(c.DX))
	t.RawSetString("si", lua.LNumber(c.SI))
	t.RawSetString("di", lua.LNumber(c.DI))
	t.RawSetString("bp", lua.LNumber(c.BP))
	t.RawSetString("sp", lua.LNumber(c.SP))
	t.RawSetString("pc", lua.LNumber(c.PC))
	t.RawSetString("flags", lua.LNumber(c.Flags))
	t.RawSetString("cs", lua.LNumber(c.CS.Selector))
	t.RawSetString("ds", lua.LNumber(c.DS.Selector))
	t.RawSetString("es", lua.LNumber(c.ES.Selector))
	t.RawSetString("ss", lua.LNumber(c.SS.Selector))
	t.RawSetString("halted", lua.LBool(c.Halted))
	return t
}

// memTable exposes guest memory relative to DS, matching how a debug
// script would normally address variables: readByte(0) is [DS:0000].
func memTable(l *lua.LState, c *cpu808x.Cpu) *lua.LTable {
	t := l.NewTable()
	t.RawSetString("readByte", l.NewFunction(func(l *lua.LState) int {
		ofs := uint16(l.CheckNumber(1))
		l.Push(lua.LNumber(c.ReadByte(&c.DS, ofs)))
		return 1
	}))
	t.RawSetString("readWord", l.NewFunction(func(l *lua.LState) int {
		ofs := uint16(l.CheckNumber(1))
		l.Push(lua.LNumber(c.ReadWord(&c.DS, ofs)))
		return 1
	}))
	return t
}
