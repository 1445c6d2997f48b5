// harte_test.go adapts the teacher's cpu_x86_harte_test.go pattern: decode
// Tom Harte's SingleStepTests/8088 JSON fixtures (gzip-compressed, one file
// per opcode) and replay each test's initial state through one real
// instruction, comparing final architectural state. Skips (never fails)
// when the fixture directory is absent, exactly as the teacher's harness
// does for its own missing corpus.
package cpu808x

import (
	"compress/gzip"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"golang.org/x/sync/errgroup"
)

var (
	harteVerbose = flag.Bool("x86-harte-verbose", false, "enable verbose Harte test logging")
	harteSample  = flag.Int("x86-harte-sample", 0, "run only N tests per file (0 = all)")
	harteParallel = flag.Bool("x86-harte-parallel", false, "fan out opcode files across an errgroup")
)

const harteTestDir = "testdata/8088/v1"

type harteRegs struct {
	AX, BX, CX, DX, SI, DI, BP, SP, IP uint16
	CS, DS, ES, SS, Flags              uint16
}

type harteState struct {
	Regs harteRegs  `json:"regs"`
	RAM  [][]uint32 `json:"ram"`
}

type harteCase struct {
	Name    string     `json:"name"`
	Initial harteState `json:"initial"`
	Final   harteState `json:"final"`
}

func loadHarteFile(path string) ([]harteCase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	defer gz.Close()

	var cases []harteCase
	if err := json.NewDecoder(gz).Decode(&cases); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return cases, nil
}

func setupHarteCPU(c *Cpu, bus *testBus, st harteState) {
	for i := range bus.mem {
		bus.mem[i] = 0
	}
	c.AX, c.BX, c.CX, c.DX = st.Regs.AX, st.Regs.BX, st.Regs.CX, st.Regs.DX
	c.SI, c.DI, c.BP, c.SP = st.Regs.SI, st.Regs.DI, st.Regs.BP, st.Regs.SP
	c.PC = st.Regs.IP
	c.CS.Load(st.Regs.CS)
	c.DS.Load(st.Regs.DS)
	c.ES.Load(st.Regs.ES)
	c.SS.Load(st.Regs.SS)
	c.Flags = st.Regs.Flags

	for _, entry := range st.RAM {
		if len(entry) >= 2 {
			bus.mem[entry[0]&0xFFFFF] = byte(entry[1])
		}
	}
}

func runHarteCase(t *testing.T, tc harteCase) {
	c, bus := newTestCpu(Variant8088)
	setupHarteCPU(c, bus, tc.Initial)
	c.flushQueue()
	c.Execute(1)

	if c.AX != tc.Final.Regs.AX {
		t.Errorf("%s: AX = %#04x, want %#04x", tc.Name, c.AX, tc.Final.Regs.AX)
	}
	if c.BX != tc.Final.Regs.BX {
		t.Errorf("%s: BX = %#04x, want %#04x", tc.Name, c.BX, tc.Final.Regs.BX)
	}
	if c.CX != tc.Final.Regs.CX {
		t.Errorf("%s: CX = %#04x, want %#04x", tc.Name, c.CX, tc.Final.Regs.CX)
	}
	if c.DX != tc.Final.Regs.DX {
		t.Errorf("%s: DX = %#04x, want %#04x", tc.Name, c.DX, tc.Final.Regs.DX)
	}
	if c.PC != tc.Final.Regs.IP {
		t.Errorf("%s: IP = %#04x, want %#04x", tc.Name, c.PC, tc.Final.Regs.IP)
	}

	for _, entry := range tc.Final.RAM {
		if len(entry) < 2 {
			continue
		}
		addr := entry[0] & 0xFFFFF
		want := byte(entry[1])
		if bus.mem[addr] != want {
			t.Errorf("%s: mem[%#05x] = %#02x, want %#02x", tc.Name, addr, bus.mem[addr], want)
		}
	}
}

func runHarteFile(t *testing.T, path string) {
	cases, err := loadHarteFile(path)
	if err != nil {
		t.Fatalf("loading %s: %v", path, err)
	}
	if *harteSample > 0 && *harteSample < len(cases) {
		cases = cases[:*harteSample]
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) { runHarteCase(t, tc) })
	}
	if *harteVerbose {
		t.Logf("%s: ran %d cases", filepath.Base(path), len(cases))
	}
}

// TestHarte8088 runs every opcode fixture found under testdata/8088/v1. It
// skips entirely when that directory hasn't been populated (the corpus is
// not checked into this tree, matching the teacher's own harness).
func TestHarte8088(t *testing.T) {
	files, err := filepath.Glob(filepath.Join(harteTestDir, "*.json.gz"))
	if err != nil || len(files) == 0 {
		t.Skip("Tom Harte 8088 test files not found under testdata/8088/v1")
	}

	if !*harteParallel {
		for _, f := range files {
			name := filepath.Base(f)
			t.Run(name, func(t *testing.T) { runHarteFile(t, f) })
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, f := range files {
		f := f
		g.Go(func() error {
			t.Run(filepath.Base(f), func(t *testing.T) { runHarteFile(t, f) })
			return nil
		})
	}
	_ = g.Wait()
}
