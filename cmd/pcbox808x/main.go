// Command pcbox808x is a minimal front end for package cpu808x: it loads a
// flat binary image into a hostbus.Bus, picks a CPU variant, and either runs
// it to a cycle budget or steps it interactively one instruction at a time.
package main

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/urfave/cli/v2"

	cpu808x "github.com/jriwanek/pcbox-808x/cpu"
	"github.com/jriwanek/pcbox-808x/hostbus"
	"github.com/jriwanek/pcbox-808x/luahook"
)

func main() {
	app := &cli.App{
		Name:    "pcbox808x",
		Usage:   "run or single-step an 8088/8086/80186/NEC V20/V30 image",
		Version: "v0.1.0",
		Flags:   variantFlags(),
		Commands: []*cli.Command{
			runCommand(),
			stepCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func variantFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "8086", Usage: "emulate an 8086 instead of an 8088"},
		&cli.BoolFlag{Name: "186", Usage: "enable 80186 extensions"},
		&cli.BoolFlag{Name: "nec", Usage: "enable NEC V20/V30 extensions"},
		&cli.StringFlag{Name: "image", Aliases: []string{"i"}, Usage: "flat binary to load", Required: true},
		&cli.UintFlag{Name: "load-addr", Value: 0, Usage: "physical address to load image at"},
		&cli.UintFlag{Name: "entry-cs", Value: 0xFFFF, Usage: "CS at reset (paragraph)"},
		&cli.UintFlag{Name: "entry-ip", Value: 0, Usage: "IP at reset"},
		&cli.StringFlag{Name: "lua-hook", Usage: "path to a Lua script implementing on_step(cpu, mem)"},
	}
}

func variantFor(c *cli.Context) cpu808x.Variant {
	switch {
	case c.Bool("nec") && c.Bool("8086"):
		return cpu808x.VariantNECV30
	case c.Bool("nec"):
		return cpu808x.VariantNECV20
	case c.Bool("186"):
		return cpu808x.Variant80186
	case c.Bool("8086"):
		return cpu808x.Variant8086
	default:
		return cpu808x.Variant8088
	}
}

// buildCpu loads the image, constructs the bus and core, and attaches the
// Lua hook if one was requested. The timer is the hostbus no-op stub with a
// fixed period of 1,000,000 host ticks; this front end has no interrupt
// source of its own.
func buildCpu(c *cli.Context) (*cpu808x.Cpu, *hostbus.Bus, func(), error) {
	img, err := os.ReadFile(c.String("image"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("reading image: %w", err)
	}

	bus := hostbus.New(1_000_000)
	bus.Load(uint32(c.Uint("load-addr")), img)

	cc := cpu808x.NewCpu(bus, variantFor(c))
	cc.CS.Load(uint16(c.Uint("entry-cs")))
	cc.PC = uint16(c.Uint("entry-ip"))

	var closeHook func()
	if path := c.String("lua-hook"); path != "" {
		script, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("reading lua hook: %w", err)
		}
		h, err := luahook.New(string(script))
		if err != nil {
			return nil, nil, nil, err
		}
		cc.AddHook(h)
		closeHook = h.Close
	}

	return cc, bus, closeHook, nil
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "execute a cycle budget, or until halted",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "cycles", Value: 1_000_000, Usage: "host tick budget"},
			&cli.BoolFlag{Name: "watch", Usage: "run the core on a background goroutine and wait for it (core state is not polled)"},
		},
		Action: func(c *cli.Context) error {
			cc, _, closeHook, err := buildCpu(c)
			if err != nil {
				return err
			}
			if closeHook != nil {
				defer closeHook()
			}

			log.Printf("pcbox808x: starting run, budget=%d ticks", c.Int("cycles"))

			if !c.Bool("watch") {
				spent := cc.Execute(c.Int("cycles"))
				log.Printf("pcbox808x: stopped after %d ticks, halted=%v", spent, cc.Halted)
				return nil
			}

			var g errgroup.Group
			done := make(chan struct{})
			g.Go(func() error {
				spent := cc.Execute(c.Int("cycles"))
				log.Printf("pcbox808x: stopped after %d ticks, halted=%v", spent, cc.Halted)
				close(done)
				return nil
			})
			g.Go(func() error {
				<-done
				return nil
			})
			return g.Wait()
		},
	}
}

func stepCommand() *cli.Command {
	return &cli.Command{
		Name:  "step",
		Usage: "single-step with the terminal in raw mode; any key steps one instruction, 'q' quits",
		Action: func(c *cli.Context) error {
			cc, _, closeHook, err := buildCpu(c)
			if err != nil {
				return err
			}
			if closeHook != nil {
				defer closeHook()
			}

			fd := int(os.Stdin.Fd())
			oldState, err := term.MakeRaw(fd)
			if err != nil {
				return fmt.Errorf("putting terminal in raw mode: %w", err)
			}
			defer term.Restore(fd, oldState)

			buf := make([]byte, 1)
			for {
				printRegisters(cc)
				if cc.Halted {
					break
				}
				if _, err := os.Stdin.Read(buf); err != nil {
					return err
				}
				if buf[0] == 'q' {
					break
				}
				cc.Execute(1)
			}
			return nil
		},
	}
}

func printRegisters(c *cpu808x.Cpu) {
	fmt.Printf("\r\nAX=%04X BX=%04X CX=%04X DX=%04X SI=%04X DI=%04X BP=%04X SP=%04X\r\n", c.AX, c.BX, c.CX, c.DX, c.SI, c.DI, c.BP, c.SP)
	fmt.Printf("CS=%04X DS=%04X ES=%04X SS=%04X PC=%04X FLAGS=%04X halted=%v\r\n", c.CS.Selector, c.DS.Selector, c.ES.Selector, c.SS.Selector, c.PC, c.Flags, c.Halted)
}
