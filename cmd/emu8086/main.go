// Command emu8086 loads a raw 16-bit 8086 binary image, runs it against the
// go8086 emulator, and reports the final register and flag state as JSON.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"go8086/cpu"
)

func main() {
	log.SetFlags(0)

	var filePath string
	var fromStdin bool
	var debug bool

	root := &cobra.Command{
		Use:           "emu8086",
		Short:         "Emulate a 16-bit segmented 8086-family processor",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if filePath == "" && !fromStdin {
				_ = cmd.Usage()
				return fmt.Errorf("no program given: pass -f <path> or --stdin")
			}
			return run(filePath, fromStdin, debug)
		},
	}
	root.Flags().StringVarP(&filePath, "file", "f", "", "binary file to load at CS:0000")
	root.Flags().BoolVar(&fromStdin, "stdin", false, "load the program image from stdin")
	root.Flags().BoolVar(&debug, "debug", false, "launch the interactive single-step debugger")

	if err := root.Execute(); err != nil {
		log.Fatalln(err)
	}
}

func run(filePath string, fromStdin, debug bool) error {
	program, err := loadImage(filePath, fromStdin)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	machine := cpu.NewCpu()
	machine.LoadProgram(program)

	if debug {
		machine.Debug(program)
		return nil
	}

	if err := machine.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}

	dumpState(machine)
	return nil
}

func loadImage(filePath string, fromStdin bool) ([]byte, error) {
	if fromStdin {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(filePath)
}

// dumpState prints the final register and flag state as JSON, in the exact
// field names and order the emulator's external interface specifies.
func dumpState(c *cpu.Cpu) {
	r := c.Registers()
	fmt.Println("{")
	fmt.Println(`"registers":{`)
	fmt.Printf("\"AX\":%d,\n", r.AX())
	fmt.Printf("\"BX\":%d,\n", r.BX())
	fmt.Printf("\"CX\":%d,\n", r.CX())
	fmt.Printf("\"DX\":%d,\n", r.DX())
	fmt.Printf("\"SI\":%d,\n", r.SI())
	fmt.Printf("\"DI\":%d,\n", r.DI())
	fmt.Printf("\"SP\":%d,\n", r.SP())
	fmt.Printf("\"BP\":%d\n", r.BP())
	fmt.Println("},")
	fmt.Println(`"flags": {`)
	fmt.Printf("\"Parity\":%t,\n", r.Flags.PF())
	fmt.Printf("\"Overflow\":%t,\n", r.Flags.OF())
	fmt.Printf("\"Sign\":%t,\n", r.Flags.SF())
	fmt.Printf("\"Carry\":%t,\n", r.Flags.CF())
	fmt.Printf("\"Zero\":%t,\n", r.Flags.ZF())
	fmt.Printf("\"Aux\":%t,\n", r.Flags.AF())
	fmt.Printf("\"Direction\":%t,\n", r.Flags.DF())
	fmt.Printf("\"Interrupt\":%t,\n", r.Flags.IF())
	fmt.Printf("\"Trap\":%t\n", r.Flags.TF())
	fmt.Println("} }")
}
