// Package cpu implements the core decode-and-execute engine for a 16-bit
// segmented processor of the Intel 8086 family: the opcode-table decoder,
// the mod/reg/rm effective-address resolver, and the roughly one hundred
// operation handlers that reproduce 8086 arithmetic, flag, control-flow,
// string, and shift/rotate semantics.
package cpu

import (
	"fmt"

	"go8086/mem"
)

// loadAddress is the fixed physical address the initial program image is
// placed at: CS:0000 with CS=0.
const loadAddress = 0

// maxImageSize bounds how much of a supplied binary is actually loaded;
// anything past this many bytes is truncated, per the external interface
// contract.
const maxImageSize = 1024

// A Cpu is the processor object: memory, the register file, the pending
// segment-override state, and the halt flag. There is exactly one per
// emulated machine, created at startup and discarded at shutdown.
type Cpu struct {
	mem  *mem.Memory
	regs *Registers

	hasSegOverride bool
	segOverride    int

	halted bool

	// programSize is the number of bytes actually loaded at CS:0000. The
	// run loop terminates successfully once IP advances past it.
	programSize int
}

// NewCpu returns a Cpu at the emulator's fixed reset vector: CS=DS=ES=0,
// SS linearized to 0x1000, SP=0x0FFF, IP=0, FLAGS=0x0002.
func NewCpu() *Cpu {
	return &Cpu{
		mem:  mem.New(),
		regs: NewRegisters(),
	}
}

// Registers exposes the register file, for callers that need to inspect or
// seed architectural state (the CLI's final-state dump, and tests).
func (c *Cpu) Registers() *Registers { return c.regs }

// Memory exposes the backing store, for the debug TUI's memory page view.
func (c *Cpu) Memory() *mem.Memory { return c.mem }

// Halted reports whether HLT has been executed.
func (c *Cpu) Halted() bool { return c.halted }

// LoadProgram copies program into memory at CS:0000, truncating to
// maxImageSize bytes, and records its length as the run loop's end-of-
// image boundary.
func (c *Cpu) LoadProgram(program []byte) {
	if len(program) > maxImageSize {
		program = program[:maxImageSize]
	}
	c.programSize = c.mem.LoadImage(program, loadAddress)
}

// Run repeatedly fetches and executes instructions until IP advances past
// the loaded image or HLT is executed. It returns the first fatal error
// encountered (unrecognized opcode, unrecognized group sub-field, or a
// divide error), if any.
func (c *Cpu) Run() error {
	for {
		if c.halted {
			return nil
		}
		if int(c.regs.IP()) >= c.programSize {
			return nil
		}
		if err := c.Step(); err != nil {
			return err
		}
	}
}

// Step fetches, decodes and executes exactly one instruction (or one
// REP-driven run of a string instruction), advancing IP past the bytes
// consumed.
func (c *Cpu) Step() error {
	csBase := c.regs.SegmentBase(SegCS)
	addr := (csBase + uint32(c.regs.IP())) & 0xFFFFF
	c.mem.SeekTo(addr)

	instr, err := c.decodeNext()
	if err != nil {
		return err
	}
	c.regs.SetIP(ipAfter(c.mem.Pos(), csBase))

	switch instr.Op {
	case OpLock:
		// No second agent exists to contend with; LOCK is a pure no-op.
		return nil
	case OpOverrideSeg:
		// The override must outlive this Step; it is cleared only after
		// the next non-prefix instruction completes.
		c.hasSegOverride = true
		c.segOverride = instr.Seg
		return nil
	case OpRep, OpRepne:
		return c.execRepPrefix(instr.Op)
	}

	execErr := c.execute(instr)
	c.hasSegOverride = false
	return execErr
}

// ipAfter converts a post-decode memory cursor position back into a 16-bit
// IP relative to csBase.
func ipAfter(pos uint32, csBase uint32) uint16 {
	return uint16((int64(pos) - int64(csBase)) & 0xFFFF)
}

// execRepPrefix decodes the string instruction a REP/REPNE prefix applies
// to and drives it in a bounded loop, decrementing CX each iteration until
// CX reaches 0 or, for CMPS/SCAS, the ZF condition the prefix names no
// longer holds.
func (c *Cpu) execRepPrefix(prefix Opcode) error {
	csBase := c.regs.SegmentBase(SegCS)
	addr := (csBase + uint32(c.regs.IP())) & 0xFFFFF
	c.mem.SeekTo(addr)

	inner, err := c.decodeNext()
	if err != nil {
		return err
	}
	c.regs.SetIP(ipAfter(c.mem.Pos(), csBase))

	for c.regs.CX() != 0 {
		if err := c.execute(inner); err != nil {
			return err
		}
		c.regs.SetCX(c.regs.CX() - 1)
		if isStringCompare(inner.Op) {
			if prefix == OpRep && !c.regs.Flags.ZF() {
				break
			}
			if prefix == OpRepne && c.regs.Flags.ZF() {
				break
			}
		}
	}
	c.hasSegOverride = false
	return nil
}

func isStringCompare(op Opcode) bool {
	switch op {
	case OpCmpsb, OpCmpsw, OpScasb, OpScasw:
		return true
	}
	return false
}

// fatalf builds the decode/execution error the run loop surfaces as a
// fatal halt.
func fatalf(format string, args ...any) error {
	return fmt.Errorf("cpu: "+format, args...)
}
