package cpu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"go8086/mem"
)

// model is the bubbletea model backing the interactive single-step
// debugger: the machine itself, the IP before the last step (for the
// status line), and the first fatal error encountered, if any.
type model struct {
	cpu     *Cpu
	program []byte

	prevIP uint16
	err    error
}

// Init loads the program at CS:0000 before the first frame is drawn.
func (m model) Init() tea.Cmd {
	m.cpu.LoadProgram(m.program)
	return nil
}

// Update steps the machine by one instruction on space/j, and quits on q or
// after a fatal error.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case " ", "j":
			m.prevIP = m.cpu.Registers().IP()
			if m.cpu.Halted() {
				return m, nil
			}
			if err := m.cpu.Step(); err != nil {
				m.err = err
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

// renderPage renders 16 bytes of memory starting at a physical address,
// one line, with the byte at the current CS:IP bracketed.
func (m model) renderPage(addr uint32) string {
	ip := (m.cpu.Registers().SegmentBase(SegCS) + uint32(m.cpu.Registers().IP())) & 0xFFFFF
	s := fmt.Sprintf("%05x | ", addr)
	for i := uint32(0); i < 16; i++ {
		b := m.cpu.Memory().PeekU8(addr + i)
		if addr+i == ip {
			s += fmt.Sprintf("[%02x] ", b)
		} else {
			s += fmt.Sprintf(" %02x  ", b)
		}
	}
	return s
}

func (m model) status() string {
	r := m.cpu.Registers()
	var flags string
	for _, flag := range []bool{
		r.Flags.OF(), r.Flags.DF(), r.Flags.IF(), r.Flags.TF(),
		r.Flags.SF(), r.Flags.ZF(), r.Flags.AF(), r.Flags.PF(), r.Flags.CF(),
	} {
		if flag {
			flags += "/ "
		} else {
			flags += "  "
		}
	}
	return fmt.Sprintf(`
 IP: %04x (%04x)
 CS: %04x  DS: %04x  ES: %04x  SS: %04x
 AX: %04x  BX: %04x  CX: %04x  DX: %04x
 SI: %04x  DI: %04x  BP: %04x  SP: %04x
 O D I T S Z A P C
`,
		r.IP(), m.prevIP,
		r.GetSeg(SegCS), r.GetSeg(SegDS), r.GetSeg(SegES), r.GetSeg(SegSS),
		r.AX(), r.BX(), r.CX(), r.DX(),
		r.SI(), r.DI(), r.BP(), r.SP(),
	) + flags
}

func (m model) pageTable() string {
	header := "  addr | "
	for b := range 16 {
		header += fmt.Sprintf("  %01x  ", b)
	}
	ip := (m.cpu.Registers().SegmentBase(SegCS) + uint32(m.cpu.Registers().IP())) & 0xFFFFF
	base := (ip / 16) * 16

	rows := []string{header}
	for i := -2; i <= 2; i++ {
		addr := int64(base) + int64(i)*16
		if addr < 0 || addr >= int64(mem.Size) {
			continue
		}
		rows = append(rows, m.renderPage(uint32(addr)))
	}
	return strings.Join(rows, "\n")
}

// View renders the register/flag panel beside a five-line window of memory
// centered on the current instruction, plus a dump of the instruction about
// to execute.
func (m model) View() string {
	if m.cpu.Halted() {
		return "machine halted\n" + m.status()
	}
	decoded := m.decodeAtIP()
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.pageTable(),
			m.status(),
		),
		"",
		spew.Sdump(decoded),
	)
}

// decodeAtIP decodes (without executing) the instruction at the current
// CS:IP for display, restoring the memory cursor afterward so the decode
// has no side effect on the running machine.
func (m model) decodeAtIP() any {
	r := m.cpu.Registers()
	addr := (r.SegmentBase(SegCS) + uint32(r.IP())) & 0xFFFFF
	saved := m.cpu.Memory().Pos()
	m.cpu.Memory().SeekTo(addr)
	instr, err := m.cpu.decodeNext()
	m.cpu.Memory().SeekTo(saved)
	if err != nil {
		return err
	}
	return instr
}

// Debug loads program at CS:0000 and starts an interactive single-step TUI:
// space or j executes the next instruction, q quits.
func (c *Cpu) Debug(program []byte) {
	m, err := tea.NewProgram(model{
		cpu:     c,
		program: program,
	}).Run()
	if err != nil {
		panic(err)
	}
	x := m.(model)
	if x.err != nil {
		fmt.Println("error:", x.err)
	}
}
