package cpu

// Register indices, encoded exactly as the 8086 `reg` and `rm` fields name
// them. The 16-bit and 8-bit tables are distinct: Reg16 index 4 is SP, but
// Reg8 index 4 is AH.
const (
	RegAX = 0
	RegCX = 1
	RegDX = 2
	RegBX = 3
	RegSP = 4
	RegBP = 5
	RegSI = 6
	RegDI = 7
)

const (
	RegAL = 0
	RegCL = 1
	RegDL = 2
	RegBL = 3
	RegAH = 4
	RegCH = 5
	RegDH = 6
	RegBH = 7
)

// Segment register indices, as encoded in the 2-bit sreg field.
const (
	SegES = 0
	SegCS = 1
	SegSS = 2
	SegDS = 3
)

// Flags bit positions within the packed FLAGS word.
const (
	bitCF = 0
	bitPF = 2
	bitAF = 4
	bitZF = 6
	bitSF = 7
	bitTF = 8
	bitIF = 9
	bitDF = 10
	bitOF = 11
)

// Flags is the packed 16-bit FLAGS register. Bit 1 is always 1; all other
// reserved bits are kept at zero. Flags are never modeled as a general
// "flags model" object with generic get/set-by-name -- every handler in the
// execution engine sets the bits it cares about directly through the
// per-flag accessors below. The width-specific helpers in flags.go are
// free functions over plain values and do not use this type.
type Flags struct {
	bits uint16
}

// NewFlags returns a FLAGS word with only the reserved bit 1 set, matching
// the 8086 reset vector (spec.md's initial FLAGS = 0x0002).
func NewFlags() Flags {
	return Flags{bits: 1 << 1}
}

func (f *Flags) get(bit uint) bool {
	return f.bits&(1<<bit) != 0
}

func (f *Flags) set(bit uint, v bool) {
	if v {
		f.bits |= 1 << bit
	} else {
		f.bits &^= 1 << bit
	}
}

func (f *Flags) CF() bool      { return f.get(bitCF) }
func (f *Flags) SetCF(v bool)  { f.set(bitCF, v) }
func (f *Flags) PF() bool      { return f.get(bitPF) }
func (f *Flags) SetPF(v bool)  { f.set(bitPF, v) }
func (f *Flags) AF() bool      { return f.get(bitAF) }
func (f *Flags) SetAF(v bool)  { f.set(bitAF, v) }
func (f *Flags) ZF() bool      { return f.get(bitZF) }
func (f *Flags) SetZF(v bool)  { f.set(bitZF, v) }
func (f *Flags) SF() bool      { return f.get(bitSF) }
func (f *Flags) SetSF(v bool)  { f.set(bitSF, v) }
func (f *Flags) TF() bool      { return f.get(bitTF) }
func (f *Flags) SetTF(v bool)  { f.set(bitTF, v) }
func (f *Flags) IF() bool      { return f.get(bitIF) }
func (f *Flags) SetIF(v bool)  { f.set(bitIF, v) }
func (f *Flags) DF() bool      { return f.get(bitDF) }
func (f *Flags) SetDF(v bool)  { f.set(bitDF, v) }
func (f *Flags) OF() bool      { return f.get(bitOF) }
func (f *Flags) SetOF(v bool)  { f.set(bitOF, v) }

// ClearArith clears CF, AF, SF, ZF, OF and PF together. DF, IF and TF are
// untouched -- they are control flags, not arithmetic-result flags.
func (f *Flags) ClearArith() {
	f.SetCF(false)
	f.SetAF(false)
	f.SetSF(false)
	f.SetZF(false)
	f.SetOF(false)
	f.SetPF(false)
}

// Word returns the full 16-bit FLAGS value, for PUSHF.
func (f *Flags) Word() uint16 {
	return f.bits | (1 << 1)
}

// SetWord loads the full 16-bit FLAGS value, for POPF/IRET, forcing the
// reserved bit 1 back to 1.
func (f *Flags) SetWord(v uint16) {
	f.bits = v | (1 << 1)
}

// Registers holds the 8086's architectural register file: the four
// general-purpose 16-bit registers (with byte-half aliasing), the four
// index/pointer registers, the four segment registers, IP, and FLAGS.
type Registers struct {
	ax, cx, dx, bx uint16
	sp, bp, si, di uint16
	es, cs, ss, ds uint16
	ip             uint16
	Flags          Flags
}

// NewRegisters returns a Registers set to the emulator's fixed reset vector:
// CS=DS=ES=0, SS linearized to 0x1000, SP=0x0FFF, IP=0, FLAGS=0x0002.
func NewRegisters() *Registers {
	r := &Registers{
		sp:    0x0FFF,
		Flags: NewFlags(),
	}
	r.SetSegmentLinear(SegSS, 0x1000)
	return r
}

// --- 16-bit general-purpose accessors ---

func (r *Registers) AX() uint16     { return r.ax }
func (r *Registers) SetAX(v uint16) { r.ax = v }
func (r *Registers) CX() uint16     { return r.cx }
func (r *Registers) SetCX(v uint16) { r.cx = v }
func (r *Registers) DX() uint16     { return r.dx }
func (r *Registers) SetDX(v uint16) { r.dx = v }
func (r *Registers) BX() uint16     { return r.bx }
func (r *Registers) SetBX(v uint16) { r.bx = v }

func (r *Registers) SP() uint16     { return r.sp }
func (r *Registers) SetSP(v uint16) { r.sp = v }
func (r *Registers) BP() uint16     { return r.bp }
func (r *Registers) SetBP(v uint16) { r.bp = v }
func (r *Registers) SI() uint16     { return r.si }
func (r *Registers) SetSI(v uint16) { r.si = v }
func (r *Registers) DI() uint16     { return r.di }
func (r *Registers) SetDI(v uint16) { r.di = v }

func (r *Registers) IP() uint16     { return r.ip }
func (r *Registers) SetIP(v uint16) { r.ip = v }

// --- byte-half accessors; each setter preserves the other half ---

func (r *Registers) AL() byte { return byte(r.ax) }
func (r *Registers) AH() byte { return byte(r.ax >> 8) }
func (r *Registers) SetAL(v byte) { r.ax = (r.ax &^ 0xFF) | uint16(v) }
func (r *Registers) SetAH(v byte) { r.ax = (r.ax & 0xFF) | uint16(v)<<8 }

func (r *Registers) CL() byte { return byte(r.cx) }
func (r *Registers) CH() byte { return byte(r.cx >> 8) }
func (r *Registers) SetCL(v byte) { r.cx = (r.cx &^ 0xFF) | uint16(v) }
func (r *Registers) SetCH(v byte) { r.cx = (r.cx & 0xFF) | uint16(v)<<8 }

func (r *Registers) DL() byte { return byte(r.dx) }
func (r *Registers) DH() byte { return byte(r.dx >> 8) }
func (r *Registers) SetDL(v byte) { r.dx = (r.dx &^ 0xFF) | uint16(v) }
func (r *Registers) SetDH(v byte) { r.dx = (r.dx & 0xFF) | uint16(v)<<8 }

func (r *Registers) BL() byte { return byte(r.bx) }
func (r *Registers) BH() byte { return byte(r.bx >> 8) }
func (r *Registers) SetBL(v byte) { r.bx = (r.bx &^ 0xFF) | uint16(v) }
func (r *Registers) SetBH(v byte) { r.bx = (r.bx & 0xFF) | uint16(v)<<8 }

// GetReg16 fetches a 16-bit general-purpose register by its 8086 `reg`/`rm`
// encoding (0=AX,1=CX,2=DX,3=BX,4=SP,5=BP,6=SI,7=DI).
func (r *Registers) GetReg16(idx int) uint16 {
	switch idx {
	case RegAX:
		return r.ax
	case RegCX:
		return r.cx
	case RegDX:
		return r.dx
	case RegBX:
		return r.bx
	case RegSP:
		return r.sp
	case RegBP:
		return r.bp
	case RegSI:
		return r.si
	case RegDI:
		return r.di
	}
	panic("cpu: invalid 16-bit register index")
}

// SetReg16 is the setter counterpart of GetReg16.
func (r *Registers) SetReg16(idx int, v uint16) {
	switch idx {
	case RegAX:
		r.ax = v
	case RegCX:
		r.cx = v
	case RegDX:
		r.dx = v
	case RegBX:
		r.bx = v
	case RegSP:
		r.sp = v
	case RegBP:
		r.bp = v
	case RegSI:
		r.si = v
	case RegDI:
		r.di = v
	default:
		panic("cpu: invalid 16-bit register index")
	}
}

// GetReg8 fetches an 8-bit register half by its 8086 `reg`/`rm` encoding
// (0=AL,1=CL,2=DL,3=BL,4=AH,5=CH,6=DH,7=BH).
func (r *Registers) GetReg8(idx int) byte {
	switch idx {
	case RegAL:
		return r.AL()
	case RegCL:
		return r.CL()
	case RegDL:
		return r.DL()
	case RegBL:
		return r.BL()
	case RegAH:
		return r.AH()
	case RegCH:
		return r.CH()
	case RegDH:
		return r.DH()
	case RegBH:
		return r.BH()
	}
	panic("cpu: invalid 8-bit register index")
}

// SetReg8 is the setter counterpart of GetReg8.
func (r *Registers) SetReg8(idx int, v byte) {
	switch idx {
	case RegAL:
		r.SetAL(v)
	case RegCL:
		r.SetCL(v)
	case RegDL:
		r.SetDL(v)
	case RegBL:
		r.SetBL(v)
	case RegAH:
		r.SetAH(v)
	case RegCH:
		r.SetCH(v)
	case RegDH:
		r.SetDH(v)
	case RegBH:
		r.SetBH(v)
	default:
		panic("cpu: invalid 8-bit register index")
	}
}

// GetSeg fetches a segment register's raw 16-bit value by its 2-bit sreg
// encoding (0=ES,1=CS,2=SS,3=DS).
func (r *Registers) GetSeg(idx int) uint16 {
	switch idx {
	case SegES:
		return r.es
	case SegCS:
		return r.cs
	case SegSS:
		return r.ss
	case SegDS:
		return r.ds
	}
	panic("cpu: invalid segment register index")
}

// SetSeg loads a segment register directly from a 16-bit value (e.g. `MOV
// sreg, r/m16`). No alignment is required here -- the value is the
// architectural segment, not a linear address.
func (r *Registers) SetSeg(idx int, v uint16) {
	switch idx {
	case SegES:
		r.es = v
	case SegCS:
		r.cs = v
	case SegSS:
		r.ss = v
	case SegDS:
		r.ds = v
	default:
		panic("cpu: invalid segment register index")
	}
}

// SegmentBase returns the 20-bit physical base address of a segment
// register: (seg << 4).
func (r *Registers) SegmentBase(idx int) uint32 {
	return uint32(r.GetSeg(idx)) << 4
}

// SetSegmentLinear sets a segment register from an already-linearized
// physical address, which must be 16-byte aligned. This is a programming
// error in the emulator itself, not a runtime fault of the emulated
// program, so it panics rather than returning an error -- callers only
// ever invoke it with compile-time-known reset-vector constants.
func (r *Registers) SetSegmentLinear(idx int, linear uint32) {
	if linear%16 != 0 {
		panic("cpu: segment linear address must be 16-byte aligned")
	}
	r.SetSeg(idx, uint16(linear>>4))
}
