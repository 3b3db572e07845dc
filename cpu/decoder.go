package cpu

import (
	"fmt"

	"go8086/mask"
)

// Width distinguishes 8-bit and 16-bit operand forms, selected by the
// 8086 `w` bit almost everywhere in the instruction set.
type Width int

const (
	Width8 Width = iota
	Width16
)

// OperandKind tags what an Operand actually names.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandReg              // general-purpose register, Reg is a RegAX..RegDI/RegAL..RegBH index
	OperandSeg              // segment register, Reg is a SegES..SegDS index
	OperandMem              // memory, Addr is the resolved physical address, Off is the pre-segmentation offset
	OperandImm              // immediate, Imm holds the (possibly sign-extended) value
)

// Operand is the uniform shape every instruction handler reads and writes
// through. A memory operand carries both the resolved 20-bit physical
// address and the 16-bit pre-segmentation effective offset, because LEA
// needs the offset without ever dereferencing memory.
type Operand struct {
	Kind  OperandKind
	Width Width
	Reg   int
	Addr  uint32
	Off   uint16
	Imm   uint16
}

// RegOperand builds a register operand.
func RegOperand(reg int, w Width) Operand {
	return Operand{Kind: OperandReg, Reg: reg, Width: w}
}

// ImmOperand builds an immediate operand.
func ImmOperand(v uint16, w Width) Operand {
	return Operand{Kind: OperandImm, Imm: v, Width: w}
}

// Opcode tags the ~110 decoded instruction forms. Operands are carried
// alongside on the Instruction, not as part of the tag, so the dispatch
// table in exec.go stays a flat switch rather than a type hierarchy.
type Opcode int

const (
	OpAdd Opcode = iota
	OpOr
	OpAdc
	OpSbb
	OpAnd
	OpSub
	OpXor
	OpCmp
	OpTest
	OpMov
	OpMovSeg
	OpLea
	OpXchg
	OpCbw
	OpCwd
	OpCallFarDirect
	OpWait
	OpPushf
	OpPopf
	OpSahf
	OpLahf
	OpMovsb
	OpMovsw
	OpCmpsb
	OpCmpsw
	OpStosb
	OpStosw
	OpLodsb
	OpLodsw
	OpScasb
	OpScasw
	OpRetNear
	OpLes
	OpLds
	OpRetFar
	OpInt3
	OpInt
	OpInto
	OpIret
	OpRol
	OpRor
	OpRcl
	OpRcr
	OpShl
	OpShr
	OpSar
	OpAam
	OpAad
	OpXlat
	OpLoopne
	OpLoope
	OpLoop
	OpJcxz
	OpIn
	OpOut
	OpCallNearRel
	OpJmpNearRel
	OpJmpFarDirect
	OpJmpShort
	OpLock
	OpRepne
	OpRep
	OpHlt
	OpCmc
	OpNot
	OpNeg
	OpMul
	OpImul
	OpDiv
	OpIdiv
	OpClc
	OpStc
	OpCli
	OpSti
	OpCld
	OpStd
	OpInc
	OpDec
	OpPush
	OpPop
	OpCallNearRM
	OpCallFarRM
	OpJmpNearRM
	OpJmpFarRM
	OpJcc
	OpDaa
	OpDas
	OpAaa
	OpAas
	OpOverrideSeg
	OpNop
)

// Instruction is the decoder's output: a tagged opcode plus up to two
// operands. It never outlives a single fetch-execute step.
type Instruction struct {
	Op    Opcode
	Width Width
	Dest  Operand
	Src   Operand
	Cond  int // meaningful only for OpJcc
	Seg   int // meaningful only for OpOverrideSeg; OpMovSeg carries its segment in an OperandSeg operand
	Rel   int32
}

func w(bit byte) Width {
	if bit == 0 {
		return Width8
	}
	return Width16
}

// modRM describes the second instruction byte: mod (addressing category),
// reg (register operand or opcode-extension field), rm (memory/register
// operand selector). This mirrors the reference emulator's Byte2 bit
// accessor, expressed as a plain decomposed value instead of a bitfield
// method set.
type modRM struct {
	mod, reg, rm byte
}

func decodeModRM(b byte) modRM {
	return modRM{
		mod: mask.Range(b, mask.I1, mask.I2),
		reg: mask.Range(b, mask.I3, mask.I5),
		rm:  mask.Range(b, mask.I6, mask.I8),
	}
}

// decodeNext reads one instruction from the memory cursor, which must
// already be positioned at the physical address of CS:IP. It consumes
// exactly the bytes the instruction requires; the caller is responsible
// for turning the cursor's new position back into an IP value.
func (c *Cpu) decodeNext() (Instruction, error) {
	b1 := c.mem.ReadU8()
	group := b1 >> 2
	tail := b1 & 3

	switch {
	case b1 <= 0x3F && group%2 == 0:
		return c.decodeAluGroupEven(group, tail)
	case b1 <= 0x3F && group%2 == 1:
		return c.decodeAluGroupOdd(group, tail)
	case b1 >= 0x40 && b1 <= 0x47:
		return Instruction{Op: OpInc, Width: Width16, Dest: RegOperand(int(b1&7), Width16)}, nil
	case b1 >= 0x48 && b1 <= 0x4F:
		return Instruction{Op: OpDec, Width: Width16, Dest: RegOperand(int(b1&7), Width16)}, nil
	case b1 >= 0x50 && b1 <= 0x57:
		return Instruction{Op: OpPush, Width: Width16, Dest: RegOperand(int(b1&7), Width16)}, nil
	case b1 >= 0x58 && b1 <= 0x5F:
		return Instruction{Op: OpPop, Width: Width16, Dest: RegOperand(int(b1&7), Width16)}, nil
	case b1 >= 0x70 && b1 <= 0x7F:
		rel := int8(c.mem.ReadU8())
		return Instruction{Op: OpJcc, Cond: int(b1 - 0x70), Rel: int32(rel)}, nil
	case b1 >= 0x80 && b1 <= 0x83:
		return c.decodeGroup32(tail)
	case b1 >= 0x84 && b1 <= 0x87:
		return c.decodeGroup33(tail)
	case b1 >= 0x88 && b1 <= 0x8B:
		return c.decodeGroup34(tail)
	case b1 >= 0x8C && b1 <= 0x8F:
		return c.decodeGroup35(tail)
	case b1 >= 0x90 && b1 <= 0x97:
		if b1 == 0x90 {
			return Instruction{Op: OpNop}, nil
		}
		return Instruction{Op: OpXchg, Width: Width16, Dest: RegOperand(RegAX, Width16), Src: RegOperand(int(b1&7), Width16)}, nil
	case b1 == 0x98:
		return Instruction{Op: OpCbw}, nil
	case b1 == 0x99:
		return Instruction{Op: OpCwd}, nil
	case b1 == 0x9A:
		off := c.mem.ReadU16()
		seg := c.mem.ReadU16()
		return Instruction{Op: OpCallFarDirect, Dest: ImmOperand(off, Width16), Src: ImmOperand(seg, Width16)}, nil
	case b1 == 0x9B:
		return Instruction{Op: OpWait}, nil
	case b1 == 0x9C:
		return Instruction{Op: OpPushf}, nil
	case b1 == 0x9D:
		return Instruction{Op: OpPopf}, nil
	case b1 == 0x9E:
		return Instruction{Op: OpSahf}, nil
	case b1 == 0x9F:
		return Instruction{Op: OpLahf}, nil
	case b1 >= 0xA0 && b1 <= 0xA3:
		return c.decodeGroup40(tail)
	case b1 == 0xA4:
		return Instruction{Op: OpMovsb}, nil
	case b1 == 0xA5:
		return Instruction{Op: OpMovsw}, nil
	case b1 == 0xA6:
		return Instruction{Op: OpCmpsb}, nil
	case b1 == 0xA7:
		return Instruction{Op: OpCmpsw}, nil
	case b1 == 0xA8:
		imm := c.mem.ReadU8()
		return Instruction{Op: OpTest, Width: Width8, Dest: RegOperand(RegAL, Width8), Src: ImmOperand(uint16(imm), Width8)}, nil
	case b1 == 0xA9:
		imm := c.mem.ReadU16()
		return Instruction{Op: OpTest, Width: Width16, Dest: RegOperand(RegAX, Width16), Src: ImmOperand(imm, Width16)}, nil
	case b1 == 0xAA:
		return Instruction{Op: OpStosb}, nil
	case b1 == 0xAB:
		return Instruction{Op: OpStosw}, nil
	case b1 == 0xAC:
		return Instruction{Op: OpLodsb}, nil
	case b1 == 0xAD:
		return Instruction{Op: OpLodsw}, nil
	case b1 == 0xAE:
		return Instruction{Op: OpScasb}, nil
	case b1 == 0xAF:
		return Instruction{Op: OpScasw}, nil
	case b1 >= 0xB0 && b1 <= 0xB7:
		imm := c.mem.ReadU8()
		return Instruction{Op: OpMov, Width: Width8, Dest: RegOperand(int(b1&7), Width8), Src: ImmOperand(uint16(imm), Width8)}, nil
	case b1 >= 0xB8 && b1 <= 0xBF:
		imm := c.mem.ReadU16()
		return Instruction{Op: OpMov, Width: Width16, Dest: RegOperand(int(b1&7), Width16), Src: ImmOperand(imm, Width16)}, nil
	case b1 == 0xC2:
		imm := c.mem.ReadU16()
		return Instruction{Op: OpRetNear, Src: ImmOperand(imm, Width16)}, nil
	case b1 == 0xC3:
		return Instruction{Op: OpRetNear}, nil
	case b1 == 0xC4:
		return c.decodeGroup49(OpLes)
	case b1 == 0xC5:
		return c.decodeGroup49(OpLds)
	case b1 == 0xC6:
		return c.decodeGroup49Mov(Width8)
	case b1 == 0xC7:
		return c.decodeGroup49Mov(Width16)
	case b1 == 0xCA:
		imm := c.mem.ReadU16()
		return Instruction{Op: OpRetFar, Src: ImmOperand(imm, Width16)}, nil
	case b1 == 0xCB:
		return Instruction{Op: OpRetFar}, nil
	case b1 == 0xCC:
		return Instruction{Op: OpInt3}, nil
	case b1 == 0xCD:
		imm := c.mem.ReadU8()
		return Instruction{Op: OpInt, Src: ImmOperand(uint16(imm), Width8)}, nil
	case b1 == 0xCE:
		return Instruction{Op: OpInto}, nil
	case b1 == 0xCF:
		return Instruction{Op: OpIret}, nil
	case b1 >= 0xD0 && b1 <= 0xD3:
		return c.decodeGroup52(tail)
	case b1 == 0xD4:
		_ = c.mem.ReadU8() // literal base, conventionally 0x0A
		return Instruction{Op: OpAam}, nil
	case b1 == 0xD5:
		_ = c.mem.ReadU8()
		return Instruction{Op: OpAad}, nil
	case b1 == 0xD7:
		return Instruction{Op: OpXlat}, nil
	case b1 >= 0xE0 && b1 <= 0xE3:
		rel := int8(c.mem.ReadU8())
		ops := [4]Opcode{OpLoopne, OpLoope, OpLoop, OpJcxz}
		return Instruction{Op: ops[tail], Rel: int32(rel)}, nil
	case b1 >= 0xE4 && b1 <= 0xE7:
		port := c.mem.ReadU8()
		width := w(tail & 1)
		if tail <= 1 {
			return Instruction{Op: OpIn, Width: width, Dest: RegOperand(RegAX, width), Src: ImmOperand(uint16(port), Width8)}, nil
		}
		return Instruction{Op: OpOut, Width: width, Dest: ImmOperand(uint16(port), Width8), Src: RegOperand(RegAX, width)}, nil
	case b1 == 0xE8:
		rel := int16(c.mem.ReadU16())
		return Instruction{Op: OpCallNearRel, Rel: int32(rel)}, nil
	case b1 == 0xE9:
		rel := int16(c.mem.ReadU16())
		return Instruction{Op: OpJmpNearRel, Rel: int32(rel)}, nil
	case b1 == 0xEA:
		off := c.mem.ReadU16()
		seg := c.mem.ReadU16()
		return Instruction{Op: OpJmpFarDirect, Dest: ImmOperand(off, Width16), Src: ImmOperand(seg, Width16)}, nil
	case b1 == 0xEB:
		rel := int8(c.mem.ReadU8())
		return Instruction{Op: OpJmpShort, Rel: int32(rel)}, nil
	case b1 >= 0xEC && b1 <= 0xEF:
		width := w(tail & 1)
		if tail <= 1 {
			return Instruction{Op: OpIn, Width: width, Dest: RegOperand(RegAX, width), Src: RegOperand(RegDX, Width16)}, nil
		}
		return Instruction{Op: OpOut, Width: width, Dest: RegOperand(RegDX, Width16), Src: RegOperand(RegAX, width)}, nil
	case b1 == 0xF0:
		return Instruction{Op: OpLock}, nil
	case b1 == 0xF2:
		return Instruction{Op: OpRepne}, nil
	case b1 == 0xF3:
		return Instruction{Op: OpRep}, nil
	case b1 == 0xF4:
		return Instruction{Op: OpHlt}, nil
	case b1 == 0xF5:
		return Instruction{Op: OpCmc}, nil
	case b1 == 0xF6:
		return c.decodeGroup3(Width8)
	case b1 == 0xF7:
		return c.decodeGroup3(Width16)
	case b1 == 0xF8:
		return Instruction{Op: OpClc}, nil
	case b1 == 0xF9:
		return Instruction{Op: OpStc}, nil
	case b1 == 0xFA:
		return Instruction{Op: OpCli}, nil
	case b1 == 0xFB:
		return Instruction{Op: OpSti}, nil
	case b1 == 0xFC:
		return Instruction{Op: OpCld}, nil
	case b1 == 0xFD:
		return Instruction{Op: OpStd}, nil
	case b1 == 0xFE:
		return c.decodeGroup4()
	case b1 == 0xFF:
		return c.decodeGroup5()
	}

	return Instruction{}, fmt.Errorf("cpu: unrecognized opcode byte 0x%02X at decode", b1)
}

// aluOpFor maps a primary opcode group (0..15) to its ALU operation. Each
// pair of adjacent groups (one even, one odd) shares an operation: group 0
// is the `ADD r/m,r` family, group 1 is `ADD AL/AX,imm` plus PUSH/POP ES;
// integer division by 2 lands both on the same index.
func aluOpFor(group byte) Opcode {
	return [8]Opcode{OpAdd, OpOr, OpAdc, OpSbb, OpAnd, OpSub, OpXor, OpCmp}[group/2]
}

// decodeAluGroupEven decodes groups 0,2,4,6,8,10,12,14: `op r/m, r` in all
// four direction/width combinations, with tail carrying the 8086 `d`
// (direction, bit 1) and `w` (width, bit 0) bits.
func (c *Cpu) decodeAluGroupEven(group byte, tail byte) (Instruction, error) {
	op := aluOpFor(group)
	d := tail&2 != 0
	width := w(tail & 1)
	b2 := c.mem.ReadU8()
	m := decodeModRM(b2)
	rm := c.resolveRM(m, width)
	reg := RegOperand(int(m.reg), width)
	if d {
		return Instruction{Op: op, Width: width, Dest: reg, Src: rm}, nil
	}
	return Instruction{Op: op, Width: width, Dest: rm, Src: reg}, nil
}

// decodeAluGroupOdd decodes groups 1,3,5,7,9,11,13,15: immediate-to-
// accumulator arithmetic (tail 0/1), and either push/pop of a segment
// register, a segment-override prefix, or a BCD adjust instruction at
// tail 2/3, depending on which of the eight odd groups this is.
func (c *Cpu) decodeAluGroupOdd(group byte, tail byte) (Instruction, error) {
	op := aluOpFor(group)
	switch tail {
	case 0:
		imm := c.mem.ReadU8()
		return Instruction{Op: op, Width: Width8, Dest: RegOperand(RegAL, Width8), Src: ImmOperand(uint16(imm), Width8)}, nil
	case 1:
		imm := c.mem.ReadU16()
		return Instruction{Op: op, Width: Width16, Dest: RegOperand(RegAX, Width16), Src: ImmOperand(imm, Width16)}, nil
	case 2:
		switch group {
		case 1:
			return Instruction{Op: OpPush, Dest: Operand{Kind: OperandSeg, Reg: SegES, Width: Width16}}, nil
		case 3:
			return Instruction{Op: OpPush, Dest: Operand{Kind: OperandSeg, Reg: SegCS, Width: Width16}}, nil
		case 5:
			return Instruction{Op: OpPush, Dest: Operand{Kind: OperandSeg, Reg: SegSS, Width: Width16}}, nil
		case 7:
			return Instruction{Op: OpPush, Dest: Operand{Kind: OperandSeg, Reg: SegDS, Width: Width16}}, nil
		case 9:
			return Instruction{Op: OpOverrideSeg, Seg: SegES}, nil
		case 11:
			return Instruction{Op: OpOverrideSeg, Seg: SegCS}, nil
		case 13:
			return Instruction{Op: OpOverrideSeg, Seg: SegSS}, nil
		case 15:
			return Instruction{Op: OpOverrideSeg, Seg: SegDS}, nil
		}
	case 3:
		switch group {
		case 1:
			return Instruction{Op: OpPop, Dest: Operand{Kind: OperandSeg, Reg: SegES, Width: Width16}}, nil
		case 3:
			return Instruction{Op: OpPop, Dest: Operand{Kind: OperandSeg, Reg: SegCS, Width: Width16}}, nil
		case 5:
			return Instruction{Op: OpPop, Dest: Operand{Kind: OperandSeg, Reg: SegSS, Width: Width16}}, nil
		case 7:
			return Instruction{Op: OpPop, Dest: Operand{Kind: OperandSeg, Reg: SegDS, Width: Width16}}, nil
		case 9:
			return Instruction{Op: OpDaa}, nil
		case 11:
			return Instruction{Op: OpDas}, nil
		case 13:
			return Instruction{Op: OpAaa}, nil
		case 15:
			return Instruction{Op: OpAas}, nil
		}
	}
	return Instruction{}, fmt.Errorf("cpu: unreachable alu-odd decode for group %d tail %d", group, tail)
}

func evalCondition(f *Flags, cond int) bool {
	switch cond {
	case 0:
		return f.OF()
	case 1:
		return !f.OF()
	case 2:
		return f.CF()
	case 3:
		return !f.CF()
	case 4:
		return f.ZF()
	case 5:
		return !f.ZF()
	case 6:
		return f.CF() || f.ZF()
	case 7:
		return !f.CF() && !f.ZF()
	case 8:
		return f.SF()
	case 9:
		return !f.SF()
	case 10:
		return f.PF()
	case 11:
		return !f.PF()
	case 12:
		return f.SF() != f.OF()
	case 13:
		return f.SF() == f.OF()
	case 14:
		return f.ZF() || (f.SF() != f.OF())
	case 15:
		// JG/JNLE: the two's-complement "greater" condition is a logical
		// AND of "not equal" and "SF == OF", not an OR.
		return !f.ZF() && (f.SF() == f.OF())
	}
	panic("cpu: invalid condition code")
}
