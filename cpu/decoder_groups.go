package cpu

import "fmt"

// decodeGroup32 decodes 0x80-0x83: immediate-to-reg/mem arithmetic, with
// the mod/reg/rm byte's reg field selecting the operation (ADD, OR, ADC,
// SBB, AND, SUB, XOR, CMP) rather than naming a register operand.
func (c *Cpu) decodeGroup32(tail byte) (Instruction, error) {
	b2 := c.mem.ReadU8()
	m := decodeModRM(b2)
	ops := [8]Opcode{OpAdd, OpOr, OpAdc, OpSbb, OpAnd, OpSub, OpXor, OpCmp}
	op := ops[m.reg]
	switch tail {
	case 0, 2:
		rm := c.resolveRM(m, Width8)
		imm := c.mem.ReadU8()
		return Instruction{Op: op, Width: Width8, Dest: rm, Src: ImmOperand(uint16(imm), Width8)}, nil
	case 1:
		rm := c.resolveRM(m, Width16)
		imm := c.mem.ReadU16()
		return Instruction{Op: op, Width: Width16, Dest: rm, Src: ImmOperand(imm, Width16)}, nil
	case 3:
		rm := c.resolveRM(m, Width16)
		imm := c.mem.ReadU8()
		return Instruction{Op: op, Width: Width16, Dest: rm, Src: ImmOperand(signExtend8To16(imm), Width16)}, nil
	}
	panic("cpu: unreachable group32 tail")
}

// decodeGroup33 decodes 0x84-0x87: TEST r/m,r (tail 0/1) and XCHG r/m,r
// (tail 2/3).
func (c *Cpu) decodeGroup33(tail byte) (Instruction, error) {
	width := w(tail & 1)
	b2 := c.mem.ReadU8()
	m := decodeModRM(b2)
	rm := c.resolveRM(m, width)
	reg := RegOperand(int(m.reg), width)
	op := OpTest
	if tail >= 2 {
		op = OpXchg
	}
	return Instruction{Op: op, Width: width, Dest: rm, Src: reg}, nil
}

// decodeGroup34 decodes 0x88-0x8B: MOV r/m <-> r in all four
// direction/width combinations.
func (c *Cpu) decodeGroup34(tail byte) (Instruction, error) {
	d := tail&2 != 0
	width := w(tail & 1)
	b2 := c.mem.ReadU8()
	m := decodeModRM(b2)
	rm := c.resolveRM(m, width)
	reg := RegOperand(int(m.reg), width)
	if d {
		return Instruction{Op: OpMov, Width: width, Dest: reg, Src: rm}, nil
	}
	return Instruction{Op: OpMov, Width: width, Dest: rm, Src: reg}, nil
}

// decodeGroup35 decodes 0x8C-0x8F: MOV r/m<-sreg, LEA, MOV sreg<-r/m, and
// POP r/m.
func (c *Cpu) decodeGroup35(tail byte) (Instruction, error) {
	b2 := c.mem.ReadU8()
	m := decodeModRM(b2)
	switch tail {
	case 0:
		rm := c.resolveRM(m, Width16)
		seg := Operand{Kind: OperandSeg, Reg: int(m.reg), Width: Width16}
		return Instruction{Op: OpMovSeg, Width: Width16, Dest: rm, Src: seg}, nil
	case 1:
		rm := c.resolveRM(m, Width16)
		reg := RegOperand(int(m.reg), Width16)
		return Instruction{Op: OpLea, Width: Width16, Dest: reg, Src: rm}, nil
	case 2:
		rm := c.resolveRM(m, Width16)
		seg := Operand{Kind: OperandSeg, Reg: int(m.reg), Width: Width16}
		return Instruction{Op: OpMovSeg, Width: Width16, Dest: seg, Src: rm}, nil
	case 3:
		rm := c.resolveRM(m, Width16)
		return Instruction{Op: OpPop, Width: Width16, Dest: rm}, nil
	}
	panic("cpu: unreachable group35 tail")
}

// decodeGroup40 decodes 0xA0-0xA3: MOV AL/AX <-> [offset], the direct-
// offset memory form, default segment DS (overridable).
func (c *Cpu) decodeGroup40(tail byte) (Instruction, error) {
	offset := c.mem.ReadU16()
	seg := SegDS
	if c.hasSegOverride {
		seg = c.segOverride
	}
	addr := (c.regs.SegmentBase(seg) + uint32(offset)) & 0xFFFFF
	width := w(tail & 1)
	memOp := Operand{Kind: OperandMem, Width: width, Addr: addr, Off: offset}
	accReg := RegAX
	if width == Width8 {
		accReg = RegAL
	}
	acc := RegOperand(accReg, width)
	if tail <= 1 {
		return Instruction{Op: OpMov, Width: width, Dest: acc, Src: memOp}, nil
	}
	return Instruction{Op: OpMov, Width: width, Dest: memOp, Src: acc}, nil
}

// decodeGroup49 decodes LES/LDS (0xC4/0xC5): load a register and a segment
// register from a 32-bit far pointer in memory.
func (c *Cpu) decodeGroup49(op Opcode) (Instruction, error) {
	b2 := c.mem.ReadU8()
	m := decodeModRM(b2)
	rm := c.resolveRM(m, Width16)
	reg := RegOperand(int(m.reg), Width16)
	return Instruction{Op: op, Width: Width16, Dest: reg, Src: rm}, nil
}

// decodeGroup49Mov decodes MOV r/m,imm (0xC6/0xC7).
func (c *Cpu) decodeGroup49Mov(width Width) (Instruction, error) {
	b2 := c.mem.ReadU8()
	m := decodeModRM(b2)
	rm := c.resolveRM(m, width)
	var imm uint16
	if width == Width8 {
		imm = uint16(c.mem.ReadU8())
	} else {
		imm = c.mem.ReadU16()
	}
	return Instruction{Op: OpMov, Width: width, Dest: rm, Src: ImmOperand(imm, width)}, nil
}

// decodeGroup52 decodes 0xD0-0xD3: the rotate/shift group, keyed on the
// mod/reg/rm byte's reg field, by a count of 1 (tail 0/1) or CL (tail 2/3).
func (c *Cpu) decodeGroup52(tail byte) (Instruction, error) {
	width := w(tail & 1)
	b2 := c.mem.ReadU8()
	m := decodeModRM(b2)
	rm := c.resolveRM(m, width)
	ops := [8]Opcode{OpRol, OpRor, OpRcl, OpRcr, OpShl, OpShr, OpShl, OpSar}
	op := ops[m.reg]
	count := ImmOperand(1, Width8)
	if tail >= 2 {
		count = RegOperand(RegCL, Width8)
	}
	return Instruction{Op: op, Width: width, Dest: rm, Src: count}, nil
}

// decodeGroup3 decodes 0xF6/0xF7: TEST r/m,imm; NOT; NEG; MUL; IMUL; DIV;
// IDIV, keyed on the mod/reg/rm byte's reg field.
func (c *Cpu) decodeGroup3(width Width) (Instruction, error) {
	b2 := c.mem.ReadU8()
	m := decodeModRM(b2)
	rm := c.resolveRM(m, width)
	switch m.reg {
	case 0, 1:
		var imm uint16
		if width == Width8 {
			imm = uint16(c.mem.ReadU8())
		} else {
			imm = c.mem.ReadU16()
		}
		return Instruction{Op: OpTest, Width: width, Dest: rm, Src: ImmOperand(imm, width)}, nil
	case 2:
		return Instruction{Op: OpNot, Width: width, Dest: rm}, nil
	case 3:
		return Instruction{Op: OpNeg, Width: width, Dest: rm}, nil
	case 4:
		return Instruction{Op: OpMul, Width: width, Dest: rm}, nil
	case 5:
		return Instruction{Op: OpImul, Width: width, Dest: rm}, nil
	case 6:
		return Instruction{Op: OpDiv, Width: width, Dest: rm}, nil
	case 7:
		return Instruction{Op: OpIdiv, Width: width, Dest: rm}, nil
	}
	panic("cpu: unreachable group3 reg field")
}

// decodeGroup4 decodes 0xFE: INC/DEC r/m8. Any other reg field is an
// unrecognized sub-field, a fatal decode error per spec.md §4.C.
func (c *Cpu) decodeGroup4() (Instruction, error) {
	b2 := c.mem.ReadU8()
	m := decodeModRM(b2)
	rm := c.resolveRM(m, Width8)
	switch m.reg {
	case 0:
		return Instruction{Op: OpInc, Width: Width8, Dest: rm}, nil
	case 1:
		return Instruction{Op: OpDec, Width: Width8, Dest: rm}, nil
	}
	return Instruction{}, fmt.Errorf("cpu: unrecognized group-4 reg field %d", m.reg)
}

// decodeGroup5 decodes 0xFF: INC/DEC/CALL/JMP/PUSH r/m16. Reg field 7 is
// unassigned and is a fatal decode error.
func (c *Cpu) decodeGroup5() (Instruction, error) {
	b2 := c.mem.ReadU8()
	m := decodeModRM(b2)
	rm := c.resolveRM(m, Width16)
	switch m.reg {
	case 0:
		return Instruction{Op: OpInc, Width: Width16, Dest: rm}, nil
	case 1:
		return Instruction{Op: OpDec, Width: Width16, Dest: rm}, nil
	case 2:
		return Instruction{Op: OpCallNearRM, Width: Width16, Dest: rm}, nil
	case 3:
		return Instruction{Op: OpCallFarRM, Width: Width16, Dest: rm}, nil
	case 4:
		return Instruction{Op: OpJmpNearRM, Width: Width16, Dest: rm}, nil
	case 5:
		return Instruction{Op: OpJmpFarRM, Width: Width16, Dest: rm}, nil
	case 6:
		return Instruction{Op: OpPush, Width: Width16, Dest: rm}, nil
	}
	return Instruction{}, fmt.Errorf("cpu: unrecognized group-5 reg field %d", m.reg)
}
