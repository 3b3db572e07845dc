package cpu

// stringOpWidth reports the operand width a string-instruction opcode
// operates at -- MOVSB/CMPSB/STOSB/LODSB/SCASB are byte forms, every other
// string opcode is a word form.
func stringOpWidth(op Opcode) Width {
	switch op {
	case OpMovsb, OpCmpsb, OpStosb, OpLodsb, OpScasb:
		return Width8
	}
	return Width16
}

// stringDelta returns the per-iteration SI/DI step: 1 or 2 bytes, negated
// when DF is set.
func stringDelta(df bool, width Width) int32 {
	n := int32(1)
	if width == Width16 {
		n = 2
	}
	if df {
		return -n
	}
	return n
}

func (c *Cpu) getAcc(width Width) uint16 {
	if width == Width8 {
		return uint16(c.regs.AL())
	}
	return c.regs.AX()
}

func (c *Cpu) setAcc(width Width, v uint16) {
	if width == Width8 {
		c.regs.SetAL(byte(v))
	} else {
		c.regs.SetAX(v)
	}
}

// execString implements MOVS/CMPS/STOS/LODS/SCAS. Unlike the reference this
// is ported from, SI and DI are each advanced only when the instruction
// actually names that register: MOVS/CMPS step both, STOS/SCAS step only
// DI, and LODS steps only SI.
func (c *Cpu) execString(i Instruction) error {
	width := stringOpWidth(i.Op)
	delta := stringDelta(c.regs.Flags.DF(), width)
	srcSeg := c.effectiveDataSeg()

	readAt := func(addr uint32) uint16 {
		if width == Width8 {
			return uint16(c.mem.ReadU8At(addr))
		}
		return c.mem.ReadU16At(addr)
	}
	writeAt := func(addr uint32, v uint16) {
		if width == Width8 {
			c.mem.WriteU8At(addr, byte(v))
		} else {
			c.mem.WriteU16At(addr, v)
		}
	}

	switch i.Op {
	case OpMovsb, OpMovsw:
		srcAddr := (c.regs.SegmentBase(srcSeg) + uint32(c.regs.SI())) & 0xFFFFF
		dstAddr := (c.regs.SegmentBase(SegES) + uint32(c.regs.DI())) & 0xFFFFF
		writeAt(dstAddr, readAt(srcAddr))
		c.regs.SetSI(uint16(int32(c.regs.SI()) + delta))
		c.regs.SetDI(uint16(int32(c.regs.DI()) + delta))

	case OpCmpsb, OpCmpsw:
		srcAddr := (c.regs.SegmentBase(srcSeg) + uint32(c.regs.SI())) & 0xFFFFF
		dstAddr := (c.regs.SegmentBase(SegES) + uint32(c.regs.DI())) & 0xFFFFF
		a, b := readAt(srcAddr), readAt(dstAddr)
		c.execSub(Instruction{Width: width, Dest: ImmOperand(a, width), Src: ImmOperand(b, width)}, false, true)
		c.regs.SetSI(uint16(int32(c.regs.SI()) + delta))
		c.regs.SetDI(uint16(int32(c.regs.DI()) + delta))

	case OpStosb, OpStosw:
		dstAddr := (c.regs.SegmentBase(SegES) + uint32(c.regs.DI())) & 0xFFFFF
		writeAt(dstAddr, c.getAcc(width))
		c.regs.SetDI(uint16(int32(c.regs.DI()) + delta))

	case OpLodsb, OpLodsw:
		srcAddr := (c.regs.SegmentBase(srcSeg) + uint32(c.regs.SI())) & 0xFFFFF
		c.setAcc(width, readAt(srcAddr))
		c.regs.SetSI(uint16(int32(c.regs.SI()) + delta))

	case OpScasb, OpScasw:
		dstAddr := (c.regs.SegmentBase(SegES) + uint32(c.regs.DI())) & 0xFFFFF
		a := c.getAcc(width)
		b := readAt(dstAddr)
		c.execSub(Instruction{Width: width, Dest: ImmOperand(a, width), Src: ImmOperand(b, width)}, false, true)
		c.regs.SetDI(uint16(int32(c.regs.DI()) + delta))
	}
	return nil
}
