package cpu

// effectiveOffset computes the 16-bit pre-segmentation offset named by a
// mod/reg/rm byte's mod and rm fields (mod must not be 3 -- that case is a
// register operand, handled by the caller), along with the segment that
// addressing form defaults to absent an active override.
//
// This is the base-index table from spec.md §4.D: BX+SI, BX+DI, BP+SI,
// BP+DI, SI, DI, disp16-direct (mod=0,rm=6 only), BX. Forms that use BP
// default to SS; every other form defaults to DS.
func (c *Cpu) effectiveOffset(m modRM) (offset uint16, defaultSeg int) {
	r := c.regs
	switch m.rm {
	case 0:
		offset, defaultSeg = r.BX()+r.SI(), SegDS
	case 1:
		offset, defaultSeg = r.BX()+r.DI(), SegDS
	case 2:
		offset, defaultSeg = r.BP()+r.SI(), SegSS
	case 3:
		offset, defaultSeg = r.BP()+r.DI(), SegSS
	case 4:
		offset, defaultSeg = r.SI(), SegDS
	case 5:
		offset, defaultSeg = r.DI(), SegDS
	case 6:
		if m.mod == 0 {
			// mod=0, rm=6 is the lone exception: a direct 16-bit offset,
			// not a base register, with no further displacement to add.
			return c.mem.ReadU16(), SegDS
		}
		offset, defaultSeg = r.BP(), SegSS
	case 7:
		offset, defaultSeg = r.BX(), SegDS
	}

	switch m.mod {
	case 1:
		// 8-bit displacements are sign-extended to 16 bits before being
		// added to the base, matching real 8086 behavior.
		offset += signExtend8To16(c.mem.ReadU8())
	case 2:
		offset += c.mem.ReadU16()
	}
	return offset, defaultSeg
}

// resolveRM turns a mod/reg/rm byte into an Operand: a register operand
// when mod=3, otherwise a memory operand carrying both the resolved
// physical address and the pre-segmentation offset (the latter is what
// LEA stores). An active segment-override prefix replaces the form's
// default segment.
func (c *Cpu) resolveRM(m modRM, width Width) Operand {
	if m.mod == 3 {
		return RegOperand(int(m.rm), width)
	}
	offset, defaultSeg := c.effectiveOffset(m)
	seg := defaultSeg
	if c.hasSegOverride {
		seg = c.segOverride
	}
	addr := (c.regs.SegmentBase(seg) + uint32(offset)) & 0xFFFFF
	return Operand{Kind: OperandMem, Width: width, Addr: addr, Off: offset}
}
