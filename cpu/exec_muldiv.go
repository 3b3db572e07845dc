package cpu

// divideError halts the machine, matching the documented fatal-halt
// behavior for a divide-by-zero or divide-overflow condition: no interrupt
// vector table is populated in this emulator, so DIV/IDIV's #DE cannot be
// serviced as a real interrupt.
func (c *Cpu) divideError() error {
	c.halted = true
	return fatalf("divide error: division by zero or quotient overflow")
}

// execMul implements unsigned multiply. SF, ZF, AF and PF are left
// untouched -- undefined on real hardware.
func (c *Cpu) execMul(i Instruction) error {
	src := uint32(c.readOperand(i.Dest))
	var overflow bool
	if i.Width == Width8 {
		result := uint32(c.regs.AL()) * src
		c.regs.SetAX(uint16(result))
		overflow = result>>8 != 0
	} else {
		result := uint32(c.regs.AX()) * src
		c.regs.SetAX(uint16(result))
		c.regs.SetDX(uint16(result >> 16))
		overflow = result>>16 != 0
	}
	c.regs.Flags.SetCF(overflow)
	c.regs.Flags.SetOF(overflow)
	return nil
}

// execImul implements signed multiply.
func (c *Cpu) execImul(i Instruction) error {
	var overflow bool
	if i.Width == Width8 {
		a := int32(int8(c.regs.AL()))
		s := int32(int8(byte(c.readOperand(i.Dest))))
		result := a * s
		c.regs.SetAX(uint16(int16(result)))
		overflow = result < -128 || result > 127
	} else {
		a := int32(int16(c.regs.AX()))
		s := int32(int16(c.readOperand(i.Dest)))
		result := a * s
		c.regs.SetAX(uint16(result))
		c.regs.SetDX(uint16(result >> 16))
		overflow = result < -32768 || result > 32767
	}
	c.regs.Flags.SetCF(overflow)
	c.regs.Flags.SetOF(overflow)
	return nil
}

// execDiv implements unsigned divide. A zero divisor or a quotient that
// cannot fit the destination register is a fatal divide error.
func (c *Cpu) execDiv(i Instruction) error {
	divisor := uint32(c.readOperand(i.Dest))
	if divisor == 0 {
		return c.divideError()
	}
	if i.Width == Width8 {
		dividend := uint32(c.regs.AX())
		quot, rem := dividend/divisor, dividend%divisor
		if quot > 0xFF {
			return c.divideError()
		}
		c.regs.SetAL(byte(quot))
		c.regs.SetAH(byte(rem))
	} else {
		dividend := uint32(c.regs.DX())<<16 | uint32(c.regs.AX())
		quot, rem := dividend/divisor, dividend%divisor
		if quot > 0xFFFF {
			return c.divideError()
		}
		c.regs.SetAX(uint16(quot))
		c.regs.SetDX(uint16(rem))
	}
	return nil
}

// execIdiv implements signed divide. A zero divisor or a quotient outside
// the destination register's signed range is a fatal divide error.
func (c *Cpu) execIdiv(i Instruction) error {
	if i.Width == Width8 {
		divisor := int32(int8(byte(c.readOperand(i.Dest))))
		if divisor == 0 {
			return c.divideError()
		}
		dividend := int32(int16(c.regs.AX()))
		quot, rem := dividend/divisor, dividend%divisor
		if quot < -128 || quot > 127 {
			return c.divideError()
		}
		c.regs.SetAL(byte(int8(quot)))
		c.regs.SetAH(byte(int8(rem)))
	} else {
		divisor := int32(int16(c.readOperand(i.Dest)))
		if divisor == 0 {
			return c.divideError()
		}
		dividend := int32(uint32(c.regs.DX())<<16 | uint32(c.regs.AX()))
		quot, rem := dividend/divisor, dividend%divisor
		if quot < -32768 || quot > 32767 {
			return c.divideError()
		}
		c.regs.SetAX(uint16(int16(quot)))
		c.regs.SetDX(uint16(int16(rem)))
	}
	return nil
}
