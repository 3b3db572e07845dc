package cpu

// aamAadBase is the divisor/multiplier AAM and AAD operate against. The
// decoder already consumed and discarded the instruction's literal base
// byte (conventionally 0x0A); only base-10 BCD is supported.
const aamAadBase = 10

// execDaa implements DAA: decimal-adjust AL after an addition.
func (c *Cpu) execDaa() {
	al := c.regs.AL()
	oldAL := al
	oldCF := c.regs.Flags.CF()
	af := false
	cf := false

	if al&0xF > 9 || c.regs.Flags.AF() {
		al += 6
		af = true
	}
	if oldAL > 0x99 || oldCF {
		al += 0x60
		cf = true
	}

	c.regs.SetAL(al)
	c.regs.Flags.SetAF(af)
	c.regs.Flags.SetCF(cf)
	c.regs.Flags.SetZF(al == 0)
	c.regs.Flags.SetSF(signBit(uint32(al), Width8))
	c.regs.Flags.SetPF(parity(al))
}

// execDas implements DAS: decimal-adjust AL after a subtraction.
func (c *Cpu) execDas() {
	al := c.regs.AL()
	oldAL := al
	oldCF := c.regs.Flags.CF()
	af := false
	cf := false

	if al&0xF > 9 || c.regs.Flags.AF() {
		cf = oldCF || al < 6
		al -= 6
		af = true
	}
	if oldAL > 0x99 || oldCF {
		al -= 0x60
		cf = true
	}

	c.regs.SetAL(al)
	c.regs.Flags.SetAF(af)
	c.regs.Flags.SetCF(cf)
	c.regs.Flags.SetZF(al == 0)
	c.regs.Flags.SetSF(signBit(uint32(al), Width8))
	c.regs.Flags.SetPF(parity(al))
}

// execAaa implements AAA: ASCII-adjust AL after an addition. OF, SF, ZF and
// PF are left untouched -- undefined on real hardware.
func (c *Cpu) execAaa() {
	al := c.regs.AL()
	af := false
	if al&0xF > 9 || c.regs.Flags.AF() {
		c.regs.SetAL(al + 6)
		c.regs.SetAH(c.regs.AH() + 1)
		af = true
	}
	c.regs.SetAL(c.regs.AL() & 0x0F)
	c.regs.Flags.SetAF(af)
	c.regs.Flags.SetCF(af)
}

// execAas implements AAS: ASCII-adjust AL after a subtraction.
func (c *Cpu) execAas() {
	al := c.regs.AL()
	af := false
	if al&0xF > 9 || c.regs.Flags.AF() {
		c.regs.SetAL(al - 6)
		c.regs.SetAH(c.regs.AH() - 1)
		af = true
	}
	c.regs.SetAL(c.regs.AL() & 0x0F)
	c.regs.Flags.SetAF(af)
	c.regs.Flags.SetCF(af)
}

// execAam implements AAM: ASCII-adjust AX after a multiply, splitting AL
// into AH (quotient) and AL (remainder) by aamAadBase.
func (c *Cpu) execAam() error {
	al := c.regs.AL()
	c.regs.SetAH(al / aamAadBase)
	rem := al % aamAadBase
	c.regs.SetAL(rem)
	c.regs.Flags.SetZF(rem == 0)
	c.regs.Flags.SetSF(signBit(uint32(rem), Width8))
	c.regs.Flags.SetPF(parity(rem))
	return nil
}

// execAad implements AAD: ASCII-adjust AX before a divide, folding AH*base
// into AL and zeroing AH.
func (c *Cpu) execAad() error {
	al, ah := c.regs.AL(), c.regs.AH()
	result := byte(uint16(ah)*aamAadBase + uint16(al))
	c.regs.SetAL(result)
	c.regs.SetAH(0)
	c.regs.Flags.SetZF(result == 0)
	c.regs.Flags.SetSF(signBit(uint32(result), Width8))
	c.regs.Flags.SetPF(parity(result))
	return nil
}
