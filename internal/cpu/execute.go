package cpu

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/memory"
	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrochip8/internal/profile"
)

type handlerFunc func(c *CPU, ins opcode.Instruction, keys Keys) error

// handlers maps every instruction kind to its implementation.
var handlers = map[opcode.Kind]handlerFunc{
	opcode.Cls:         (*CPU).cls,
	opcode.Ret:         (*CPU).ret,
	opcode.ScrollDown:  (*CPU).scrollDown,
	opcode.ScrollUp:    (*CPU).scrollUp,
	opcode.ScrollRight: (*CPU).scrollRight,
	opcode.ScrollLeft:  (*CPU).scrollLeft,
	opcode.Exit:        (*CPU).exit,
	opcode.Stop:        (*CPU).exit,
	opcode.LowRes:      (*CPU).lowRes,
	opcode.HighRes:     (*CPU).highRes,
	opcode.Jump:        (*CPU).jump,
	opcode.Call:        (*CPU).call,
	opcode.SkipEqImm:   (*CPU).skipEqImm,
	opcode.SkipNeImm:   (*CPU).skipNeImm,
	opcode.SkipEqReg:   (*CPU).skipEqReg,
	opcode.SkipGtReg:   (*CPU).skipGtReg,
	opcode.StoreRange:  (*CPU).storeRange,
	opcode.LoadRange:   (*CPU).loadRange,
	opcode.LoadImm:     (*CPU).loadImm,
	opcode.AddImm:      (*CPU).addImm,
	opcode.Move:        (*CPU).move,
	opcode.Or:          (*CPU).logic,
	opcode.And:         (*CPU).logic,
	opcode.Xor:         (*CPU).logic,
	opcode.AddReg:      (*CPU).addReg,
	opcode.Sub:         (*CPU).sub,
	opcode.ShiftRight:  (*CPU).shiftRight,
	opcode.SubN:        (*CPU).subN,
	opcode.ShiftLeft:   (*CPU).shiftLeft,
	opcode.SkipNeReg:   (*CPU).skipNeReg,
	opcode.LoadIndex:   (*CPU).loadIndex,
	opcode.LoadLong:    (*CPU).loadLong,
	opcode.JumpOffset:  (*CPU).jumpOffset,
	opcode.JumpBack:    (*CPU).jumpBack,
	opcode.JumpForward: (*CPU).jumpForward,
	opcode.Random:      (*CPU).rnd,
	opcode.Draw:        (*CPU).draw,
	opcode.SkipKey:     (*CPU).skipKey,
	opcode.SkipNotKey:  (*CPU).skipNotKey,
	opcode.SelectPlane: (*CPU).selectPlane,
	opcode.LoadAudio:   (*CPU).loadAudio,
	opcode.GetDelay:    (*CPU).getDelay,
	opcode.WaitKey:     (*CPU).waitForKey,
	opcode.SetDelay:    (*CPU).setDelay,
	opcode.SetSound:    (*CPU).setSound,
	opcode.AddIndex:    (*CPU).addIndex,
	opcode.FontChar:    (*CPU).fontChar,
	opcode.BigFontChar: (*CPU).bigFontChar,
	opcode.BCD:         (*CPU).bcd,
	opcode.SetPitch:    (*CPU).setPitch,
	opcode.StoreRegs:   (*CPU).storeRegs,
	opcode.LoadRegs:    (*CPU).loadRegs,
	opcode.StoreFlags:  (*CPU).storeFlags,
	opcode.LoadFlags:   (*CPU).loadFlags,
}

// Execute applies a decoded instruction. PC is expected to already point
// behind the instruction.
func (c *CPU) Execute(ins opcode.Instruction, keys Keys) error {
	handler, ok := handlers[ins.Kind]
	if !ok {
		return &opcode.UnknownOpcodeError{Word: ins.Word, Mode: c.profile.Mode}
	}
	return handler(c, ins, keys)
}

func (c *CPU) cls(opcode.Instruction, Keys) error {
	c.Display.Clear()
	return nil
}

func (c *CPU) ret(opcode.Instruction, Keys) error {
	address, err := c.Stack.Pop()
	if err != nil {
		return err
	}
	c.Registers.PC = address
	return nil
}

func (c *CPU) scrollDown(ins opcode.Instruction, _ Keys) error {
	c.Display.ScrollDown(int(ins.N))
	return nil
}

func (c *CPU) scrollUp(ins opcode.Instruction, _ Keys) error {
	c.Display.ScrollUp(int(ins.N))
	return nil
}

func (c *CPU) scrollRight(opcode.Instruction, Keys) error {
	c.Display.ScrollRight(4)
	return nil
}

func (c *CPU) scrollLeft(opcode.Instruction, Keys) error {
	c.Display.ScrollLeft(4)
	return nil
}

func (c *CPU) exit(opcode.Instruction, Keys) error {
	return ErrExit
}

func (c *CPU) lowRes(opcode.Instruction, Keys) error {
	c.Display.SetHighRes(false)
	return nil
}

func (c *CPU) highRes(opcode.Instruction, Keys) error {
	c.Display.SetHighRes(true)
	return nil
}

func (c *CPU) jump(ins opcode.Instruction, _ Keys) error {
	c.Registers.PC = ins.NNN
	return nil
}

func (c *CPU) call(ins opcode.Instruction, _ Keys) error {
	if err := c.Stack.Push(c.Registers.PC); err != nil {
		return err
	}
	c.Registers.PC = ins.NNN
	return nil
}

// skipIf skips the next instruction if the condition holds. The 4 byte
// F000 NNNN instruction is skipped as a whole.
func (c *CPU) skipIf(condition bool) error {
	if !condition {
		return nil
	}
	if c.profile.Has(profile.XOOpcodes) {
		if next, err := c.Memory.Read16(c.Registers.PC); err == nil && next == 0xF000 {
			return c.movePC(4)
		}
	}
	return c.movePC(2)
}

func (c *CPU) skipEqImm(ins opcode.Instruction, _ Keys) error {
	return c.skipIf(c.Registers.V[ins.X] == ins.NN)
}

func (c *CPU) skipNeImm(ins opcode.Instruction, _ Keys) error {
	return c.skipIf(c.Registers.V[ins.X] != ins.NN)
}

func (c *CPU) skipEqReg(ins opcode.Instruction, _ Keys) error {
	return c.skipIf(c.Registers.V[ins.X] == c.Registers.V[ins.Y])
}

func (c *CPU) skipNeReg(ins opcode.Instruction, _ Keys) error {
	return c.skipIf(c.Registers.V[ins.X] != c.Registers.V[ins.Y])
}

func (c *CPU) skipGtReg(ins opcode.Instruction, _ Keys) error {
	return c.skipIf(c.Registers.V[ins.X] > c.Registers.V[ins.Y])
}

// registerRange returns the register indexes from X to Y, in descending
// order if X is greater than Y.
func registerRange(x, y uint8) []uint8 {
	var indexes []uint8
	step := 1
	if x > y {
		step = -1
	}
	for i := int(x); ; i += step {
		indexes = append(indexes, uint8(i))
		if i == int(y) {
			return indexes
		}
	}
}

func (c *CPU) storeRange(ins opcode.Instruction, _ Keys) error {
	registers := registerRange(ins.X, ins.Y)
	data := make([]byte, len(registers))
	for offset, register := range registers {
		data[offset] = c.Registers.V[register]
	}
	return c.Memory.WriteRange(c.Registers.I, data)
}

func (c *CPU) loadRange(ins opcode.Instruction, _ Keys) error {
	registers := registerRange(ins.X, ins.Y)
	data, err := c.Memory.ReadRange(c.Registers.I, len(registers))
	if err != nil {
		return err
	}
	for offset, register := range registers {
		c.Registers.V[register] = data[offset]
	}
	return nil
}

func (c *CPU) loadImm(ins opcode.Instruction, _ Keys) error {
	c.Registers.V[ins.X] = ins.NN
	return nil
}

func (c *CPU) addImm(ins opcode.Instruction, _ Keys) error {
	c.Registers.V[ins.X] += ins.NN
	return nil
}

func (c *CPU) move(ins opcode.Instruction, _ Keys) error {
	c.Registers.V[ins.X] = c.Registers.V[ins.Y]
	return nil
}

func (c *CPU) logic(ins opcode.Instruction, _ Keys) error {
	v := &c.Registers.V
	switch ins.Kind {
	case opcode.Or:
		v[ins.X] |= v[ins.Y]
	case opcode.And:
		v[ins.X] &= v[ins.Y]
	case opcode.Xor:
		v[ins.X] ^= v[ins.Y]
	}
	if c.profile.Has(profile.LogicResetsVF) {
		v[FlagRegister] = 0
	}
	return nil
}

// setResult writes the result before the flag, so that VF as destination
// register ends up holding the flag.
func (c *CPU) setResult(x uint8, result uint8, flag bool) {
	c.Registers.V[x] = result
	c.Registers.V[FlagRegister] = boolToFlag(flag)
}

func (c *CPU) addReg(ins opcode.Instruction, _ Keys) error {
	sum := uint16(c.Registers.V[ins.X]) + uint16(c.Registers.V[ins.Y])
	c.setResult(ins.X, uint8(sum), sum > 0xFF)
	return nil
}

// noBorrow returns whether minuend - subtrahend does not borrow under the
// borrow convention of the profile.
func (c *CPU) noBorrow(minuend, subtrahend uint8) bool {
	if c.profile.Borrow == profile.BorrowGreater {
		return minuend > subtrahend
	}
	return minuend >= subtrahend
}

func (c *CPU) sub(ins opcode.Instruction, _ Keys) error {
	vx, vy := c.Registers.V[ins.X], c.Registers.V[ins.Y]
	c.setResult(ins.X, vx-vy, c.noBorrow(vx, vy))
	return nil
}

func (c *CPU) subN(ins opcode.Instruction, _ Keys) error {
	vx, vy := c.Registers.V[ins.X], c.Registers.V[ins.Y]
	c.setResult(ins.X, vy-vx, c.noBorrow(vy, vx))
	return nil
}

func (c *CPU) shiftSource(ins opcode.Instruction) uint8 {
	if c.profile.Has(profile.ShiftUsesVY) {
		return c.Registers.V[ins.Y]
	}
	return c.Registers.V[ins.X]
}

func (c *CPU) shiftRight(ins opcode.Instruction, _ Keys) error {
	source := c.shiftSource(ins)
	c.setResult(ins.X, source>>1, source&0x01 != 0)
	return nil
}

func (c *CPU) shiftLeft(ins opcode.Instruction, _ Keys) error {
	source := c.shiftSource(ins)
	c.setResult(ins.X, source<<1, source&0x80 != 0)
	return nil
}

func (c *CPU) loadIndex(ins opcode.Instruction, _ Keys) error {
	c.Registers.I = ins.NNN
	return nil
}

func (c *CPU) loadLong(ins opcode.Instruction, _ Keys) error {
	c.Registers.I = ins.Long
	return nil
}

func (c *CPU) jumpOffset(ins opcode.Instruction, _ Keys) error {
	register := uint8(0)
	if c.profile.Has(profile.JumpUsesVX) {
		register = ins.X
	}
	c.Registers.PC = ins.NNN + uint16(c.Registers.V[register])
	return nil
}

func (c *CPU) jumpBack(ins opcode.Instruction, _ Keys) error {
	return c.movePC(-int(ins.NN))
}

func (c *CPU) jumpForward(ins opcode.Instruction, _ Keys) error {
	return c.movePC(int(ins.NN))
}

func (c *CPU) rnd(ins opcode.Instruction, _ Keys) error {
	c.Registers.V[ins.X] = uint8(c.random.UintN(256)) & ins.NN
	return nil
}

func (c *CPU) draw(ins opcode.Instruction, _ Keys) error {
	rows := int(ins.N)
	wide := rows == 0 && c.profile.Has(profile.ExtendedOpcodes)

	size := c.Display.SpriteSize(rows, wide)
	sprite, err := c.Memory.ReadRange(c.Registers.I, size)
	if err != nil {
		return fmt.Errorf("reading sprite: %w", err)
	}

	collision := c.Display.Draw(c.Registers.V[ins.X], c.Registers.V[ins.Y], sprite, rows, wide)
	c.Registers.V[FlagRegister] = boolToFlag(collision)
	return nil
}

func (c *CPU) skipKey(ins opcode.Instruction, keys Keys) error {
	return c.skipIf(keys.Pressed(c.Registers.V[ins.X]))
}

func (c *CPU) skipNotKey(ins opcode.Instruction, keys Keys) error {
	return c.skipIf(!keys.Pressed(c.Registers.V[ins.X]))
}

func (c *CPU) selectPlane(ins opcode.Instruction, _ Keys) error {
	c.Display.SelectPlanes(ins.X)
	return nil
}

func (c *CPU) loadAudio(opcode.Instruction, Keys) error {
	pattern, err := c.Memory.ReadRange(c.Registers.I, AudioPatternSize)
	if err != nil {
		return err
	}
	copy(c.AudioPattern[:], pattern)
	return nil
}

func (c *CPU) getDelay(ins opcode.Instruction, _ Keys) error {
	c.Registers.V[ins.X] = c.Timers.Delay
	return nil
}

// waitForKey completes once a key that is pressed while waiting is released.
// Until then PC is moved back onto the instruction so that it is executed
// again by the next step.
func (c *CPU) waitForKey(ins opcode.Instruction, keys Keys) error {
	c.waitingKeys = true

	if c.waitKey < 0 {
		if key, ok := keys.First(); ok {
			c.waitKey = int(key)
		}
	} else if !keys.Pressed(uint8(c.waitKey)) {
		c.Registers.V[ins.X] = uint8(c.waitKey)
		c.waitKey = -1
		c.waitingKeys = false
		return nil
	}

	c.Registers.PC -= ins.Size()
	return nil
}

func (c *CPU) setDelay(ins opcode.Instruction, _ Keys) error {
	c.Timers.Delay = c.Registers.V[ins.X]
	return nil
}

func (c *CPU) setSound(ins opcode.Instruction, _ Keys) error {
	c.Timers.Sound = c.Registers.V[ins.X]
	return nil
}

func (c *CPU) addIndex(ins opcode.Instruction, _ Keys) error {
	c.Registers.I += uint16(c.Registers.V[ins.X])
	return nil
}

func (c *CPU) fontChar(ins opcode.Instruction, _ Keys) error {
	c.Registers.I = memory.GlyphAddress(c.profile.FontBase, c.Registers.V[ins.X])
	return nil
}

func (c *CPU) bigFontChar(ins opcode.Instruction, _ Keys) error {
	c.Registers.I = memory.BigGlyphAddress(c.profile.BigFontBase, c.Registers.V[ins.X])
	return nil
}

func (c *CPU) bcd(ins opcode.Instruction, _ Keys) error {
	value := c.Registers.V[ins.X]
	digits := []byte{value / 100, value / 10 % 10, value % 10}
	return c.Memory.WriteRange(c.Registers.I, digits)
}

func (c *CPU) setPitch(ins opcode.Instruction, _ Keys) error {
	c.Pitch = c.Registers.V[ins.X]
	return nil
}

func (c *CPU) storeRegs(ins opcode.Instruction, _ Keys) error {
	count := int(ins.X) + 1
	if err := c.Memory.WriteRange(c.Registers.I, c.Registers.V[:count]); err != nil {
		return err
	}
	c.incrementIndex(ins.X)
	return nil
}

func (c *CPU) loadRegs(ins opcode.Instruction, _ Keys) error {
	count := int(ins.X) + 1
	data, err := c.Memory.ReadRange(c.Registers.I, count)
	if err != nil {
		return err
	}
	copy(c.Registers.V[:count], data)
	c.incrementIndex(ins.X)
	return nil
}

func (c *CPU) incrementIndex(x uint8) {
	switch c.profile.IndexIncrement {
	case profile.IndexIncrementX1:
		c.Registers.I += uint16(x) + 1
	case profile.IndexIncrementX:
		c.Registers.I += uint16(x)
	case profile.IndexUnchanged:
	}
}

// flagCount returns the number of user flags that FX75/FX85 transfer, limited by the profile.
func (c *CPU) flagCount(x uint8) int {
	return min(int(x)+1, c.profile.FlagRegisters)
}

func (c *CPU) storeFlags(ins opcode.Instruction, _ Keys) error {
	count := c.flagCount(ins.X)
	copy(c.Flags[:count], c.Registers.V[:count])
	return nil
}

func (c *CPU) loadFlags(ins opcode.Instruction, _ Keys) error {
	count := c.flagCount(ins.X)
	copy(c.Registers.V[:count], c.Flags[:count])
	return nil
}

func boolToFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
