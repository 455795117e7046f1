package opcode

import "fmt"

// extensionNames contains the mnemonics of opcodes that are not part of the
// base CHIP-8 instruction catalog.
var extensionNames = map[Kind]string{
	ScrollDown:  "scd",
	ScrollUp:    "scu",
	ScrollRight: "scr",
	ScrollLeft:  "scl",
	Exit:        "exit",
	LowRes:      "low",
	HighRes:     "high",
	Stop:        "stop",
	SkipGtReg:   "sgt",
	StoreRange:  "save",
	LoadRange:   "load",
	JumpBack:    "jb",
	JumpForward: "jf",
	LoadLong:    "ld",
	SelectPlane: "plane",
	LoadAudio:   "audio",
	BigFontChar: "ld",
	SetPitch:    "pitch",
	StoreFlags:  "ld",
	LoadFlags:   "ld",
}

// Mnemonic returns the assembler mnemonic of the instruction.
func (i Instruction) Mnemonic() string {
	if name, ok := extensionNames[i.Kind]; ok {
		return name
	}
	if i.base != nil {
		return i.base.Name
	}
	return "???"
}

// String returns the instruction in assembler notation.
func (i Instruction) String() string {
	operands := i.operands()
	if operands == "" {
		return i.Mnemonic()
	}
	return fmt.Sprintf("%s %s", i.Mnemonic(), operands)
}

func (i Instruction) operands() string {
	switch i.Kind {
	case Cls, Ret, ScrollRight, ScrollLeft, Exit, LowRes, HighRes, Stop, LoadAudio:
		return ""
	case ScrollDown, ScrollUp:
		return fmt.Sprintf("$%X", i.N)
	case Jump, Call:
		return fmt.Sprintf("$%03X", i.NNN)
	case JumpOffset:
		return fmt.Sprintf("V0, $%03X", i.NNN)
	case JumpBack, JumpForward:
		return fmt.Sprintf("$%02X", i.NN)
	case SkipEqImm, SkipNeImm, LoadImm, AddImm, Random:
		return fmt.Sprintf("V%X, $%02X", i.X, i.NN)
	case SkipEqReg, SkipNeReg, SkipGtReg, StoreRange, LoadRange,
		Move, Or, And, Xor, AddReg, Sub, SubN:
		return fmt.Sprintf("V%X, V%X", i.X, i.Y)
	case ShiftRight, ShiftLeft, SkipKey, SkipNotKey, SetPitch:
		return fmt.Sprintf("V%X", i.X)
	case LoadIndex:
		return fmt.Sprintf("I, $%03X", i.NNN)
	case LoadLong:
		return fmt.Sprintf("I, $%04X", i.Long)
	case Draw:
		return fmt.Sprintf("V%X, V%X, $%X", i.X, i.Y, i.N)
	case SelectPlane:
		return fmt.Sprintf("$%X", i.X)
	case GetDelay:
		return fmt.Sprintf("V%X, DT", i.X)
	case WaitKey:
		return fmt.Sprintf("V%X, K", i.X)
	case SetDelay:
		return fmt.Sprintf("DT, V%X", i.X)
	case SetSound:
		return fmt.Sprintf("ST, V%X", i.X)
	case AddIndex:
		return fmt.Sprintf("I, V%X", i.X)
	case FontChar:
		return fmt.Sprintf("F, V%X", i.X)
	case BigFontChar:
		return fmt.Sprintf("HF, V%X", i.X)
	case BCD:
		return fmt.Sprintf("B, V%X", i.X)
	case StoreRegs:
		return fmt.Sprintf("[I], V%X", i.X)
	case LoadRegs:
		return fmt.Sprintf("V%X, [I]", i.X)
	case StoreFlags:
		return fmt.Sprintf("R, V%X", i.X)
	case LoadFlags:
		return fmt.Sprintf("V%X, R", i.X)
	}
	return ""
}
