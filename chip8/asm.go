/* Copyright (c) 2017 Jeffrey Massung
 *
 * This software is provided 'as-is', without any express or implied
 * warranty.  In no event will the authors be held liable for any damages
 * arising from the use of this software.
 *
 * Permission is granted to anyone to use this software for any purpose,
 * including commercial applications, and to alter it and redistribute it
 * freely, subject to the following restrictions:
 *
 * 1. The origin of this software must not be misrepresented; you must not
 *    claim that you wrote the original software. If you use this software
 *    in a product, an acknowledgment in the product documentation would be
 *    appreciated but is not required.
 *
 * 2. Altered source versions must be plainly marked as such, and must not be
 *    misrepresented as being the original software.
 *
 * 3. This notice may not be removed or altered from any source distribution.
 */

package chip8

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
)

var errOperands = errors.New("bad operands")

/// Assembly is a source file being assembled.
///
type Assembly struct {
	/// ROM holds the assembled bytes, starting at 0x200.
	///
	ROM []byte

	/// Labels maps each label to its address.
	///
	Labels map[string]int

	/// Unresolved maps ROM offsets of 12-bit address operands to the
	/// label they are waiting on.
	///
	Unresolved map[int]string
}

/// Assemble CHIP-8 source into a program image to load at 0x200.
///
func Assemble(source []byte) ([]byte, error) {
	a := &Assembly{
		Labels:     make(map[string]int),
		Unresolved: make(map[int]string),
	}

	scanner := bufio.NewScanner(bytes.NewReader(source))

	// parse and assemble
	for line := 1; scanner.Scan(); line++ {
		if err := a.assemble(&tokenScanner{bytes: scanner.Bytes()}); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// resolve all label addresses
	for offset, label := range a.Unresolved {
		address, ok := a.Labels[label]
		if !ok {
			return nil, fmt.Errorf("unresolved label: %s", label)
		}

		// every forward reference is a 12-bit operand
		a.ROM[offset] = a.ROM[offset]&0xF0 | byte(address>>8&0xF)
		a.ROM[offset+1] = byte(address)
	}

	if len(a.ROM) > MaxProgramSize {
		return nil, ErrProgramTooLarge
	}

	return a.ROM, nil
}

/// Compile a single line into the assembly.
///
func (a *Assembly) assemble(s *tokenScanner) error {
	t, err := s.scanToken()
	if err != nil {
		return err
	}

	// assign labels
	if t.typ == tokenLabel {
		if _, exists := a.Labels[t.str]; exists {
			return fmt.Errorf("duplicate label %s", t.str)
		}
		a.Labels[t.str] = a.address()

		if t, err = s.scanToken(); err != nil {
			return err
		}
	}

	switch t.typ {
	case tokenEnd:
		return nil
	case tokenName:
		ops, err := scanOperands(s)
		if err != nil {
			return err
		}
		return a.assembleInstruction(t.str, ops)
	}

	return errors.New("unexpected token")
}

/// Scan comma separated operands to the end of the line.
///
func scanOperands(s *tokenScanner) ([]token, error) {
	var ops []token

	for {
		t, err := s.scanToken()
		if err != nil {
			return nil, err
		}
		if t.typ == tokenEnd {
			if len(ops) > 0 && ops[len(ops)-1].typ == tokenComma {
				return nil, errors.New("trailing comma")
			}
			return stripCommas(ops)
		}
		ops = append(ops, t)
	}
}

func stripCommas(ts []token) ([]token, error) {
	var ops []token

	for i, t := range ts {
		if (i%2 == 1) != (t.typ == tokenComma) {
			return nil, errors.New("operands must be separated by commas")
		}
		if t.typ != tokenComma {
			ops = append(ops, t)
		}
	}

	return ops, nil
}

func (a *Assembly) address() int {
	return ProgramStart + len(a.ROM)
}

/// Encode one instruction or data directive.
///
func (a *Assembly) assembleInstruction(mnemonic string, ops []token) error {
	switch mnemonic {
	case "BYTE":
		return a.assembleBytes(ops)
	case "WORD":
		if len(ops) != 1 {
			return errOperands
		}
		return a.emitAddress(0, ops[0], 0xFFFF)
	}

	var pattern string
	for _, op := range ops {
		pattern += op.typ.pattern()
	}

	x, y := regOf(ops, 0), regOf(ops, 1)

	switch mnemonic + " " + pattern {
	case "CLS ":
		return a.emit(0x00E0)
	case "RET ":
		return a.emit(0x00EE)
	case "JP A", "JP N":
		return a.emitAddress(0x1000, ops[0], 0xFFF)
	case "JP VA", "JP VN":
		if x != 0 {
			return errors.New("indexed jump must use V0")
		}
		return a.emitAddress(0xB000, ops[1], 0xFFF)
	case "CALL A", "CALL N":
		return a.emitAddress(0x2000, ops[0], 0xFFF)
	case "SE VA":
		return a.emitByte(0x3000, x, ops[1])
	case "SNE VA":
		return a.emitByte(0x4000, x, ops[1])
	case "SE VV":
		return a.emitXY(0x5000, x, y)
	case "SNE VV":
		return a.emitXY(0x9000, x, y)
	case "LD VA":
		return a.emitByte(0x6000, x, ops[1])
	case "ADD VA":
		return a.emitByte(0x7000, x, ops[1])
	case "LD VV":
		return a.emitXY(0x8000, x, y)
	case "OR VV":
		return a.emitXY(0x8001, x, y)
	case "AND VV":
		return a.emitXY(0x8002, x, y)
	case "XOR VV":
		return a.emitXY(0x8003, x, y)
	case "ADD VV":
		return a.emitXY(0x8004, x, y)
	case "SUB VV":
		return a.emitXY(0x8005, x, y)
	case "SHR V", "SHR VV":
		return a.emitXY(0x8006, x, y)
	case "SUBN VV":
		return a.emitXY(0x8007, x, y)
	case "SHL V", "SHL VV":
		return a.emitXY(0x800E, x, y)
	case "LD IA", "LD IN":
		return a.emitAddress(0xA000, ops[1], 0xFFF)
	case "RND VA":
		return a.emitByte(0xC000, x, ops[1])
	case "DRW VVA":
		if ops[2].num > 0xF {
			return fmt.Errorf("sprite height %d out of range", ops[2].num)
		}
		return a.emitXY(0xD000|uint16(ops[2].num), x, y)
	case "SKP V":
		return a.emitX(0xE09E, x)
	case "SKNP V":
		return a.emitX(0xE0A1, x)
	case "LD VD":
		return a.emitX(0xF007, x)
	case "LD VK":
		return a.emitX(0xF00A, x)
	case "LD DV":
		return a.emitX(0xF015, regOf(ops, 1))
	case "LD SV":
		return a.emitX(0xF018, regOf(ops, 1))
	case "ADD IV":
		return a.emitX(0xF01E, regOf(ops, 1))
	case "LD FV":
		return a.emitX(0xF029, regOf(ops, 1))
	case "LD BV":
		return a.emitX(0xF033, regOf(ops, 1))
	case "LD [V":
		return a.emitX(0xF055, regOf(ops, 1))
	case "LD V[":
		return a.emitX(0xF065, x)
	}

	return fmt.Errorf("%s: %w", mnemonic, errOperands)
}

/// pattern is a one letter code used to match operand shapes.
///
func (t tokenType) pattern() string {
	switch t {
	case tokenV:
		return "V"
	case tokenI:
		return "I"
	case tokenIndirect:
		return "["
	case tokenDT:
		return "D"
	case tokenST:
		return "S"
	case tokenK:
		return "K"
	case tokenF:
		return "F"
	case tokenB:
		return "B"
	case tokenLit:
		return "A"
	case tokenName:
		return "N"
	}
	return "?"
}

func regOf(ops []token, i int) uint16 {
	if i < len(ops) && ops[i].typ == tokenV {
		return uint16(ops[i].num)
	}
	return 0
}

func (a *Assembly) emit(op uint16) error {
	a.ROM = append(a.ROM, byte(op>>8), byte(op))
	return nil
}

func (a *Assembly) emitX(op, x uint16) error {
	return a.emit(op | x<<8)
}

func (a *Assembly) emitXY(op, x, y uint16) error {
	return a.emit(op | x<<8 | y<<4)
}

func (a *Assembly) emitByte(op, x uint16, t token) error {
	if t.num > 0xFF {
		return fmt.Errorf("byte literal #%X out of range", t.num)
	}
	return a.emit(op | x<<8 | uint16(t.num))
}

/// emitAddress writes op with an address operand, recording a fixup if
/// the operand is a label.
///
func (a *Assembly) emitAddress(op uint16, t token, limit int) error {
	if t.typ == tokenName {
		if address, ok := a.Labels[t.str]; ok {
			return a.emit(op | uint16(address))
		}

		a.Unresolved[len(a.ROM)] = t.str
		return a.emit(op)
	}

	if t.typ != tokenLit {
		return errOperands
	}
	if t.num > limit {
		return fmt.Errorf("address #%X out of range", t.num)
	}

	return a.emit(op | uint16(t.num))
}

func (a *Assembly) assembleBytes(ops []token) error {
	if len(ops) == 0 {
		return errOperands
	}

	for _, t := range ops {
		if t.typ != tokenLit || t.num > 0xFF {
			return errOperands
		}
		a.ROM = append(a.ROM, byte(t.num))
	}

	return nil
}
