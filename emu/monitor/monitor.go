/*
 * rv64emu - Interactive monitor console.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package monitor implements an interactive register/memory inspection
// console: reg/csr/mem/step/continue/quit commands with prefix
// matching, readline editing, history, and tab completion.
package monitor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/rcornwell/rv64emu/emu/core"
	"github.com/rcornwell/rv64emu/emu/csr"
)

type cmdLine struct {
	line string
	pos  int
}

func (l *cmdLine) skipSpace() {
	for l.pos < len(l.line) && l.line[l.pos] == ' ' {
		l.pos++
	}
}

func (l *cmdLine) getWord() string {
	l.skipSpace()
	start := l.pos
	for l.pos < len(l.line) && l.line[l.pos] != ' ' {
		l.pos++
	}
	return l.line[start:l.pos]
}

type command struct {
	name    string
	min     int
	process func(*cmdLine, *core.Core) (bool, error)
}

var commands = []command{
	{name: "reg", min: 1, process: cmdReg},
	{name: "csr", min: 1, process: cmdCSR},
	{name: "mem", min: 1, process: cmdMem},
	{name: "step", min: 2, process: cmdStep},
	{name: "continue", min: 1, process: cmdContinue},
	{name: "quit", min: 1, process: cmdQuit},
}

// matchCommand reports whether name is a valid, minimum-length-or-longer
// prefix of the candidate's full name.
func matchCommand(candidate command, name string) bool {
	if len(name) < candidate.min || len(name) > len(candidate.name) {
		return false
	}
	return candidate.name[:len(name)] == name
}

func matchList(name string) []command {
	if name == "" {
		return nil
	}
	var out []command
	for _, c := range commands {
		if matchCommand(c, name) {
			out = append(out, c)
		}
	}
	return out
}

// ProcessCommand executes a single line against core, returning true
// if the console should exit.
func ProcessCommand(line string, co *core.Core) (bool, error) {
	l := &cmdLine{line: line}
	name := l.getWord()
	if name == "" {
		return false, nil
	}

	matches := matchList(name)
	switch len(matches) {
	case 0:
		return false, fmt.Errorf("unknown command: %s", name)
	case 1:
		return matches[0].process(l, co)
	default:
		return false, fmt.Errorf("ambiguous command: %s", name)
	}
}

// CompleteCmd returns the command names that are valid completions
// for line, for use as a liner.Completer.
func CompleteCmd(line string) []string {
	l := &cmdLine{line: line}
	name := l.getWord()
	matches := matchList(name)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}

func cmdReg(_ *cmdLine, co *core.Core) (bool, error) {
	for i := 0; i < 32; i++ {
		fmt.Printf("x%-2d = %#018x", i, co.CPU.Reg(uint32(i)))
		if i%4 == 3 {
			fmt.Println()
		} else {
			fmt.Print("  ")
		}
	}
	fmt.Printf("\npc  = %#018x\n", co.CPU.PC())
	return false, nil
}

var csrByName = map[string]uint16{
	"mstatus": csr.Mstatus,
	"mie":     csr.Mie,
	"mip":     csr.Mip,
	"mtvec":   csr.Mtvec,
	"mepc":    csr.Mepc,
	"mcause":  csr.Mcause,
	"mtval":   csr.Mtval,
	"sstatus": csr.Sstatus,
	"sie":     csr.Sie,
	"sip":     csr.Sip,
	"stvec":   csr.Stvec,
	"sepc":    csr.Sepc,
	"scause":  csr.Scause,
	"stval":   csr.Stval,
}

func cmdCSR(l *cmdLine, co *core.Core) (bool, error) {
	name := strings.ToLower(l.getWord())
	addr, ok := csrByName[name]
	if !ok {
		return false, fmt.Errorf("unknown csr: %s", name)
	}
	fmt.Printf("%s = %#018x\n", name, co.CPU.CSR.Read(addr))
	return false, nil
}

func cmdMem(l *cmdLine, co *core.Core) (bool, error) {
	addrStr := l.getWord()
	lenStr := l.getWord()

	addr, err := strconv.ParseUint(strings.TrimPrefix(addrStr, "0x"), 16, 64)
	if err != nil {
		return false, fmt.Errorf("bad address %q: %w", addrStr, err)
	}
	length := uint64(16)
	if lenStr != "" {
		length, err = strconv.ParseUint(lenStr, 0, 64)
		if err != nil {
			return false, fmt.Errorf("bad length %q: %w", lenStr, err)
		}
	}

	for i := uint64(0); i < length; i++ {
		if i%16 == 0 {
			if i != 0 {
				fmt.Println()
			}
			fmt.Printf("%#010x:", addr+i)
		}
		fmt.Printf(" %02x", co.CPU.Bus.Read8(addr+i))
	}
	fmt.Println()
	return false, nil
}

func cmdStep(l *cmdLine, co *core.Core) (bool, error) {
	n := 1
	if s := l.getWord(); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return false, fmt.Errorf("bad step count %q: %w", s, err)
		}
		n = v
	}
	co.Control() <- core.Packet{Msg: core.Step, Count: n}
	return false, nil
}

func cmdContinue(_ *cmdLine, co *core.Core) (bool, error) {
	co.Control() <- core.Packet{Msg: core.Resume}
	return false, nil
}

func cmdQuit(_ *cmdLine, _ *core.Core) (bool, error) {
	return true, nil
}

// Run drives an interactive readline console against co until the
// user quits or aborts the prompt (Ctrl-D/Ctrl-C).
func Run(co *core.Core) {
	co.Control() <- core.Packet{Msg: core.Halt}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(CompleteCmd)

	for {
		input, err := line.Prompt("rv64emu> ")
		if err == nil {
			line.AppendHistory(input)
			quit, procErr := ProcessCommand(input, co)
			if procErr != nil {
				fmt.Println("error: " + procErr.Error())
			}
			if quit {
				return
			}
			continue
		}

		if errors.Is(err, liner.ErrPromptAborted) {
			return
		}
		fmt.Println("error reading line: " + err.Error())
		return
	}
}
