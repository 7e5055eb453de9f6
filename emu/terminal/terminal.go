/*
 * rv64emu - Host terminal interface.
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

// Package terminal provides the UART's host I/O backend: a
// background-goroutine stdio implementation for real runs, and an
// in-memory mock for tests.
package terminal

import (
	"bufio"
	"fmt"
	"os"
)

// Stdio drives the UART from the process's standard input and output.
// A background goroutine reads os.Stdin and funnels bytes into a
// bounded channel; Read drains it without blocking.
type Stdio struct {
	in chan byte
}

// NewStdio starts the background reader goroutine and returns a
// ready-to-use Stdio terminal.
func NewStdio() *Stdio {
	s := &Stdio{in: make(chan byte, 256)}
	go s.readLoop()
	return s
}

func (s *Stdio) readLoop() {
	r := bufio.NewReader(os.Stdin)
	for {
		b, err := r.ReadByte()
		if err != nil {
			return
		}
		s.in <- b
	}
}

// Read returns the next buffered input byte, or false if none is
// available yet. Never blocks.
func (s *Stdio) Read() (byte, bool) {
	select {
	case b := <-s.in:
		return b, true
	default:
		return 0, false
	}
}

// Write prints b to stdout and flushes immediately.
func (s *Stdio) Write(b byte) {
	fmt.Print(string(b))
	os.Stdout.Sync()
}

// Mock is an in-memory terminal for tests: Push queues an input byte,
// Output returns everything written so far.
type Mock struct {
	input  []byte
	output []byte
}

// NewMock returns an empty mock terminal.
func NewMock() *Mock {
	return &Mock{}
}

// Push queues b to be returned by the next Read.
func (m *Mock) Push(b byte) {
	m.input = append(m.input, b)
}

// Read pops the oldest queued input byte, or returns false if empty.
func (m *Mock) Read() (byte, bool) {
	if len(m.input) == 0 {
		return 0, false
	}
	b := m.input[0]
	m.input = m.input[1:]
	return b, true
}

// Write appends b to the recorded output.
func (m *Mock) Write(b byte) {
	m.output = append(m.output, b)
}

// Output returns everything written so far, as a string.
func (m *Mock) Output() string {
	return string(m.output)
}
