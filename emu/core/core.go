/*
   Core emulator run loop.

   Copyright (c) 2024, Richard Cornwell

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   ROBERT M SUPNIK BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

*/

// Package core wraps a CPU in a goroutine-hosted run loop with
// cooperative start/stop and a small control-packet channel for the
// monitor console.
package core

import (
	"log/slog"
	"sync"
	"time"

	"github.com/rcornwell/rv64emu/emu/cpu"
)

// MsgType identifies the kind of control packet sent to a running Core.
type MsgType int

// Control messages the monitor console (or any other driver) may send.
const (
	Halt MsgType = iota
	Resume
	Step
)

// Packet is a single control request posted to a Core's channel.
type Packet struct {
	Msg   MsgType
	Count int // Step count, used only by Step.
}

// Core runs a CPU step loop on its own goroutine.
type Core struct {
	wg      sync.WaitGroup
	done    chan struct{}
	control chan Packet
	running bool

	CPU *cpu.CPU
}

// New returns a Core wrapping cpu, free-running once Start is called.
func New(c *cpu.CPU) *Core {
	return &Core{
		CPU:     c,
		done:    make(chan struct{}),
		control: make(chan Packet),
		running: true,
	}
}

// Control returns the channel used to post Packets to the running Core.
func (co *Core) Control() chan<- Packet {
	return co.control
}

// Start runs the CPU step loop until Stop is called. It free-runs
// unless told to Halt, and always honors Step requests by running
// Count steps (one when Count is not positive, fewer if the CPU halts)
// before returning to its prior state.
func (co *Core) Start() {
	co.wg.Add(1)
	defer co.wg.Done()

	for {
		if co.running && !co.CPU.Halted {
			co.CPU.Step()
		}

		select {
		case <-co.done:
			slog.Info("core shutdown")
			return
		case packet := <-co.control:
			co.processPacket(packet)
		default:
		}
	}
}

// Stop signals the run loop to exit and waits for it, with a one
// second timeout fallback.
func (co *Core) Stop() {
	close(co.done)
	done := make(chan struct{})
	go func() {
		co.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return
	case <-time.After(time.Second):
		slog.Warn("timed out waiting for core to stop")
		return
	}
}

func (co *Core) processPacket(packet Packet) {
	switch packet.Msg {
	case Halt:
		co.running = false
	case Resume:
		co.running = true
	case Step:
		n := packet.Count
		if n <= 0 {
			n = 1
		}
		for i := 0; i < n && !co.CPU.Halted; i++ {
			co.CPU.Step()
		}
	}
}
