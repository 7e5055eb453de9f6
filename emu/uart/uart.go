/*
 * rv64emu - 16550-subset UART.
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

// Package uart implements a 16550-subset serial device: 16-byte RX/TX
// FIFOs, a one-byte transmit shift register, and the register subset
// a minimal boot console needs.
package uart

// Base and Size locate the UART MMIO window on the bus.
const (
	Base uint64 = 0x1000_0000
	Size uint64 = 8

	fifoCap = 16
)

// Register offsets from Base.
const (
	regRBRTHR = 0
	regIER    = 1
	regIIRFCR = 2
	regLCR    = 3
	regLSR    = 5
	regSCR    = 7
)

// IER bits.
const (
	IERRxEnable = 1 << 0
	IERTxEnable = 1 << 1
)

// LSR bits.
const (
	LSRDR   = 1 << 0
	LSRTHRE = 1 << 5
	LSRTEMT = 1 << 6
)

// Terminal is the two-method host-I/O contract the UART drives: Read
// drains at most one pending input byte, Write emits one output byte.
type Terminal interface {
	Read() (byte, bool)
	Write(byte)
}

// Uart is a 16550-subset serial device.
type Uart struct {
	rxFifo []byte
	txFifo []byte
	tsr    *byte

	ier byte
	iir byte
	lcr byte
	scr byte
	lsr byte

	terminal Terminal
}

// New returns a UART with empty FIFOs, driving term for input/output.
func New(term Terminal) *Uart {
	u := &Uart{
		iir:      0xC0 | 0x01,
		lsr:      LSRTHRE | LSRTEMT,
		terminal: term,
	}
	return u
}

// Read8 services a 1-byte read at offset within the UART window.
func (u *Uart) Read8(offset uint64) byte {
	switch offset {
	case regRBRTHR:
		b := u.rxFifoPop()
		u.updateLSR()
		u.updateIIR()
		return b
	case regIER:
		return u.ier & 0x0F
	case regIIRFCR:
		return u.iir
	case regLCR:
		return u.lcr
	case regLSR:
		u.updateLSR()
		return u.lsr
	case regSCR:
		return u.scr
	default:
		return 0
	}
}

// Write8 services a 1-byte write at offset within the UART window.
func (u *Uart) Write8(offset uint64, value byte) {
	switch offset {
	case regRBRTHR:
		u.txFifoPush(value)
		u.transmit()
		u.updateLSR()
		u.updateIIR()
	case regIER:
		u.ier = (u.ier & 0xF0) | (value & 0x0F)
	case regIIRFCR:
		if value&0x02 != 0 {
			u.rxFifo = u.rxFifo[:0]
		}
		if value&0x04 != 0 {
			u.txFifo = u.txFifo[:0]
		}
		u.updateLSR()
		u.updateIIR()
	case regLCR:
		u.lcr = value
	case regSCR:
		u.scr = value
	}
}

// PushInput is the host-test injection hook: it behaves exactly like
// a byte arriving from the terminal.
func (u *Uart) PushInput(b byte) {
	u.rxFifoPush(b)
	u.updateLSR()
	u.updateIIR()
}

// ReceiveInput drains at most one byte from the terminal into the RX
// FIFO, called once per CPU step.
func (u *Uart) ReceiveInput() {
	if u.terminal == nil {
		return
	}
	b, ok := u.terminal.Read()
	if !ok {
		return
	}
	u.rxFifoPush(b)
	u.updateLSR()
	u.updateIIR()
}

// InterruptPending reports whether the UART's interrupt line is
// asserted, per the IIR priority computed by updateIIR.
func (u *Uart) InterruptPending() bool {
	return u.iir&0x0F != 0x01
}

func (u *Uart) rxFifoPush(b byte) {
	if len(u.rxFifo) >= fifoCap {
		return
	}
	u.rxFifo = append(u.rxFifo, b)
}

func (u *Uart) rxFifoPop() byte {
	if len(u.rxFifo) == 0 {
		return 0
	}
	b := u.rxFifo[0]
	u.rxFifo = u.rxFifo[1:]
	return b
}

func (u *Uart) txFifoPush(b byte) {
	if len(u.txFifo) >= fifoCap {
		return
	}
	u.txFifo = append(u.txFifo, b)
}

// transmit moves one byte from the TX FIFO into the shift register,
// then shifts it straight out to the terminal. Both steps happen
// within a single THR write, so one write emits at most one byte.
func (u *Uart) transmit() {
	if u.tsr == nil && len(u.txFifo) > 0 {
		b := u.txFifo[0]
		u.txFifo = u.txFifo[1:]
		u.tsr = &b
	}
	if u.tsr != nil {
		if u.terminal != nil {
			u.terminal.Write(*u.tsr)
		}
		u.tsr = nil
	}
}

func (u *Uart) updateLSR() {
	u.lsr &^= LSRDR | LSRTHRE | LSRTEMT
	if len(u.rxFifo) > 0 {
		u.lsr |= LSRDR
	}
	if len(u.txFifo) == 0 {
		u.lsr |= LSRTHRE
		if u.tsr == nil {
			u.lsr |= LSRTEMT
		}
	}
}

func (u *Uart) updateIIR() {
	switch {
	case u.ier&IERRxEnable != 0 && len(u.rxFifo) > 0:
		u.iir = 0xC0 | 0x04
	case u.ier&IERTxEnable != 0 && len(u.txFifo) == 0:
		u.iir = 0xC0 | 0x02
	default:
		u.iir = 0xC0 | 0x01
	}
}
