/*
 * rv64emu - Main process.
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

package main

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/rv64emu/emu/bus"
	"github.com/rcornwell/rv64emu/emu/core"
	"github.com/rcornwell/rv64emu/emu/cpu"
	"github.com/rcornwell/rv64emu/emu/elfload"
	"github.com/rcornwell/rv64emu/emu/memory"
	"github.com/rcornwell/rv64emu/emu/monitor"
	"github.com/rcornwell/rv64emu/emu/terminal"
	logger "github.com/rcornwell/rv64emu/util/logger"
)

var Logger *slog.Logger

func loadRaw(c *cpu.CPU, raw []byte) error {
	if len(raw)%4 != 0 {
		return fmt.Errorf("raw image length %d is not a multiple of 4", len(raw))
	}
	words := make([]uint32, len(raw)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(raw[i*4 : i*4+4])
	}
	c.LoadProgram(words)
	return nil
}

func loadELF(c *cpu.CPU, raw []byte) error {
	file, err := elfload.Parse(raw)
	if err != nil {
		return err
	}
	for _, seg := range file.Segments {
		c.LoadSegment(seg.Vaddr, seg.Data, seg.Memsz)
	}
	c.SetPC(file.Entry)
	return nil
}

func main() {
	optRaw := getopt.BoolLong("raw", 'r', "Load image as a raw instruction array")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optMonitor := getopt.BoolLong("monitor", 'm', "Start the interactive monitor console")
	optDebug := getopt.BoolLong("debug", 'd', "Log debug-level output to stderr")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	args := getopt.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: rv64emu [options] <image-path>")
		os.Exit(1)
	}

	var file *os.File
	if *optLogFile != "" {
		file, _ = os.Create(*optLogFile)
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	Logger = slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel, AddSource: false}, optDebug))
	slog.SetDefault(Logger)

	Logger.Info("rv64emu started")

	raw, err := os.ReadFile(args[0])
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}

	term := terminal.NewStdio()
	b := bus.New(memory.DRAMSize, term)
	c := cpu.New(b)

	if *optRaw {
		err = loadRaw(c, raw)
	} else {
		err = loadELF(c, raw)
	}
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}

	co := core.New(c)
	go co.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if *optMonitor {
		monitor.Run(co)
	} else {
		<-sigChan
		fmt.Println("Got quit signal")
	}

	Logger.Info("Shutting down core")
	co.Stop()
	Logger.Info("Core stopped.")
}
