// This file is part of Vantage.
//
// Vantage is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Vantage is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Vantage.  If not, see <https://www.gnu.org/licenses/>.

// Package script replays a textual trace of guest memory syscalls against a
// live kernel. Traces are handy when reproducing the memory behaviour of a
// guest program without running the program itself.
//
// A trace is a sequence of lines. Blank lines and lines beginning with #
// are ignored. Numbers may be decimal or 0x-prefixed hexadecimal. The
// commands are:
//
//	size
//	allocdirect <searchStart> <searchEnd> <len> <align> <type>
//	releasedirect <start> <len>
//	mapdirect <hint> <len> <prot> <physAddr> <align>
//	mapflexible <hint> <len> <prot> <name>
//	munmap <vaddr> <len>
//	query <addr>
//	dump
//
// Recoverable errors from the kernel are part of the trace output, not a
// script failure: the corresponding guest status word is printed alongside
// the result of every call.
package script

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vantage-emu/vantage/curated"
	"github.com/vantage-emu/vantage/kernel/memory"
)

// error patterns returned by the Run() function.
const (
	// the trace could not be parsed. the value is the line number followed
	// by an explanation
	ParseError = "script: line %d: %v"
)

// Run replays the trace read from input against the given memory subsystem,
// printing the result of every call to output.
func Run(mem *memory.Memory, input io.Reader, output io.Writer) error {
	scanner := bufio.NewScanner(input)

	lineNum := 0
	for scanner.Scan() {
		lineNum++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if err := run(mem, line, output); err != nil {
			return curated.Errorf(ParseError, lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return curated.Errorf(ParseError, lineNum, err)
	}

	return nil
}

func run(mem *memory.Memory, line string, output io.Writer) error {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "size":
		fmt.Fprintf(output, "size = %#x\n", mem.DirectMemorySize())

	case "allocdirect":
		v, err := numbers(args, 5)
		if err != nil {
			return err
		}
		phys, err := mem.AllocateDirectMemory(int64(v[0]), int64(v[1]), v[2], v[3], int(v[4]))
		report(output, "allocdirect", err, "phys=%#x", phys)

	case "releasedirect":
		v, err := numbers(args, 2)
		if err != nil {
			return err
		}
		err = mem.ReleaseDirectMemory(int64(v[0]), v[1])
		report(output, "releasedirect", err, "")

	case "mapdirect":
		v, err := numbers(args, 5)
		if err != nil {
			return err
		}
		addr, err := mem.MapDirectMemory(v[0], v[1], int(v[2]), 0, int64(v[3]), v[4])
		report(output, "mapdirect", err, "addr=%#x", addr)

	case "mapflexible":
		if len(args) != 4 {
			return fmt.Errorf("mapflexible: wanted 4 arguments, got %d", len(args))
		}
		v, err := numbers(args[:3], 3)
		if err != nil {
			return err
		}
		addr, err := mem.MapNamedFlexibleMemory(v[0], v[1], int(v[2]), 0, args[3])
		report(output, "mapflexible", err, "addr=%#x", addr)

	case "munmap":
		v, err := numbers(args, 2)
		if err != nil {
			return err
		}
		err = mem.Munmap(v[0], v[1])
		report(output, "munmap", err, "")

	case "query":
		v, err := numbers(args, 1)
		if err != nil {
			return err
		}
		info, err := mem.QueryMemoryProtection(v[0])
		report(output, "query", err, "start=%#x end=%#x prot=%#x", info.Start, info.End, info.Prot)

	case "dump":
		mem.Visualise(output)

	default:
		return fmt.Errorf("unrecognised command (%s)", cmd)
	}

	return nil
}

// numbers parses want numeric arguments, decimal or 0x-prefixed.
func numbers(args []string, want int) ([]uint64, error) {
	if len(args) != want {
		return nil, fmt.Errorf("wanted %d arguments, got %d", want, len(args))
	}

	v := make([]uint64, len(args))
	for i, a := range args {
		var err error

		// negative numbers appear in traces that exercise argument
		// validation
		if strings.HasPrefix(a, "-") {
			var n int64
			n, err = strconv.ParseInt(a, 0, 64)
			v[i] = uint64(n)
		} else {
			v[i], err = strconv.ParseUint(a, 0, 64)
		}

		if err != nil {
			return nil, fmt.Errorf("bad number (%s)", a)
		}
	}

	return v, nil
}

// report prints the outcome of one call, including the guest status word for
// recoverable errors.
func report(output io.Writer, cmd string, err error, format string, values ...interface{}) {
	if err != nil {
		fmt.Fprintf(output, "%s = error %#x (%v)\n", cmd, memory.Errno(err), err)
		return
	}

	if format == "" {
		fmt.Fprintf(output, "%s = ok\n", cmd)
		return
	}

	fmt.Fprintf(output, "%s = ok %s\n", cmd, fmt.Sprintf(format, values...))
}
