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

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/vantage-emu/vantage/environment"
	"github.com/vantage-emu/vantage/hostmem"
	"github.com/vantage-emu/vantage/kernel"
	"github.com/vantage-emu/vantage/kernel/memory"
	"github.com/vantage-emu/vantage/logger"
	"github.com/vantage-emu/vantage/modalflag"
	"github.com/vantage-emu/vantage/script"
	"github.com/vantage-emu/vantage/statsview"
	"github.com/vantage-emu/vantage/version"
)

// #mainthread
func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.AddSubModes("RUN", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		os.Exit(0)

	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		os.Exit(10)
	}

	switch md.Mode() {
	case "RUN":
		err = run(md)

	case "VERSION":
		err = showVersion(md)
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		os.Exit(20)
	}
}

func run(md *modalflag.Modes) (rerr error) {
	md.NewMode()

	log := md.AddBool("log", false, "echo debugging log to stdout")
	stats := md.AddBool("stats", false, fmt.Sprintf("run stats server (%s)", statsview.Address))
	sim := md.AddBool("sim", false, "simulate the host address space (deterministic addresses)")
	dump := md.AddString("dump", "", "write dot rendering of final memory state to file")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	// set debugging log echo
	if *log {
		logger.SetEcho(os.Stdout)
	} else {
		logger.SetEcho(nil)
	}

	if *stats {
		statsview.Launch(os.Stdout)
	}

	if len(md.RemainingArgs()) != 1 {
		return fmt.Errorf("trace file required for %s mode", md)
	}

	var input io.Reader
	if md.GetArg(0) == "-" {
		input = os.Stdin
	} else {
		f, err := os.Open(md.GetArg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		input = f
	}

	var addressSpace hostmem.Reserver
	if *sim {
		addressSpace = hostmem.NewSim(0)
	} else {
		addressSpace = hostmem.NewNative()
	}

	env, err := environment.NewEnvironment(environment.MainEmulation, addressSpace, nil)
	if err != nil {
		return err
	}

	krn, err := kernel.New(env)
	if err != nil {
		return err
	}
	defer krn.Shutdown()

	// a guest that trips a fatal memory condition takes the whole process
	// down in the real console. here we settle for reporting the reason and
	// a failed exit
	defer func() {
		if r := recover(); r != nil {
			ab, ok := r.(memory.Abort)
			if !ok {
				panic(r)
			}
			rerr = fmt.Errorf("guest aborted: %s", ab.Reason)
		}
	}()

	err = script.Run(krn.Mem, input, os.Stdout)
	if err != nil {
		return err
	}

	if *dump != "" {
		f, err := os.Create(*dump)
		if err != nil {
			return err
		}
		defer f.Close()
		krn.Mem.Visualise(f)
	}

	return nil
}

func showVersion(md *modalflag.Modes) error {
	md.NewMode()

	revision := md.AddBool("v", false, "display revision information")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	ver, rev, _ := version.Version()
	fmt.Printf("%s (%s)\n", version.ApplicationName, ver)
	if *revision {
		fmt.Println(rev)
	}

	return nil
}
