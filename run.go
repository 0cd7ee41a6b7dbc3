package main

import (
	"fmt"
	"os"
	"runtime/pprof"

	"golang.org/x/sync/errgroup"

	"advance/agb"
	"advance/hw"
)

// emuMain runs the emulator with the given rom.
func emuMain(args Run) {
	cfg := LoadConfigOrDefault()

	biosPath := cfg.General.BiosPath
	if args.Bios != "" {
		biosPath = args.Bios
	}
	swiPolicy := cfg.General.SWIFallback
	if args.SwiFallback != "" {
		swiPolicy = args.SwiFallback
	}
	fallback, err := hw.ParseSWIFallback(swiPolicy)
	checkf(err, "invalid configuration")

	var (
		rom  *agb.Rom
		bios []byte
	)
	var g errgroup.Group
	g.Go(func() error {
		var err error
		rom, err = agb.Open(args.RomPath)
		return err
	})
	if biosPath != "" {
		g.Go(func() error {
			var err error
			bios, err = os.ReadFile(biosPath)
			return err
		})
	}
	checkf(g.Wait(), "failed to load images")

	gba := &GBA{}
	checkf(gba.PowerUp(rom, bios), "error during power up")
	gba.Reset()
	gba.CPU.SWIFallback = fallback

	if args.Trace != nil {
		gba.CPU.SetTraceOutput(args.Trace)
		defer args.Trace.Close()
	}

	if args.CPUProfile != "" {
		f, err := os.Create(args.CPUProfile)
		checkf(err, "failed to create cpu profile file")
		checkf(pprof.StartCPUProfile(f), "failed to start cpu profile")
		defer func() {
			pprof.StopCPUProfile()
			f.Close()
			fmt.Println("CPU profile written to", args.CPUProfile)
		}()
	}

	for frame := 0; args.Frames == 0 || frame < args.Frames; frame++ {
		gba.RunFrame()
		if gba.CPU.Halted() {
			break
		}
	}
}
