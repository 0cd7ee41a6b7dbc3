package main

import (
	"fmt"
	"os"

	"advance/agb"
)

const version = "0.1.0"

func main() {
	cli := parseArgs(os.Args[1:])

	switch cli.mode {
	case romInfosMode:
		rom, err := agb.Open(cli.RomInfos.RomPath)
		checkf(err, "failed to open rom")
		rom.PrintInfos(os.Stdout)
	case versionMode:
		fmt.Println("advance", version)
	default:
		emuMain(cli.Run)
	}
}
