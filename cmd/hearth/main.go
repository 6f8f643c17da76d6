// Command hearth runs, packs and inspects hot-reloadable code units.
//
//	hearth run     [-config hearth.hcl] [-unit game.wasm] [-profile cpu|mem]
//	hearth pack    -manifest units.hcl -o game.wasm
//	hearth inspect game.wasm
package main

import (
	"fmt"
	"os"

	"github.com/phanxgames/hearth/hotreload"
)

const usage = `Usage: hearth <command> [flags]

Commands:
  run      open a window and hot-reload the configured unit
  pack     build a unit image from an HCL component manifest
  inspect  load a unit and list its components

Run "hearth <command> -h" for command flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "run":
		err = runCmd(args)
	case "pack":
		err = packCmd(args)
	case "inspect":
		err = inspectCmd(args)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hotreload.IsFatal(err) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}
