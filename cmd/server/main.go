package main

import (
	"fmt"
	"os"

	"ctchen222/tictactoe-grid/internal/cli"
)

func main() {
	root := cli.Root()
	root.SetArgs(os.Args[1:])
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
