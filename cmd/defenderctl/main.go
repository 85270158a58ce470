// Command defenderctl inspects and mutates the defender state directory.
package main

import (
	"os"

	"github.com/solomonsojay/TaskDefender-sub000/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
