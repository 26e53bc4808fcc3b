// Command gridfields manages the field schema of grids from the command line.
package main

import (
	"os"

	"github.com/mesh-intelligence/gridfields/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
