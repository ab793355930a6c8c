// Command streamcalc evaluates expressions with the rewrite-rule engine.
package main

import (
	"os"

	"github.com/roach88/streamcalc/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
