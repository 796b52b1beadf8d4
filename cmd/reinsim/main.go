// Package main is the entry point for the reinsim command line tool.
package main

import "github.com/aristath/reinsim/internal/cli"

func main() {
	cli.Execute()
}
