// Package main provides the entry point for the serena agent server.
package main

import (
	"fmt"
	"os"

	"serena/cmd/serena/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
