// Package main is the entry point for the gstdesk CLI.
package main

import (
	"os"

	"gstdesk/cmd/gstdesk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
