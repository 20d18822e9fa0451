// Package main provides sheetctl, a command-line client for the sheet API.
//
// By default the AP/MP/HEX rules run locally over the API's store endpoints;
// --remote sends cast, rest and resource edits to the server instead.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
