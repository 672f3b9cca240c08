// Command kycctl drives a kycgate server from the terminal: it submits
// verifications, checks health, mints API tokens and follows the audit topic.
package main

import (
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
