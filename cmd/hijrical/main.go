// Command hijrical converts and inspects Umm al-Qura dates from the shell.
package main

import (
	"fmt"
	"os"

	"github.com/zapponejosh/ummalqura-api/cmd/hijrical/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "hijrical: %v\n", err)
		os.Exit(1)
	}
}
