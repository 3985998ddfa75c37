// chatexport - archive role-tagged conversations and export them to
// TXT, JSON, CSV, Markdown, or HTML.
package main

import (
	"fmt"
	"os"

	"chatexport/internal/cli"
)

func main() {
	args, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'chatexport help' for usage.")
		os.Exit(cli.ExitUsage)
	}

	os.Exit(cli.Run(args))
}
