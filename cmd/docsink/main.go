// Command docsink inspects and manages the log events stored by a docsink appender.
package main

import (
	"os"

	"github.com/exacode/docsink/cmd/docsink/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
