// Command aifix rewrites the IDE's AI service source to the
// getGenerativeModel API.
package main

import (
	"os"

	"github.com/Momin010/MominAI-Beta-1/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
