// Command critpath schedules task networks with the critical path method
// and serves them, with a Kanban board, over HTTP.
package main

import (
	"os"

	"github.com/AbdelazizMoustafa10m/critpath/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
