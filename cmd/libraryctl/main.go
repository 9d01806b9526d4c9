package main

import (
	"os"

	"github.com/hitoshi/librarium/internal/client/cli"
)

func main() {
	os.Exit(cli.Execute())
}
