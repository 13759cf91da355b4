package main

import (
	"os"

	"github.com/roach88/normjump/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
