package main

import (
	"github.com/playnvp/nvpduel/internal/cli"
)

func main() {
	cli.Execute()
}
