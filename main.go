package main

import (
	"github.com/Tim0thy1/stock-tools/internal/cli"
)

func main() {
	cli.Run()
}
