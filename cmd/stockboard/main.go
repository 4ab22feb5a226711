package main

import (
	"github.com/dvega/stockboard/internal/cli"
)

func main() {
	cli.Run()
}
