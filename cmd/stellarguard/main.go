package main

import (
	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/cli"
)

func main() {
	cli.Execute()
}
