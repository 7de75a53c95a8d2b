package main

import (
	"context"
	"os"

	"github.com/SmitUplenchwar2687/oscseq/pkg/cli"
)

func main() {
	if err := cli.Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}
