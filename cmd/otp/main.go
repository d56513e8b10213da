package main

import (
	"context"
	"os"

	"github.com/awnumar/memguard"

	"github.com/dmitrijs2005/otpkeeper/internal/cli"
)

func main() {
	memguard.CatchInterrupt()

	code := cli.Execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr)

	memguard.Purge()
	os.Exit(code)
}
