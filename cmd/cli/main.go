package main

import (
	"context"
	"os"

	"github.com/dkrasnovs/timetrack/internal/buildinfo"
	"github.com/dkrasnovs/timetrack/internal/cli"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	if err := cli.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
