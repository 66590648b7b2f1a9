package main

import (
	"os"

	"github.com/complyviz/complyviz/internal/cli"
	"github.com/complyviz/complyviz/pkg/buildinfo"
)

func main() {
	cli.SetVersion(buildinfo.Version, buildinfo.Commit, buildinfo.Date)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
