package main

import (
	"github.com/robotalks/ftlink/pkg/cli/sh"
	"github.com/robotalks/ftlink/pkg/l1/env"

	_ "github.com/robotalks/ftlink/pkg/cli/cmds/all"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
