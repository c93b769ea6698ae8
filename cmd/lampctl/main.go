package main

import (
	"github.com/robotalks/livelamp/pkg/cli/sh"

	_ "github.com/robotalks/livelamp/pkg/cli/cmds/lamp"
)

//go-build: CGO_ENABLED=0

func main() {
	sh.Main()
}
