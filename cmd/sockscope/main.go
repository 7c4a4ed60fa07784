package main

import (
	"github.com/Paintersrp/sockscope/internal/cli"
	"github.com/Paintersrp/sockscope/internal/metrics"
)

func main() {
	metrics.EmitBuildInfo()
	cli.Execute()
}
