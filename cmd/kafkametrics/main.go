package main

import (
	"os"

	"github.com/G-Research/kafkametrics/cmd/kafkametrics/cmd"
	"github.com/G-Research/kafkametrics/internal/common"
)

func main() {
	common.ConfigureLogging()
	if err := cmd.RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
