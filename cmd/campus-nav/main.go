package main

import (
	"os"

	"github.com/ritzau/campus-nav/pkg/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.Error("command failed", "error", err)
		os.Exit(1)
	}
}
