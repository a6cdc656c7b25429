package main

import (
	"os"

	"github.com/fudanglp/docker-layers/cmd"
	"github.com/fudanglp/docker-layers/internal/errors"
	"github.com/fudanglp/docker-layers/internal/logging"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if !errors.IsSilent(err) {
			logging.UserError("%v", err)
		}
		os.Exit(errors.GetExitCode(err))
	}
}
