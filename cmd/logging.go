package cmd

import (
	"github.com/achilleasa/polaris-accel/log"
	"github.com/urfave/cli"
)

var logger = log.New("polaris-accel")

// Map the global -v/-vv flags to a log level. The most verbose flag wins.
func verbosity(ctx *cli.Context) log.Level {
	switch {
	case ctx.GlobalBool("vv"):
		return log.Debug
	case ctx.GlobalBool("v"):
		return log.Info
	}
	return log.Notice
}

func setupLogging(ctx *cli.Context) {
	log.SetLevel(verbosity(ctx))
}
