package main

import (
	"fmt"
	"os"
	"surveycore/internal/di"
	"surveycore/internal/structures"

	"github.com/spf13/pflag"
)

func main() {
	flags := &structures.CliFlags{}
	pflag.StringVarP(&flags.ConfigPath, "config", "c", "config/config.yaml", "path to the config file")
	pflag.BoolVarP(&flags.DebugMode, "debug", "d", false, "enable debug mode")
	pflag.Parse()

	// InitApp serves until a shutdown signal arrives.
	_, cleanup, err := di.InitApp(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "surveycore: %v\n", err)
		os.Exit(1)
	}
	cleanup()
}
