package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var preamble = `euterpe ` + Version + `

euterpe is a single-user, single-server music streaming backend: a
filesystem-backed catalog, playlist store and on-demand transcoding
pipeline, with no bundled protocol adapter.

euterpe comes with ABSOLUTELY NO WARRANTY. This is free software, and you
are welcome to redistribute it under certain conditions.`

var cfgFile string

var rootCmd = &cobra.Command{
	Use:     "euterpe",
	Short:   "euterpe music catalog service",
	Long:    preamble,
	Version: Version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "/etc/euterpe/config.json", "path to the configuration file")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
}
