package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mipimipi/euterpe/src/internal/config"
	"github.com/mipimipi/euterpe/src/internal/service"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the euterpe service",
	Long:  "Scan the music folder and keep the catalog up to date until stopped",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Printf("euterpe cannot be run: %v\n", err)
			os.Exit(1)
		}
		if err := service.Run(Version, cfg); err != nil {
			fmt.Printf("euterpe cannot be run: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
