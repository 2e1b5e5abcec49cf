package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mipimipi/euterpe/src/internal/config"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Verify the euterpe configuration",
	Long:  "Check the euterpe configuration file for completeness and consistency",
	Run: func(cmd *cobra.Command, args []string) {
		if err := config.Test(cfgFile); err != nil {
			fmt.Printf("%v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(testCmd)
}
