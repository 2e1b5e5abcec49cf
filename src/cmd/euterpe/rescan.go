package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mipimipi/euterpe/src/internal/catalog"
	"github.com/mipimipi/euterpe/src/internal/config"
)

var rescanCmd = &cobra.Command{
	Use:   "rescan",
	Short: "Run a single catalog scan and exit",
	Long:  "Scan the music folder once, print a summary, and exit without serving",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Printf("euterpe cannot rescan: %v\n", err)
			os.Exit(1)
		}

		cat := catalog.NewCatalog()
		sc := catalog.NewScanner(cat, cfg.MusicFolderPath, cfg.CachePath, cfg.Scan.Separator)
		if _, err := sc.Trigger(context.Background()); err != nil {
			fmt.Printf("scan failed: %v\n", err)
			os.Exit(1)
		}

		snap := cat.Current()
		fmt.Printf("songs: %d, albums: %d, artists: %d, playlists: %d\n",
			len(snap.Songs), len(snap.Albums), len(snap.Artists), len(snap.Playlists))
	},
}

func init() {
	rootCmd.AddCommand(rescanCmd)
}
