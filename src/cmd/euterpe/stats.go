package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mipimipi/euterpe/src/internal/catalog"
	"github.com/mipimipi/euterpe/src/internal/config"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Scan the music folder and print catalog diagnostics",
	Long:  "Scan once, then report consistency diagnostics (missing covers, ReplayGain, inconsistent track numbers, ...)",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Printf("euterpe cannot report stats: %v\n", err)
			os.Exit(1)
		}

		cat := catalog.NewCatalog()
		sc := catalog.NewScanner(cat, cfg.MusicFolderPath, cfg.CachePath, cfg.Scan.Separator)
		if _, err := sc.Trigger(context.Background()); err != nil {
			fmt.Printf("scan failed: %v\n", err)
			os.Exit(1)
		}

		diag := catalog.NewDiagnostics(cat.Current())
		diag.WriteSummary(os.Stdout)
		fmt.Println()
		diag.AlbumsWithInconsistentTrackNumbers(os.Stdout)
		fmt.Println()
		diag.AlbumsWithMultipleCovers(os.Stdout)
		fmt.Println()
		diag.SongsWithoutAlbum(os.Stdout)
		fmt.Println()
		diag.SongsWithoutCover(os.Stdout)
		fmt.Println()
		diag.SongsWithoutReplayGain(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
