package main

import (
	"fmt"
	"os"

	"github.com/goran-ethernal/FlashBatcher/internal/config"
	pkgconfig "github.com/goran-ethernal/FlashBatcher/pkg/config"
	"github.com/spf13/cobra"
)

const (
	version = "1.0.0"
	banner  = `
╔═══════════════════════════════════════════╗
║           FlashBatcher v%s             ║
║   Durable Block Batching Pipeline         ║
╚═══════════════════════════════════════════╝
`
)

var (
	configPath     string
	startBlockFlag string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "flashbatcher",
	Short: "FlashBatcher - durable block batching pipeline",
	Long: `FlashBatcher follows a chain through JSON-RPC, groups committed blocks into
fixed-size batches, stores every batch durably in SQLite and hands pending
batches to a data availability sink.`,
	Version:      version,
	SilenceUsage: true,
	RunE:         runFlashBatcher,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to configuration file")
	rootCmd.Flags().StringVar(&startBlockFlag, "start-block", "",
		"override the first block to ingest (decimal or 0x-prefixed hex)")

	rootCmd.AddCommand(migrateCmd, statusCmd, schemaCmd)
}

func loadConfig() (*pkgconfig.Config, error) {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
