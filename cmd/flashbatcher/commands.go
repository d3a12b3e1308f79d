package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/goran-ethernal/FlashBatcher/internal/common"
	"github.com/goran-ethernal/FlashBatcher/internal/logger"
	"github.com/goran-ethernal/FlashBatcher/internal/migrations"
	"github.com/goran-ethernal/FlashBatcher/internal/store"
	"github.com/goran-ethernal/FlashBatcher/internal/types"
	pkgconfig "github.com/goran-ethernal/FlashBatcher/pkg/config"
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the batch store schema",
	Long:  `Create or upgrade the batches table in the configured database. Safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if err := migrations.RunMigrations(cfg.DB); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "batch store schema is up to date: %s\n", cfg.DB.Path)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show batch counts per status",
	Long:  `Print the number of stored batches per status and the highest batched block.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		batchStore, err := store.Open(cfg.DB, nil, logger.NewComponentLoggerFromConfig(common.ComponentBatchStore, cfg.Logging))
		if err != nil {
			return err
		}
		defer batchStore.Close()

		return printStatus(cmd.Context(), cmd.OutOrStdout(), batchStore)
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the configuration JSON schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeConfigSchema(cmd.OutOrStdout())
	},
}

type statusReader interface {
	StatusCounts(ctx context.Context) (map[types.BatchStatus]uint64, error)
	LastBatchedBlock(ctx context.Context) (uint64, bool, error)
}

func printStatus(ctx context.Context, w io.Writer, reader statusReader) error {
	counts, err := reader.StatusCounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count batches: %w", err)
	}

	fmt.Fprintln(w, "Batches:")
	for _, status := range types.AllBatchStatuses {
		fmt.Fprintf(w, "  %-11s %d\n", status, counts[status])
	}

	last, ok, err := reader.LastBatchedBlock(ctx)
	if err != nil {
		return fmt.Errorf("failed to read last batched block: %w", err)
	}

	if ok {
		fmt.Fprintf(w, "Last batched block: %d\n", last)
	} else {
		fmt.Fprintln(w, "Last batched block: none")
	}

	return nil
}

func writeConfigSchema(w io.Writer) error {
	reflector := &jsonschema.Reflector{
		ExpandedStruct: true,
	}

	schema := reflector.Reflect(&pkgconfig.Config{})
	schema.Title = "FlashBatcher configuration"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config schema: %w", err)
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}
