package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goran-ethernal/FlashBatcher/internal/batcher"
	"github.com/goran-ethernal/FlashBatcher/internal/common"
	"github.com/goran-ethernal/FlashBatcher/internal/db"
	"github.com/goran-ethernal/FlashBatcher/internal/driver"
	"github.com/goran-ethernal/FlashBatcher/internal/logger"
	"github.com/goran-ethernal/FlashBatcher/internal/metrics"
	"github.com/goran-ethernal/FlashBatcher/internal/rpc"
	"github.com/goran-ethernal/FlashBatcher/internal/source"
	"github.com/goran-ethernal/FlashBatcher/internal/store"
	"github.com/goran-ethernal/FlashBatcher/internal/submitter"
	"github.com/goran-ethernal/FlashBatcher/pkg/api"
	pkgconfig "github.com/goran-ethernal/FlashBatcher/pkg/config"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func runFlashBatcher(cmd *cobra.Command, args []string) error {
	fmt.Printf(banner, version)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.NewComponentLoggerFromConfig(common.ComponentDriver, cfg.Logging)
	logger.SetDefaultLogger(log)
	componentLog := func(component string) *logger.Logger {
		return logger.NewComponentLoggerFromConfig(component, cfg.Logging)
	}

	log.Infof("opening batch store at %s", cfg.DB.Path)
	database, err := db.NewSQLiteDBFromConfig(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer database.Close()

	dbMaintenance := db.NewMaintenanceCoordinator(
		cfg.DB.Path,
		database,
		cfg.Maintenance,
		componentLog(common.ComponentMaintenance),
	)

	batchStore := store.New(database, dbMaintenance, componentLog(common.ComponentBatchStore))
	if err := batchStore.Init(); err != nil {
		return err
	}

	startBlock, err := resolveStartBlock(ctx, cfg.Source, batchStore)
	if err != nil {
		return err
	}

	log.Info("connecting to Ethereum node...")
	ethClient, err := rpc.NewClient(ctx, cfg.Source.RPCURL, cfg.Source.Retry)
	if err != nil {
		return fmt.Errorf("failed to create RPC client: %w", err)
	}
	defer ethClient.Close()
	log.Infof("connected to Ethereum node: %s", cfg.Source.RPCURL)

	src, err := source.New(ethClient, cfg.Source, startBlock, componentLog(common.ComponentSource))
	if err != nil {
		return fmt.Errorf("failed to create notification source: %w", err)
	}

	sink, err := submitter.NewSink(cfg.Submitter.Sink, componentLog(common.ComponentSubmitter))
	if err != nil {
		return err
	}
	sub := submitter.New(batchStore, sink, cfg.Submitter, componentLog(common.ComponentSubmitter))

	acc := batcher.NewAccumulator(
		cfg.Batcher.BatchSize,
		cfg.Batcher.MaxPendingBlocks,
		componentLog(common.ComponentAccumulator),
	)
	writer := batcher.NewWriter(batchStore, componentLog(common.ComponentBatchWriter))
	drv := driver.New(src, acc, writer, sub, log)

	if err := dbMaintenance.Start(ctx); err != nil {
		return fmt.Errorf("failed to start database maintenance: %w", err)
	}
	defer func() {
		if err := dbMaintenance.Stop(); err != nil {
			log.Warnf("failed to stop database maintenance: %v", err)
		}
	}()

	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(cfg.Metrics, cfg.DB.Path, log)
		if err := metricsServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		defer func() {
			if err := metricsServer.Stop(context.Background()); err != nil {
				log.Warnf("failed to stop metrics server: %v", err)
			}
		}()
	}

	// batches left Pending by a previous run are retried before new ones arrive
	if report, err := sub.Sweep(ctx); err != nil {
		log.Warnf("startup sweep failed: %v", err)
	} else if report.Pending > 0 {
		log.Infof("startup sweep: %d pending, %d submitted", report.Pending, report.Submitted)
	}

	sub.Start(ctx)
	defer sub.Stop()

	return runPipeline(ctx, cfg, drv, batchStore, acc, componentLog(common.ComponentAPI))
}

// runPipeline runs the driver and the API until the driver ends or ctx is cancelled.
func runPipeline(
	ctx context.Context,
	cfg *pkgconfig.Config,
	drv *driver.Driver,
	batchStore *store.BatchStore,
	acc *batcher.Accumulator,
	apiLog *logger.Logger,
) error {
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	g, gctx := errgroup.WithContext(runCtx)

	if cfg.API != nil && cfg.API.Enabled {
		apiServer := api.NewServer(cfg.API, batchStore, acc, apiLog)
		g.Go(func() error {
			return apiServer.Start(gctx)
		})
	}

	g.Go(func() error {
		// the API has nothing left to serve once the pipeline stops
		defer cancelRun()

		metrics.ComponentHealthSet(common.ComponentDriver, true)
		err := drv.Run(gctx)
		metrics.ComponentHealthSet(common.ComponentDriver, false)

		if err != nil && errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil
		}
		if err != nil {
			metrics.ErrorInc(common.ComponentDriver, "fatal")
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	fmt.Println("\nFlashBatcher stopped")
	return nil
}

// resolveStartBlock applies the configured start block, resume-from-store and the --start-block override.
func resolveStartBlock(ctx context.Context, cfg pkgconfig.SourceConfig, batchStore *store.BatchStore) (uint64, error) {
	if startBlockFlag != "" {
		start, err := common.ParseUint64orHex(&startBlockFlag)
		if err != nil {
			return 0, fmt.Errorf("invalid --start-block: %w", err)
		}
		return start, nil
	}

	last, ok, err := batchStore.LastBatchedBlock(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read last batched block: %w", err)
	}

	return source.ResolveStartBlock(cfg, last, ok), nil
}
