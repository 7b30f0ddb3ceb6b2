package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	apiserver "github.com/tankops/bath-planner/internal/api_server"
	"github.com/tankops/bath-planner/internal/config"
	"github.com/tankops/bath-planner/internal/correction"
	"github.com/tankops/bath-planner/internal/events"
	"github.com/tankops/bath-planner/internal/modulefile"
	"github.com/tankops/bath-planner/internal/service"
	"github.com/tankops/bath-planner/internal/store"
	"github.com/tankops/bath-planner/internal/store/model"
	"github.com/tankops/bath-planner/pkg/metrics"
	"github.com/tankops/bath-planner/pkg/migrations"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bath planner api",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, done, err := setup()
		if err != nil {
			zap.S().Fatalw("reading configuration", "error", err)
		}
		defer done()

		zap.S().Info("Starting API service")
		defer zap.S().Info("API service stopped")

		zap.S().Info("Initializing data store")
		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Fatalw("initializing data store", "error", err)
		}

		if err := migrations.MigrateStore(db, cfg.Database.Type, cfg.Service.MigrationFolder); err != nil {
			zap.S().Fatalw("running migrations", "error", err)
		}

		s := store.NewStore(db)
		defer s.Close()

		metrics.RegisterStoreStatsCollector(s)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		moduleSrv := service.NewModuleService(s, service.WithModulesFile(cfg.Service.ModulesFile))
		if err := moduleSrv.ImportFile(ctx); err != nil {
			zap.S().Warnw("modules file not imported, keeping the stored configuration", "file", cfg.Service.ModulesFile, "error", err)
		}
		if cfg.Service.Seed {
			if err := s.Seed(ctx, defaultModules()); err != nil {
				zap.S().Fatalw("seeding modules", "error", err)
			}
		}

		correctionOpts := []service.CorrectionServiceOption{
			service.WithTolerance(cfg.Service.Correction.RelTolerance, cfg.Service.Correction.AbsTolerance),
			service.WithHistoryLimit(cfg.Service.Correction.HistoryLimit),
		}
		if cfg.Service.Events.Enabled {
			producer := events.NewEventProducer(&events.StdoutWriter{}, events.WithOutputTopic(cfg.Service.Events.Topic))
			defer func() { _ = producer.Close() }()
			correctionOpts = append(correctionOpts, service.WithEventWriter(producer))
		}
		correctionSrv := service.NewCorrectionService(s, correctionOpts...)

		if cfg.Service.WatchModulesFile && cfg.Service.ModulesFile != "" {
			go watchModulesFile(ctx, cfg, moduleSrv)
		}

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.Address)
			if err != nil {
				zap.S().Fatalw("creating listener", "error", err)
			}

			server := apiserver.New(cfg, listener, moduleSrv, correctionSrv)
			if err := server.Run(ctx); err != nil {
				zap.S().Fatalw("Error running server", "error", err)
			}
		}()

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.MetricsAddress)
			if err != nil {
				zap.S().Fatalw("creating listener", "error", err)
			}

			metricsServer := apiserver.NewMetricServer(cfg.Service.MetricsAddress, listener)
			if err := metricsServer.Run(ctx); err != nil {
				zap.S().Fatalw("failed to run metrics server", "error", err)
			}
		}()

		<-ctx.Done()
		return nil
	},
}

// watchModulesFile reloads the configuration whenever the modules file is edited by hand.
func watchModulesFile(ctx context.Context, cfg *config.Config, moduleSrv *service.ModuleService) {
	watcher := modulefile.NewWatcher(cfg.Service.ModulesFile, func(modules []correction.Module, err error) {
		if err == nil {
			err = moduleSrv.Import(ctx, modules)
		}
		if err != nil {
			metrics.IncreaseModulesFileReloadMetric("failure")
			zap.S().Named("modules_watcher").Warnw("modules file not reloaded", "file", cfg.Service.ModulesFile, "error", err)
			return
		}
		metrics.IncreaseModulesFileReloadMetric("success")
		zap.S().Named("modules_watcher").Infow("modules file reloaded", "file", cfg.Service.ModulesFile, "count", len(modules))
	})
	if err := watcher.Run(ctx); err != nil {
		zap.S().Named("modules_watcher").Errorw("watching modules file", "error", err)
	}
}

func defaultModules() model.ModuleList {
	defaults := modulefile.Defaults()
	modules := make(model.ModuleList, 0, len(defaults))
	for i, m := range defaults {
		modules = append(modules, model.NewModule(m, i))
	}
	return modules
}

func newListener(address string) (net.Listener, error) {
	if address == "" {
		address = "localhost:0"
	}
	return net.Listen("tcp", address)
}
