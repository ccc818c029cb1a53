package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"rovernet/command"
	"rovernet/config"
	"rovernet/journal"
	"rovernet/registry"
	"rovernet/router"
	"rovernet/server"
	"rovernet/store"
)

var (
	flagConfig   string
	flagAddr     string
	flagTickRate int
	flagLegacy   bool
)

// rovernet 入口：启动 Tick 循环与 HTTP + WebSocket 服务
func main() {
	rootCmd := &cobra.Command{
		Use:           "rovernet",
		Short:         "Named-receiver command relay for simulated rovers",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "YAML config file")
	rootCmd.Flags().StringVar(&flagAddr, "addr", ":8080", "server listen address, e.g. :8080")
	rootCmd.Flags().IntVar(&flagTickRate, "tick-rate", 20, "simulation ticks per second")
	rootCmd.Flags().BoolVar(&flagLegacy, "accept-legacy", true, "accept legacy command names and arrays")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	// 命令行显式给出的参数优先于配置文件与环境变量
	if cmd.Flags().Changed("addr") {
		cfg.Addr = flagAddr
	}
	if cmd.Flags().Changed("tick-rate") {
		cfg.TickRateHz = flagTickRate
	}
	if cmd.Flags().Changed("accept-legacy") {
		cfg.AcceptLegacy = flagLegacy
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := server.InitLogger(cfg.Log); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer server.SyncLogger()

	var (
		db *store.Store
		jw *journal.Writer
	)
	deps := server.WorldDeps{Registry: registry.New()}
	if cfg.DBPath != "" {
		db, err = store.Open(cfg.DBPath, server.Log.Named("store"))
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer db.Close()
		deps.Store = db
	}
	var connJournal server.Journal
	if cfg.JournalDir != "" {
		jw = journal.NewWriter(cfg.JournalDir, "traffic")
		defer jw.Close()
		deps.Journal = jw
		connJournal = jw
	}
	conns := server.NewConnManager(connJournal)
	deps.Outbox = conns
	dec := command.NewDecoder(cfg.AcceptLegacy)
	deps.Router = router.New(deps.Registry, dec, server.Log.Named("router"))
	server.Log.Infof("legacy command vocabulary accepted: %v", dec.AcceptsLegacy())

	world := server.NewWorld(server.WorldConfig{
		TickRateHz: cfg.TickRateHz,
		Agent:      cfg.Agent,
		Outbound:   cfg.Outbound,
	}, deps)

	// 先恢复持久化名册，再生成配置中的实体（同名时以配置为准）
	if db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		recs, err := db.LoadAgents(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("load roster: %w", err)
		}
		for _, rec := range recs {
			if _, err := world.Spawn(server.AgentSpec{Name: rec.Name, Owner: rec.Owner, Position: rec.Position}); err != nil {
				server.Log.Warnf("restore %s: %v", rec.Name, err)
			}
		}
	}
	for _, sp := range cfg.Spawn {
		if _, err := world.Spawn(server.AgentSpec{Name: sp.Name, Owner: sp.Owner, Position: sp.Position}); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worldDone := make(chan struct{})
	go func() {
		defer close(worldDone)
		world.Run(ctx)
	}()

	var arrivals server.ArrivalLog
	if db != nil {
		arrivals = db
	}
	mux := server.NewMux(server.NewTransport(world, conns), server.NewAdmin(world, conns, arrivals))
	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		server.Log.Infof("rovernet listening on %s (tick %d Hz)", cfg.Addr, cfg.TickRateHz)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		stop()
		<-worldDone
		return fmt.Errorf("listen: %w", err)
	}

	// 优雅退出（Ctrl+C）
	server.Log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		server.Log.Warnf("http shutdown: %v", err)
	}
	<-worldDone
	return nil
}
