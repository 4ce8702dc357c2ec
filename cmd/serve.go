package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/finprospect/internal/scheduler"
	"github.com/sells-group/finprospect/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the query API and run the background refresh loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := server.New(port, env.Store, env.Orch, env.Searcher)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.Run(gctx)
		})

		if cfg.Scheduler.Enabled {
			schedCfg := scheduler.Config{
				Interval:  time.Duration(cfg.Scheduler.IntervalHours) * time.Hour,
				WarmUp:    time.Duration(cfg.Scheduler.WarmUpSecs) * time.Second,
				BatchSize: cfg.Scheduler.BatchSize,
				Delay:     time.Duration(cfg.Scheduler.DelayMillis) * time.Millisecond,
			}
			if cfg.Scheduler.MinTurnover > 0 {
				v := cfg.Scheduler.MinTurnover
				schedCfg.MinTurnover = &v
			}
			if cfg.Scheduler.MaxTurnover > 0 {
				v := cfg.Scheduler.MaxTurnover
				schedCfg.MaxTurnover = &v
			}
			sched := scheduler.New(schedCfg, env.Store, env.Orch)
			g.Go(func() error {
				return sched.Run(gctx)
			})
		} else {
			zap.L().Info("scheduler disabled")
		}

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
