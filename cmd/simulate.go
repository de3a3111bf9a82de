package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"bellalarm/internal/config"
	"bellalarm/internal/handlers"
	"bellalarm/internal/logger"
	"bellalarm/internal/repository"
	"bellalarm/internal/repository/db"
	"bellalarm/internal/server"
	"bellalarm/internal/service"
)

const shutdownTimeout = 10 * time.Second

func newSimulateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a simulated bell device",
		Long: `Serves the device gateway on /ws plus a small REST API, keeping the
motor and alarm state in SQLite. The alarm rings once a day at the set time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(a.cfg)
		},
	}

	cmd.Flags().String("port", "", "listen port (default from device.port)")
	cmd.Flags().String("db", "", "sqlite file (default from device.db_path)")
	_ = a.v.BindPFlag("device.port", cmd.Flags().Lookup("port"))
	_ = a.v.BindPFlag("device.db_path", cmd.Flags().Lookup("db"))
	return cmd
}

func runSimulate(cfg *config.Config) error {
	log := logger.Get(cfg.Log.Level)
	if cfg.Log.Level != logger.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	// open DB
	conn, err := db.InitDB(cfg.Device.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, service.SimulatorParams{
		StopDuration: cfg.Device.StopDuration,
		RingDuration: cfg.Device.RingDuration,
		Log:          log.Named("simulator"),
	})
	apiHandler := handlers.NewHandler(services, log.Named("http")).WithStatusInterval(cfg.Device.WSInterval)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go services.Simulator.Run(ctx, cfg.Device.Tick)

	srv := &server.Server{}
	errc := runHTTPServer(srv, cfg.Device.Port, apiHandler, log)
	log.Infow("simulator_started", "port", cfg.Device.Port, "db", cfg.Device.DBPath)

	return waitForShutdown(cancel, srv, errc, log)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) <-chan error {
	errc := make(chan error, 1)
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Errorw("error starting server", "err", err)
			errc <- err
		}
		close(errc)
	}()
	return errc
}

// waitForShutdown blocks until a termination signal or a server failure,
// then stops background goroutines and drains in-flight requests.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, errc <-chan error, log *logger.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case err, ok := <-errc:
		cancel()
		if ok {
			return err
		}
		return nil
	}

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	return srv.Shutdown(ctx)
}
