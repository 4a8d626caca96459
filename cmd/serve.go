package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/appconfig"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/logging"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/middleware"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/routers"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Installs the bundle and serves the HTTP API and the cronjob",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() error {
	//Setup default timezone for time.Now() calls
	time.Local = time.UTC

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := newApplication(ctx, true)
	if err != nil {
		return err
	}
	appconfig.Instance.ScheduleClosing(app)

	app.install()
	app.scheduler.Start(app.installer.RunCronjob)

	router := routers.SetupRouter(appconfig.Instance.AdminToken, app.installer, app.dispatcher, app.registry, app.callsCache)
	server := &http.Server{
		Addr:              appconfig.Instance.Authority,
		Handler:           middleware.Cors(router),
		ReadTimeout:       time.Second * 60,
		ReadHeaderTimeout: time.Second * 60,
		IdleTimeout:       time.Second * 65,
	}

	//listen to shutdown signal to free up all resources
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)
	go func() {
		<-c
		logging.Info("🤖 Shutting down the server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logging.Errorf("Error shutting down the server: %v", err)
		}
	}()

	logging.Info("🚀 Started server: " + appconfig.Instance.Authority)
	err = server.ListenAndServe()
	appconfig.Instance.Close()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
