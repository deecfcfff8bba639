package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"linkguard/api/routes"
	"linkguard/cmd/linkguard/scan"
	"linkguard/internal/config"
	"linkguard/internal/dao"
	"linkguard/internal/notification"
	"linkguard/internal/services"
	"linkguard/pkg/hooks"
	"linkguard/pkg/logger"
	"linkguard/pkg/report"
)

const shutdownTimeout = 10 * time.Second

type ServerOpts struct {
	Addr        string
	HandoffFile string
}

func NewServerCommand(loadConfig scan.ConfigLoader) *cobra.Command {
	opts := &ServerOpts{}

	serverCmd := &cobra.Command{
		Use:   "server",
		Short: "Start the LinkGuard web UI",
		Long:  `Start the LinkGuard server serving the scan page and its JSON API`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = opts.Addr
			}
			if cmd.Flags().Changed("handoff-file") {
				cfg.Handoff.File = opts.HandoffFile
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Run(ctx, cfg)
		},
	}

	serverCmd.Flags().StringVarP(&opts.Addr, "addr", "a", config.DefaultServerAddr, "Address to listen on")
	serverCmd.Flags().StringVar(&opts.HandoffFile, "handoff-file", "", "File the host writes a pending scan target to")

	return serverCmd
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config) error {
	log := logger.Default()
	if log.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := hooks.NewRegistry()
	var sender hooks.Sender
	if cfg.Notify.Enabled {
		client, err := notification.NewNotificationClient()
		if err != nil {
			log.WithError(err).Warn("Discord notifications disabled")
		} else {
			defer client.Close()
			sender = client
		}
	}
	scan.InitHooks(registry, log, sender, cfg.Notify.MinTier)

	session := services.NewSession(
		dao.NewScanDAO(cfg.Backend, nil, log),
		services.WithHooks(registry),
		services.WithReportOptions(report.Options{DateLayout: cfg.Report.DateLayout}),
		services.WithTimeout(cfg.Backend.Timeout),
		services.WithLogger(log),
	)
	handoff := services.NewHandoff()

	if cfg.Handoff.File != "" {
		watcher := services.NewHandoffWatcher(cfg.Handoff.File, handoff, log)
		go func() {
			if err := watcher.Run(ctx); err != nil {
				log.WithError(err).Error("Handoff watcher stopped")
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           routes.InitRouter(cfg, session, handoff),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.WithFields(logger.Fields{"addr": cfg.Server.Addr, "backend": cfg.Backend.URL}).Info("LinkGuard server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		log.Info("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	session.Reset()
	return srv.Shutdown(shutdownCtx)
}
