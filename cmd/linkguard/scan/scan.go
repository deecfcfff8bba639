package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"linkguard/internal/config"
	"linkguard/internal/dao"
	"linkguard/internal/notification"
	"linkguard/internal/services"
	apperrors "linkguard/pkg/errors"
	"linkguard/pkg/hooks"
	"linkguard/pkg/logger"
	"linkguard/pkg/render"
	"linkguard/pkg/report"
	"linkguard/pkg/risk"
)

// ConfigLoader returns the effective configuration.
type ConfigLoader func() (*config.Config, error)

// Options holds the scan command flags.
type Options struct {
	Output string
	Notify bool
}

// App runs one scan from the command line.
type App struct {
	config   *config.Config
	opts     *Options
	logger   *logger.Logger
	out      io.Writer
	notifier *notification.NotificationClient
}

func NewApp(cfg *config.Config, opts *Options, out io.Writer) *App {
	appLogger := logger.Default()

	app := &App{config: cfg, opts: opts, logger: appLogger, out: out}
	if opts.Notify || cfg.Notify.Enabled {
		client, err := notification.NewNotificationClient()
		if err != nil {
			appLogger.WithError(err).Warn("Discord notifications disabled")
		} else {
			app.notifier = client
			appLogger.Info("Discord notifications enabled")
		}
	}
	return app
}

// Close cleans up application resources
func (a *App) Close() error {
	if a.notifier != nil {
		return a.notifier.Close()
	}
	return nil
}

// Run submits target and renders the outcome. A failed scan prints the
// error panel and returns the backend message as an error.
func (a *App) Run(ctx context.Context, target string) error {
	format, err := render.ParseFormat(a.opts.Output)
	if err != nil {
		return err
	}

	registry := hooks.NewRegistry()
	var sender hooks.Sender
	if a.notifier != nil {
		sender = a.notifier
	}
	InitHooks(registry, a.logger, sender, a.config.Notify.MinTier)

	session := services.NewSession(
		dao.NewScanDAO(a.config.Backend, nil, a.logger),
		services.WithHooks(registry),
		services.WithReportOptions(report.Options{DateLayout: a.config.Report.DateLayout}),
		services.WithTimeout(a.config.Backend.Timeout),
		services.WithLogger(a.logger),
	)

	done, ok := session.Submit(ctx, target)
	if !ok {
		return apperrors.ErrBlankInput
	}

	var snap services.Snapshot
	select {
	case s, open := <-done:
		if !open {
			return context.Canceled
		}
		snap = s
	case <-ctx.Done():
		a.logger.Info("Scan interrupted")
		session.Reset()
		return ctx.Err()
	}

	if snap.State == services.StateError {
		if err := render.Error(a.out, snap.Error); err != nil {
			return err
		}
		return errors.New(snap.Error)
	}
	return render.Write(a.out, format, snap.Report)
}

// NewScanCommand creates the scan command
func NewScanCommand(loadConfig ConfigLoader) *cobra.Command {
	opts := &Options{Output: string(render.FormatText)}

	scanCmd := &cobra.Command{
		Use:   "scan <target>",
		Short: "Scan a URL, ftp:// or ssh:// target, or a curl command",
		Long:  `Submit a target to the scan backend and print the verdict, risk gauge and detail cards`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			app := NewApp(cfg, opts, cmd.OutOrStdout())
			defer func() {
				if closeErr := app.Close(); closeErr != nil {
					app.logger.WithError(closeErr).Error("Error closing application")
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return app.Run(ctx, args[0])
		},
	}

	scanCmd.Flags().StringVarP(&opts.Output, "output", "o", string(render.FormatText), "Output format: text, json or yaml")
	scanCmd.Flags().BoolVar(&opts.Notify, "notify", false, "Send a Discord alert when the result reaches notify.min_tier")

	return scanCmd
}

// NewListHooksCommand creates the list-hooks command
func NewListHooksCommand() *cobra.Command {
	listHooksCmd := &cobra.Command{
		Use:   "list-hooks",
		Short: "List available hooks",
		Long:  `List all available hooks and their descriptions`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			InitHooks(hooks.Default(), logger.Default(), nil, "")
			hooks.RegisterPostHook("notifier", hooks.NewNotifierHook(hooks.NotifierHookConfig{}, nil))

			available := hooks.ListAvailableHooks()
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Available Hooks:")
			fmt.Fprintln(out, "===============")

			for _, hook := range available {
				fmt.Fprintf(out, "\n• %s\n", hook.Name)
				if hook.Description != "" {
					fmt.Fprintf(out, "  Description: %s\n", hook.Description)
				}
			}

			if len(available) == 0 {
				fmt.Fprintln(out, "No hooks available")
			}

			return nil
		},
	}

	return listHooksCmd
}

// InitHooks registers the summary hook, and the notifier when a sender is
// available.
func InitHooks(registry *hooks.Registry, l *logger.Logger, sender hooks.Sender, minTier string) {
	registry.Register("summary", hooks.NewSummaryHook(l))

	if sender == nil {
		return
	}
	tier, ok := risk.ParseTier(minTier)
	if !ok {
		tier = risk.High
	}
	registry.Register("notifier", hooks.NewNotifierHook(hooks.NotifierHookConfig{MinTier: tier}, sender))
}
