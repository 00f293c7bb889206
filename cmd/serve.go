package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/ocrweb/internal/utils"
	"github.com/lehigh-university-libraries/ocrweb/pkg/ocr"
	"github.com/lehigh-university-libraries/ocrweb/pkg/server"
	"github.com/lehigh-university-libraries/ocrweb/pkg/tesseract"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the OCR web server",
	Long:  "Start a web server that accepts image uploads and returns the text Tesseract recognizes in them",
	RunE:  runServe,
}

func init() {
	RootCmd.AddCommand(serveCmd)
	addServeFlags(serveCmd.Flags())
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	monitor := newMonitor(cfg)
	status := monitor.Refresh(ctx)
	if !status.Working {
		slog.Warn("Starting without a working OCR engine", "candidates", monitor.Candidates())
	}

	registry := ocr.NewRegistry()
	registry.Register(tesseract.NewCLI(func() string { return monitor.Current().PathString() }))
	registry.Register(tesseract.NewBinding())
	slog.Debug("Registered recognizers", "names", registry.List(), "gosseract_compiled", tesseract.BindingCompiled)

	srv, err := server.New(server.Options{
		Monitor:        monitor,
		Registry:       registry,
		Recognition:    cfg.Recognition,
		MaxUploadBytes: cfg.MaxUploadBytes,
		MaxImagePixels: cfg.MaxImagePixels,
	})
	if err != nil {
		utils.ExitOnError("Unable to create server", err)
	}

	slog.Info("Starting OCR web server",
		"addr", cfg.Addr(),
		"engine", cfg.Recognition.Engine,
		"recognition", cfg.Recognition.String())

	if err := srv.Run(ctx, cfg.Addr(), cfg.ShutdownTimeout); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
