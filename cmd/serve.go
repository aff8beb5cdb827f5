package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KaramelBytes/histx/internal/server"
	"github.com/spf13/cobra"
)

var (
	srvPort   int
	srvSample string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interactive histogram explorer in the browser",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			c.Port = srvPort
		}
		if cmd.Flags().Changed("sample") {
			c.SamplePath = srvSample
		}
		opt, err := datasetOptions(c)
		if err != nil {
			return err
		}
		log := newLogger(c)
		defer func() { _ = log.Sync() }()

		srv := server.New(server.Options{
			Port:        c.Port,
			BodyLimitMB: c.BodyLimitMB,
			SessionTTL:  time.Duration(c.SessionTTLMin) * time.Minute,
			PreviewRows: c.PreviewRows,
			DefaultBins: c.DefaultBins,
			SamplePath:  c.SamplePath,
			Dataset:     opt,
			Draw:        drawOptions(c),
		}, log)

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		errc := make(chan error, 1)
		go func() { errc <- srv.Run() }()
		fmt.Fprintf(cmd.OutOrStdout(), "✅ histx is running on http://localhost:%d\n", c.Port)

		select {
		case err := <-errc:
			return err
		case <-stop:
			log.Info("server", "shutting down", nil)
			return srv.Shutdown()
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&srvPort, "port", 8501, "HTTP port (overrides config)")
	serveCmd.Flags().StringVar(&srvSample, "sample", "", "CSV/XLSX file to offer as the sample dataset (overrides config)")
}
