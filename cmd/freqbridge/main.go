// Command freqbridge runs the CPU frequency collector from the shell:
// `collect` performs a single collection and prints the JSON document,
// `serve` exposes the collector over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/CristiGvl/freqbridge/api"
	"github.com/CristiGvl/freqbridge/bridge"
	"github.com/CristiGvl/freqbridge/internal/platform"
)

var log = logrus.New()

func main() {
	root := &cobra.Command{
		Use:           "freqbridge",
		Short:         "Sample per-core CPU frequency and report it as JSON",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newCollectCmd(), newServeCmd())

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func newCollectCmd() *cobra.Command {
	var (
		intervalMS int
		samples    int
	)

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Take one sample series and print it to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := bridge.New().Collect(cmd.Context(), intervalMS, samples)
			if res.Status != bridge.StatusOK {
				log.WithFields(logrus.Fields{
					"status": int(res.Status),
					"reason": bridge.StatusText(res.Status),
				}).Error(res.ErrMessage)
				// Exit code mirrors the bridge status so shell callers can
				// branch the same way C callers do.
				os.Exit(int(res.Status))
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.JSON)
			return nil
		},
	}

	cmd.Flags().IntVar(&intervalMS, "interval-ms", 100, "delay between consecutive samples in milliseconds")
	cmd.Flags().IntVar(&samples, "samples", 1, "number of samples to take")

	return cmd
}

func newServeCmd() *cobra.Command {
	var (
		bind string
		port string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the collector over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := platform.ValidateSupport(); err != nil {
				return err
			}

			server, err := api.NewServer()
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go func() {
				<-ctx.Done()
				log.Info("shutting down")
				if err := server.Shutdown(); err != nil {
					log.WithError(err).Error("error during shutdown")
				}
			}()

			log.WithField("address", bind+":"+port).Info("starting freqbridge server")
			return server.Start(bind + ":" + port)
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "0.0.0.0", "IP address to bind the server to")
	cmd.Flags().StringVar(&port, "port", "8080", "port to run the server on")

	return cmd
}
