package main

import (
	"call-blocks/config"
	"call-blocks/metrics"
	"call-blocks/store"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var Version = "dev"

// app carries the state shared by every subcommand of one invocation.
type app struct {
	cfg   *config.Config
	store *store.Store

	inputs      []string
	week        string
	view        string
	format      string
	metricsAddr string
	pushURL     string
	wait        bool

	metricsServer *http.Server
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "callblocks",
		Short:         "Weekly call blocks from CRM call-log exports",
		Long:          "callblocks groups the calls of each SDR into blocks of calls no more than 30 minutes apart and reports them week by week.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.pushMetrics()
			a.waitForScrape(cmd.Context())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringArrayVarP(&a.inputs, "input", "i", nil, "dataset to import as sdr=path (repeatable)")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "Address to expose Prometheus metrics (e.g., :9090)")
	flags.StringVar(&a.pushURL, "push-url", "", "Pushgateway URL to push metrics to (e.g., http://localhost:9091)")
	flags.BoolVar(&a.wait, "wait", false, "Keep process running after completion to allow for metric scraping")

	cmd.AddCommand(newWeekCmd(a))
	cmd.AddCommand(newStatsCmd(a))
	cmd.AddCommand(newBlocksCmd(a))
	cmd.AddCommand(newRosterCmd(a))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// Overrides the root hook: no config or datasets needed.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "callblocks %s\n", Version)
		},
	}
}

// setup loads configuration, configures logging and metrics, and fills the store.
func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if a.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: a.metricsAddr, Handler: mux}
		a.metricsServer = srv
		go func() {
			log.Info().Str("addr", srv.Addr).Msg("metrics server listening")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("metrics server error")
			}
		}()
	}

	a.store = store.New(cfg.Roster, cfg.Columns, cfg.Location, log.Logger)

	if cfg.DefaultDataset != "" {
		if ctx == nil {
			ctx = context.Background()
		}
		// Failure leaves the store empty; explicit inputs still get imported.
		_ = a.store.LoadDefault(ctx, cfg.DefaultDataset, cfg.DefaultSDR)
	}

	for _, in := range a.inputs {
		sdr, path, err := parseInput(in)
		if err != nil {
			return err
		}
		if err := a.importFile(sdr, path); err != nil {
			return err
		}
	}

	return nil
}

func (a *app) pushMetrics() {
	if a.pushURL == "" {
		return
	}
	jobName := "callblocks"
	if err := push.New(a.pushURL, jobName).Gatherer(metrics.Registry).Push(); err != nil {
		log.Error().Err(err).Str("url", a.pushURL).Msg("error pushing to Pushgateway")
		return
	}
	log.Info().Str("url", a.pushURL).Msg("metrics pushed to Pushgateway")
}

// waitForScrape keeps the metrics server up after the command has run.
// With --wait it blocks until SIGINT/SIGTERM or ctx is cancelled; otherwise it
// leaves a short grace period for a final scrape when no Pushgateway is used.
func (a *app) waitForScrape(ctx context.Context) {
	if a.metricsServer == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	switch {
	case a.wait:
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		log.Info().Str("addr", a.metricsServer.Addr).Msg("process kept alive for metric scraping, press Ctrl+C to exit")
		<-ctx.Done()
	case a.pushURL == "":
		time.Sleep(100 * time.Millisecond)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("metrics server shutdown error")
	}
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("callblocks failed")
		os.Exit(1)
	}
}
