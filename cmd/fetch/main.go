package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"barfeed/internal/app"
	"barfeed/internal/config"
	"barfeed/internal/logx"
)

type fetchArgs struct {
	Symbol     string
	Exchange   string
	Interval   string
	Start      string
	End        string
	Format     string
	OutDir     string
	Store      bool
	Upload     bool
	Resume     bool
	ConfigPath string
	EnvFile    string
	LogLevel   string
}

func newRootCmd() *cobra.Command {
	var args fetchArgs

	cmd := &cobra.Command{
		Use:   "fetch --symbol rb2105 --exchange SHFE --interval d --start 2021-01-04 --end 2021-03-31",
		Short: "Download historical bars from the configured datafeed",
		// flag errors print usage; runtime errors do not
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&args.Symbol, "symbol", "", "instrument symbol, e.g. rb2105, TA105, 600036")
	f.StringVar(&args.Exchange, "exchange", "", "exchange code, e.g. SHFE, CZCE, SSE")
	f.StringVar(&args.Interval, "interval", "d", "bar interval: 1m, 1h, d, w")
	f.StringVar(&args.Start, "start", "", "start date (YYYY-MM-DD)")
	f.StringVar(&args.End, "end", "", "end date (YYYY-MM-DD)")
	f.StringVar(&args.Format, "format", "", "output format: csv, json, parquet (default from config)")
	f.StringVar(&args.OutDir, "out", "", "output directory (default from config)")
	f.BoolVar(&args.Store, "store", false, "also copy bars into Postgres (DATABASE_URL)")
	f.BoolVar(&args.Resume, "resume", false, "start after the latest bar already stored (implies --store)")
	f.BoolVar(&args.Upload, "upload", false, "also upload the output file to S3")
	f.StringVar(&args.ConfigPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json or config.yaml (optional)")
	f.StringVar(&args.EnvFile, "env-file", ".env", "dotenv file to load before reading config")
	f.StringVar(&args.LogLevel, "log-level", "", "debug, info, warn or error (default from config)")

	for _, name := range []string{"symbol", "exchange", "start", "end"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func run(ctx context.Context, args fetchArgs) error {
	if err := config.LoadDotEnv(args.EnvFile); err != nil {
		return err
	}
	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	// Override select fields from flags where provided
	if args.Format != "" {
		cfg.Export.Format = args.Format
	}
	if args.OutDir != "" {
		cfg.Export.Dir = args.OutDir
	}
	if args.LogLevel != "" {
		cfg.LogLevel = args.LogLevel
	}
	logx.Setup(cfg.LogLevel)

	req, err := app.BuildRequest(args.Symbol, args.Exchange, args.Interval, args.Start, args.End)
	if err != nil {
		return err
	}

	a, err := InitializeApp(cfg)
	if err != nil {
		return err
	}

	sinks := app.Sinks{Resume: args.Resume}
	if args.Store || args.Resume {
		st, closeFn, err := app.OpenBarStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeFn()
		sinks.Store = st
	}
	if args.Upload {
		up, err := app.NewUploader(cfg)
		if err != nil {
			return err
		}
		sinks.Uploader = up
	}

	res, err := a.Fetch(ctx, req, sinks)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"symbol":     req.VtSymbol(),
		"bars":       res.Bars,
		"path":       res.Path,
		"stored":     res.Stored,
		"object":     res.Object,
		"resumed":    args.Resume,
		"up_to_date": res.UpToDate,
	}).Info("fetch complete")
	return nil
}

func main() {
	logx.Setup("info")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
