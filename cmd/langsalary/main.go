package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/fr4nk3nst1ner/langsalary/internal/config"
	"github.com/fr4nk3nst1ner/langsalary/internal/models"
	"github.com/fr4nk3nst1ner/langsalary/internal/store"
	"github.com/fr4nk3nst1ner/langsalary/internal/store/sqlite"
	"github.com/fr4nk3nst1ner/langsalary/internal/ui"
)

var version = "dev"

// printExamples displays usage examples for the program
func printExamples(w io.Writer) {
	fmt.Fprintln(w, "\n📋 LangSalary Usage Examples 📋")
	fmt.Fprintln(w, "\n1. Average salaries for the default languages in Moscow on both sites:")
	fmt.Fprintln(w, "   SUPERJOB_API_KEY=... langsalary")

	fmt.Fprintln(w, "\n2. Only HeadHunter, three languages, Saint Petersburg:")
	fmt.Fprintln(w, "   langsalary -sj=false -terms \"Go,Rust,Kotlin\" -hh-area 2 -area-label \"Saint Petersburg\"")

	fmt.Fprintln(w, "\n3. Fetch four terms at a time and cache pages in redis:")
	fmt.Fprintln(w, "   langsalary -workers 4 -cache redis")

	fmt.Fprintln(w, "\n4. Write an HTML report and keep the history in sqlite:")
	fmt.Fprintln(w, "   langsalary -format html -out salaries.html -history langsalary.db")

	fmt.Fprintln(w, "\n5. Show the last five stored runs:")
	fmt.Fprintln(w, "   langsalary -history langsalary.db -list-runs 5")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := config.NewFlags("langsalary")
	flags.FlagSet().SetOutput(stderr)
	if err := flags.Parse(args); err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if flags.Version {
		fmt.Fprintf(stdout, "langsalary %s\n", version)
		return 0
	}
	if flags.Examples {
		printExamples(stdout)
		return 0
	}

	logger := newLogger(flags.Debug, stderr)
	defer logger.Sync()

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		logger.Error("failed to load config", zap.Error(err))
		return 1
	}
	flags.Apply(cfg)

	if flags.ListRuns > 0 {
		return listRuns(ctx, cfg, flags.ListRuns, stdout, logger)
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return 2
	}
	switch flags.Format {
	case ui.FormatTable, ui.FormatJSON, ui.FormatHTML:
	default:
		logger.Error("invalid configuration", zap.String("format", flags.Format))
		return 2
	}

	ui.PrintBanner(stderr, flags.NoBanner)

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", zap.Error(err))
		return 1
	}
	defer a.Close()

	runID := store.NewRunID()
	logger.Info("collecting salaries",
		zap.String("run_id", runID),
		zap.Strings("terms", cfg.Terms),
		zap.Int("workers", cfg.Workers))

	startedAt := time.Now()
	reports := a.collect(ctx, stderr, !flags.Debug && isTerminal(stderr))
	if ctx.Err() != nil {
		logger.Warn("interrupted, reporting what was collected", zap.Error(ctx.Err()))
	}

	out := stdout
	if flags.Out != "" {
		f, err := os.Create(flags.Out)
		if err != nil {
			logger.Error("failed to create output file", zap.String("path", flags.Out), zap.Error(err))
			return 1
		}
		defer f.Close()
		out = f
	}

	opts := ui.TableOptions{
		AreaLabel: cfg.AreaLabel,
		Locale:    cfg.Locale,
		Color:     flags.Out == "" && isTerminal(stdout),
	}
	if err := ui.Render(out, flags.Format, reports, opts); err != nil {
		logger.Error("failed to render report", zap.Error(err))
		return 1
	}

	a.deliver(ctx, runID, reports, startedAt)
	logger.Info("done", zap.String("run_id", runID), zap.Duration("elapsed", time.Since(startedAt)))
	return 0
}

func listRuns(ctx context.Context, cfg *config.Config, limit int, stdout io.Writer, logger *zap.Logger) int {
	if cfg.HistoryPath == "" {
		logger.Error("-list-runs needs a history database (-history or LANGSALARY_HISTORY)")
		return 2
	}
	s, err := sqlite.New(cfg.HistoryPath)
	if err != nil {
		logger.Error("failed to open history", zap.String("path", cfg.HistoryPath), zap.Error(err))
		return 1
	}
	defer s.Close()

	opts := ui.TableOptions{AreaLabel: cfg.AreaLabel, Locale: cfg.Locale}
	for _, source := range []models.Source{models.SourceHeadHunter, models.SourceSuperJob} {
		runs, err := s.ListRuns(ctx, source, limit)
		if err != nil {
			logger.Error("failed to list runs", zap.String("source", string(source)), zap.Error(err))
			return 1
		}
		for _, r := range runs {
			fmt.Fprintf(stdout, "%s  %s\n", r.CollectedAt.Local().Format(time.RFC3339), r.ID)
			if err := ui.RenderTable(stdout, []*models.StatsReport{r.Report}, opts); err != nil {
				logger.Error("failed to render run", zap.String("run_id", r.ID), zap.Error(err))
				return 1
			}
		}
	}
	return 0
}

func newLogger(debug bool, w io.Writer) *zap.Logger {
	level := zap.InfoLevel
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)
	if debug {
		level = zap.DebugLevel
		encoderCfg = zap.NewDevelopmentEncoderConfig()
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(w), level))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
