// Command ranker indexes a folder of text documents and prints, for every
// line of a query file, the documents ranked by how often they contain the
// query's terms.
//
// Usage:
//
//	ranker [run] -folder pages -queries queries.txt [-limit N] [-flush-cache]
//	ranker inspect -doc pages/a.txt [-word w] [-pos N] [-dump]
//	ranker history [-n N] [-run id]
//	ranker check
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := dispatch(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		slog.Error("ranker failed", "error", err)
		os.Exit(apperrors.ExitCode(err))
	}
}

func dispatch(ctx context.Context, args []string, stdout io.Writer) error {
	cmd := "run"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}
	switch cmd {
	case "run":
		return runCommand(ctx, args, stdout)
	case "inspect":
		return inspectCommand(ctx, args, stdout)
	case "history":
		return historyCommand(ctx, args, stdout)
	case "check":
		return checkCommand(ctx, args, stdout)
	default:
		return apperrors.Newf(apperrors.ErrInvalidConfig, "unknown command %q (want run, inspect, history or check)", cmd)
	}
}

// commonFlags are accepted by every command. Flags that are set override
// the config file and RR_* environment.
type commonFlags struct {
	configPath string
	folder     string
	queries    string
	limit      int
	format     string
	logLevel   string
}

func (f *commonFlags) bind(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "path to YAML config file")
	fs.StringVar(&f.folder, "folder", "", "folder of documents to index")
	fs.StringVar(&f.queries, "queries", "", "file with one query per line")
	fs.IntVar(&f.limit, "limit", 0, "maximum documents per query (0 = all)")
	fs.StringVar(&f.format, "format", "", "output format: text or json")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return apperrors.Newf(apperrors.ErrInvalidConfig, "%s: %v", fs.Name(), err)
	}
	if fs.NArg() > 0 {
		return apperrors.Newf(apperrors.ErrInvalidConfig, "%s: unexpected arguments %v", fs.Name(), fs.Args())
	}
	return nil
}

// load reads the config, applies explicitly set flags, validates and
// installs the logger.
func (f *commonFlags) load(fs *flag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "folder":
			cfg.Corpus.Folder = f.folder
		case "queries":
			cfg.Corpus.QueryFile = f.queries
		case "limit":
			cfg.Search.Limit = f.limit
		case "format":
			cfg.Output.Format = strings.ToLower(f.format)
		case "log-level":
			cfg.Logging.Level = f.logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}
