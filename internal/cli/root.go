// Package cli implements the furnidex-index command: graph building and catalog indexing.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/furnidex/internal/config"
	"github.com/kailas-cloud/furnidex/internal/domain/catalog"
	logpkg "github.com/kailas-cloud/furnidex/internal/logger"
	catalogrepo "github.com/kailas-cloud/furnidex/internal/repository/catalog"
	"github.com/kailas-cloud/furnidex/internal/version"
)

// state is shared by all subcommands after PersistentPreRunE.
type state struct {
	env         string
	cfgFile     string
	catalogPath string
	quiet       bool

	cfg    config.Config
	logger *zap.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	st := &state{}
	root := &cobra.Command{
		Use:     "furnidex-index",
		Version: version.String(),
		Short:   "Build the product graph and index the catalog into the vector store",
		Long: `furnidex-index prepares the furniture catalog for recommendation.

Example usage:
  furnidex-index check              # Validate the catalog file
  furnidex-index graph              # Learn graph embeddings into the local table
  furnidex-index run --with-graph   # Build the graph, then index every product
  furnidex-index inspect            # Show the stored graph table`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return st.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if st.logger != nil {
				_ = st.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&st.env, "env", config.GetEnv(), "environment name, selects config/<env>.yaml")
	root.PersistentFlags().StringVar(&st.cfgFile, "config", "", "explicit config file (overrides --env)")
	root.PersistentFlags().StringVar(&st.catalogPath, "catalog", "", "catalog JSON file (default from config)")
	root.PersistentFlags().BoolVarP(&st.quiet, "quiet", "q", false, "disable progress bars")

	root.AddCommand(newCheckCmd(st), newGraphCmd(st), newRunCmd(st), newInspectCmd(st))
	return root
}

// Execute runs the root command. Interrupts cancel the running build between items.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func (st *state) init() error {
	var err error
	if st.cfgFile != "" {
		st.cfg, err = config.LoadFile(st.cfgFile)
	} else {
		st.cfg, err = config.Load(st.env)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logEnv := "cli"
	if st.env == "test" {
		logEnv = "test"
	}
	st.logger, err = logpkg.NewLogger(logEnv, "furnidex-index", st.cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	if st.catalogPath == "" {
		st.catalogPath = st.cfg.Catalog.Path
	}
	return nil
}

func (st *state) loadCatalog(out io.Writer) ([]catalog.Item, error) {
	items, rep, err := catalogrepo.NewLoader(logpkg.Component(st.logger, "catalog")).LoadFile(st.catalogPath)
	if err != nil {
		return nil, err
	}
	_, _ = fmt.Fprintf(out, "Catalog %s: %d products loaded, %d invalid skipped, %d duplicates skipped\n",
		st.catalogPath, rep.Loaded, rep.Skipped, rep.Duplicates)
	if len(items) == 0 {
		return nil, fmt.Errorf("catalog %s has no valid products", st.catalogPath)
	}
	return items, nil
}

func (st *state) graphTablePath() (string, error) {
	path := st.cfg.Storage.GraphTable
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("create graph table directory: %w", err)
	}
	return path, nil
}

// nopProgress satisfies the Progress contracts when bars are disabled.
type nopProgress struct{}

func (nopProgress) Add(int) error { return nil }

type progress interface {
	Add(n int) error
}

func (st *state) newBar(out io.Writer, total int, description string) progress {
	if st.quiet {
		return nopProgress{}
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(out)
		}),
	)
}
