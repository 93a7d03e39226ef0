// Package cmd is the registry command line.
package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-resolver/app"
	kernel "github.com/km-arc/go-resolver/framework/app"
	"github.com/km-arc/go-resolver/framework/config"
	"github.com/km-arc/go-resolver/framework/decode"
	"github.com/km-arc/go-resolver/framework/logger"
)

type flags struct {
	config  string
	envFile []string
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "registry",
		Short:         "Type registry and generic resolution service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&f.config, "config", "c", "", "YAML or JSON configuration file")
	root.PersistentFlags().StringSliceVar(&f.envFile, "env-file", nil, "dotenv files (default .env)")

	root.AddCommand(newServeCommand(f), newTypesCommand(f), newResolveCommand(f), newDecodeCommand(f))
	return root
}

// Execute runs the CLI.
func Execute() error { return NewRootCommand().Execute() }

// bootstrap loads configuration and builds an application with the sample
// modules registered. quiet discards framework logs, for commands whose
// stdout is data.
func bootstrap(ctx context.Context, f *flags, quiet bool) (*kernel.Application, error) {
	cfg, err := config.LoadFile(f.config, f.envFile...)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	var opts []kernel.Option
	if quiet {
		opts = append(opts, kernel.WithLogger(logger.Nop{}))
	}
	a, err := kernel.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := app.Register(ctx, a); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func closeApp(cmd *cobra.Command, a *kernel.Application) {
	if err := a.Close(); err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "close: %v\n", err)
	}
}

// writeJSON prints v as canonical JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	raw, err := decode.Canonical(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}
