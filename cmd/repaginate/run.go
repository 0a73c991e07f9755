package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gompdf/repaginate/internal/config"
	"github.com/gompdf/repaginate/internal/state"
	"github.com/gompdf/repaginate/pkg/api"
)

type paginateFunc func(p *api.Paginator, ctx context.Context, src, dst string) (*api.Result, error)

func runPaginate(ctx context.Context, cmd *cli.Command) error {
	return run(ctx, cmd, ".paginated.html", (*api.Paginator).PaginateFile)
}

func runPDF(ctx context.Context, cmd *cli.Command) error {
	return run(ctx, cmd, ".pdf", (*api.Paginator).PaginateFileToPDF)
}

func run(ctx context.Context, cmd *cli.Command, ext string, paginate paginateFunc) error {
	env := state.EnvFromContext(ctx)

	if cmd.Args().Len() == 0 {
		return errors.New("no input source has been specified")
	}
	if cmd.Args().Len() > 2 {
		env.Log.Warn("Malformed command line, too many arguments", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}
	src := cmd.Args().Get(0)
	dst := destinationName(src, cmd.Args().Get(1), ext)

	if !cmd.Bool("overwrite") {
		if _, err := os.Stat(dst); err == nil {
			return fmt.Errorf("destination already exists: %s", dst)
		}
	}

	options, err := env.Cfg.Document.PaginatorOptions(env.Log)
	if err != nil {
		return fmt.Errorf("unable to prepare paginator: %w", err)
	}
	if cmd.IsSet("capacity") {
		options.PageCapacity = cmd.Float("capacity")
	}
	if cmd.Bool("strict") {
		options.Strict = true
	}

	env.Log.Info("Paginating", zap.String("source", src), zap.String("destination", dst))
	res, err := paginate(api.NewWithOptions(options), ctx, src, dst)
	if res != nil {
		report(env.Log, res)
	}
	if err != nil {
		return fmt.Errorf("unable to paginate %s: %w", src, err)
	}
	return nil
}

// report logs what a run produced. Measurement gaps and amount parse failures
// are debug messages, other diagnostics are warnings.
func report(log *zap.Logger, res *api.Result) {
	for _, d := range res.Diagnostics {
		log.Log(diagnosticLevel(d.Kind), "Diagnostic", zap.String("kind", string(d.Kind)), zap.Int("page", d.Page), zap.String("message", d.Message))
	}
	fields := []zap.Field{zap.Int("pages", res.PageCount), zap.Float64("capacity", res.Profile.PageAvailable)}
	if n := len(res.Totals); n > 0 {
		fields = append(fields, zap.Float64("total", res.Totals[n-1].Total))
	}
	log.Info("Done", fields...)
}

func diagnosticLevel(kind api.DiagnosticKind) zapcore.Level {
	switch kind {
	case api.DiagMeasurementGap, api.DiagAmountParse:
		return zapcore.DebugLevel
	}
	return zapcore.WarnLevel
}

// destinationName returns dst when given, otherwise the base name of src with
// ext in the current directory.
func destinationName(src, dst, ext string) string {
	if dst != "" {
		return dst
	}
	base := filepath.Base(src)
	if u, err := url.Parse(src); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		base = path.Base(u.Path)
		if base == "/" || base == "." || base == "" {
			base = u.Hostname()
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fname := cmd.Args().Get(0)

	var (
		data []byte
		kind string
	)

	out := os.Stdout
	if len(fname) > 0 {
		out, err = os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer func() {
			err = multierr.Append(err, out.Close())
		}()
	}

	if cmd.Bool("default") {
		kind = "default"
		data, err = config.Prepare()
	} else {
		kind = "actual"
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	if len(fname) == 0 {
		fname = "STDOUT"
	}
	env.Log.Info("Outputting configuration", zap.String("state", kind), zap.String("file", fname))

	if _, err = out.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
