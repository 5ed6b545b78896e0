package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/flexprice/recurly-client/internal/cache"
	"github.com/flexprice/recurly-client/internal/config"
	ierr "github.com/flexprice/recurly-client/internal/errors"
	"github.com/flexprice/recurly-client/internal/httpclient"
	"github.com/flexprice/recurly-client/internal/logger"
	"github.com/flexprice/recurly-client/internal/recurly"
	"github.com/flexprice/recurly-client/internal/s3"
	"github.com/flexprice/recurly-client/internal/sentry"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// deps is everything a command needs, resolved by fx
type deps struct {
	fx.In

	Config  *config.Configuration
	Logger  *logger.Logger
	Client  *recurly.Client
	Sentry  *sentry.Service
	Archive s3.Service
}

func appOptions(target *deps) fx.Option {
	return fx.Options(
		fx.NopLogger,
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.Initialize,

			// HTTP Client
			httpclient.NewDefaultClient,

			// Billing api client
			recurly.NewClient,

			// PDF archive
			s3.NewService,
		),
		sentry.Module(),
		fx.Invoke(func(d deps) {
			*target = d
		}),
	)
}

// withApp starts the dependency graph, runs fn inside a sentry transaction
// and stops the graph again
func withApp(cmd *cobra.Command, name string, fn func(ctx context.Context, d *deps) error) error {
	var d deps
	app := fx.New(appOptions(&d))
	if err := app.Err(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = app.Stop(context.Background())
	}()

	tx, txCtx := d.Sentry.StartTransaction(ctx, name)
	if tx != nil {
		defer tx.Finish()
	}

	err := fn(txCtx, &d)
	if err != nil {
		d.Logger.Debugw("command failed", "command", name, "error", err)
		d.Sentry.CaptureException(err)
	}
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintError writes err to w as the JSON error envelope
func PrintError(w io.Writer, err error) {
	if encErr := printJSON(w, ierr.NewErrorResponse(err)); encErr != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}
