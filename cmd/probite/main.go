// The probite binary is the operator CLI: `probite sync` runs one discovery
// batch, `probite scan-duplicates --subject <id>` scores one subject's
// affairs for likely duplicates.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/probite-fr/probite/internal/bootstrap"
	"github.com/probite-fr/probite/internal/config"
	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
	"github.com/probite-fr/probite/internal/interfaces/cli"
)

func main() {
	root := cli.NewRootCommand(buildDependencies)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildDependencies wires the production service graph for a CLI invocation.
func buildDependencies(ctx context.Context, cfg *config.Config, logger logging.Logger) (*cli.Dependencies, error) {
	app, err := bootstrap.New(ctx, cfg, logger, bootstrap.Options{Source: "cli"})
	if err != nil {
		return nil, err
	}
	return &cli.Dependencies{
		Pipeline: app.Pipeline,
		Scanner:  app.Scanner,
		Close: func(context.Context) error {
			return app.Close()
		},
	}, nil
}
