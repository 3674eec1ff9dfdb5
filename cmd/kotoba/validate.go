package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"

	"github.com/kotoba-dev/kotoba/pkg/cmd"
	"github.com/kotoba-dev/kotoba/pkg/config"
	"github.com/kotoba-dev/kotoba/pkg/log"
	"github.com/kotoba-dev/kotoba/pkg/providers"
)

func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the settings file and build the provider registry",
		Action: func(_ context.Context, command *cli.Command) error {
			logger := log.WithModule("kotoba-validate")

			cfg, err := config.Load(command.String("config"))
			if err != nil {
				return err
			}

			registry, err := cmd.NewProviderRegistry(logger, cfg)
			if err != nil {
				return fmt.Errorf("configuration invalid: %w", err)
			}

			_, _ = fmt.Fprintln(os.Stdout, "Configuration is valid.")
			_, _ = fmt.Fprintf(os.Stdout, "  data providers:  %s\n", joinOrNone(registry.ListDataProviders()))
			_, _ = fmt.Fprintf(os.Stdout, "  audio providers: %s\n", joinOrNone(registry.ListAudioProviders()))
			_, _ = fmt.Fprintf(os.Stdout, "  image providers: %s\n", joinOrNone(registry.ListImageProviders()))
			_, _ = fmt.Fprintf(os.Stdout, "  sync providers:  %s\n", joinOrNone(registry.ListSyncProviders()))

			pipelines := cmd.NewPipelineRegistry(logger)
			for _, name := range pipelines.ListPipelines() {
				set := registry.ForPipeline(name)
				_, _ = fmt.Fprintf(os.Stdout, "  pipeline %s sees %d provider(s)\n", name, set.Len())

				for _, category := range providers.Categories() {
					if visible := set.Names(category); len(visible) > 0 {
						_, _ = fmt.Fprintf(os.Stdout, "    %s: %s\n", category, strings.Join(visible, ", "))
					}
				}
			}

			return nil
		},
	}
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}

	return strings.Join(names, ", ")
}
