package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"

	"github.com/kotoba-dev/kotoba/pkg/cmd"
	"github.com/kotoba-dev/kotoba/pkg/log"
)

func NewListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List registered pipelines with their stages and phases",
		Action: func(_ context.Context, _ *cli.Command) error {
			logger := log.WithModule("kotoba-list")
			pipelines := cmd.NewPipelineRegistry(logger)

			for _, name := range pipelines.ListPipelines() {
				info, err := pipelines.GetPipelineInfo(name)
				if err != nil {
					return err
				}

				_, _ = fmt.Fprintf(os.Stdout, "%s (%s)\n", info.Name, info.DisplayName)
				_, _ = fmt.Fprintf(os.Stdout, "  stages: %s\n", strings.Join(info.Stages, ", "))

				for phase, stages := range info.Phases {
					_, _ = fmt.Fprintf(os.Stdout, "  phase %s: %s\n", phase, strings.Join(stages, " -> "))
				}
			}

			return nil
		},
	}
}
