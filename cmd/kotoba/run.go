package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"

	"github.com/kotoba-dev/kotoba/pkg/cmd"
	"github.com/kotoba-dev/kotoba/pkg/config"
	"github.com/kotoba-dev/kotoba/pkg/execution"
	"github.com/kotoba-dev/kotoba/pkg/log"
	"github.com/kotoba-dev/kotoba/pkg/models"
)

var (
	ErrStageOrPhaseRequired = errors.New("exactly one of --stage or --phase is required")
	ErrInvalidArguments     = errors.New("invalid pipeline arguments")
	ErrRunFailed            = errors.New("pipeline run finished with failures")
)

func NewRunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run one stage or one phase of a pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "pipeline",
				Aliases:  []string{"p"},
				Usage:    "Pipeline name",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "stage",
				Usage: "Stage name to run",
			},
			&cli.StringFlag{
				Name:  "phase",
				Usage: "Phase name to run",
			},
			&cli.StringFlag{
				Name:    "project-root",
				Usage:   "Working root for this run",
				Value:   ".",
				Sources: cli.EnvVars("KOTOBA_PROJECT_ROOT"),
			},
			&cli.StringSliceFlag{
				Name:    "arg",
				Aliases: []string{"a"},
				Usage:   "Pipeline argument as key=value (repeatable)",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			stageName := command.String("stage")
			phaseName := command.String("phase")

			if (stageName == "") == (phaseName == "") {
				return ErrStageOrPhaseRequired
			}

			pipelineName := command.String("pipeline")
			logger := log.WithModule("kotoba-run").With("pipeline", pipelineName)

			cfg, err := config.Load(command.String("config"))
			if err != nil {
				return err
			}

			providerRegistry, err := cmd.NewProviderRegistry(logger, cfg)
			if err != nil {
				return err
			}

			pipelines := cmd.NewPipelineRegistry(logger)

			pipeline, err := pipelines.GetPipeline(pipelineName)
			if err != nil {
				return err
			}

			args := parseArgs(command.StringSlice("arg"))
			if problems := pipeline.ValidateCLIArgs(args); len(problems) > 0 {
				return fmt.Errorf("%w: %s", ErrInvalidArguments, strings.Join(problems, "; "))
			}

			ec := execution.NewContext(
				pipelineName,
				command.String("project-root"),
				cfg,
				providerRegistry.ForPipeline(pipelineName),
			)
			pipeline.PopulateContextFromCLI(ec, args)

			var results []*models.StageResult

			if stageName != "" {
				result, err := pipeline.ExecuteStage(ctx, stageName, ec)
				if err != nil {
					return err
				}

				results = append(results, result)
			} else {
				results, err = pipeline.ExecutePhase(ctx, phaseName, ec)
				if err != nil {
					return err
				}
			}

			failed := printResults(results)

			if ec.HasErrors() {
				_, _ = fmt.Fprintln(os.Stdout, "\nRun errors:")
				for _, message := range ec.Errors() {
					_, _ = fmt.Fprintf(os.Stdout, "  - %s\n", message)
				}
			}

			if failed {
				return ErrRunFailed
			}

			return nil
		},
	}
}

func parseArgs(raw []string) map[string]string {
	args := make(map[string]string, len(raw))

	for _, pair := range raw {
		key, value, found := strings.Cut(pair, "=")
		if found {
			args[key] = value
		}
	}

	return args
}

func printResults(results []*models.StageResult) bool {
	failed := false

	for _, result := range results {
		marker := "ok"

		switch result.Status {
		case models.StageStatusFailure:
			marker = "FAILED"
			failed = true
		case models.StageStatusPartial:
			marker = "partial"
		case models.StageStatusSkipped:
			marker = "skipped"
		case models.StageStatusSuccess:
		}

		_, _ = fmt.Fprintf(os.Stdout, "[%s] %s\n", marker, result.Message)

		for _, message := range result.Errors {
			_, _ = fmt.Fprintf(os.Stdout, "    %s\n", message)
		}
	}

	return failed
}
