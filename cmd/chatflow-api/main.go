package main

import (
	"context"
	"net/http"
	"os"

	"github.com/chatflow-dev/chatflow/pkg/ai"
	"github.com/chatflow-dev/chatflow/pkg/cmd"
	"github.com/chatflow-dev/chatflow/pkg/expression"
	"github.com/chatflow-dev/chatflow/pkg/log"
	"github.com/chatflow-dev/chatflow/pkg/notifier"
	"github.com/chatflow-dev/chatflow/pkg/otelhelper"
	"github.com/chatflow-dev/chatflow/pkg/registry"
	"github.com/chatflow-dev/chatflow/pkg/workflow"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"
)

const defaultPort = 9090

func main() {
	command := &cli.Command{
		Name:                  "chatflow-api",
		Usage:                 "Create and manage chat automation workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (postgres:// or a file path)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:     "mattermost-url",
				Usage:    "Base URL of the Mattermost server",
				Required: true,
				Sources:  cli.EnvVars("MATTERMOST_URL"),
			},
			&cli.StringFlag{
				Name:     "mattermost-token",
				Usage:    "Bot account token for the Mattermost server",
				Required: true,
				Sources:  cli.EnvVars("MATTERMOST_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "openai-url",
				Usage:   "Base URL of the OpenAI-compatible API",
				Value:   "https://api.openai.com",
				Sources: cli.EnvVars("OPENAI_BASE_URL"),
			},
			&cli.StringFlag{
				Name:    "openai-api-key",
				Usage:   "API key for the OpenAI-compatible API",
				Sources: cli.EnvVars("OPENAI_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "openai-model",
				Usage:   "Model used by AI agent and transform nodes",
				Value:   "gpt-4o-mini",
				Sources: cli.EnvVars("OPENAI_MODEL"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json, pretty)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"), command.String("log-format"))

			logger := log.WithModule("api")

			logger.InfoContext(ctx, "Initializing Chatflow API")

			chat := notifier.NewMattermost(
				command.String("mattermost-url"),
				command.String("mattermost-token"),
				nil,
				logger,
			)
			aiClient := ai.NewClient(
				command.String("openai-url"),
				command.String("openai-api-key"),
				command.String("openai-model"),
				nil,
				logger,
			)

			reg := cmd.NewRegistry(logger, registry.Capabilities{
				HTTPClient: http.DefaultClient,
				Evaluator:  expression.NewEvaluator(),
				AI:         aiClient,
				Notifier:   chat,
			})

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				err := eventBus.Close()
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			var tracer trace.Tracer

			if command.Bool("tracing") {
				var err error

				tracer, err = otelhelper.NewTracer(ctx, "chatflow-api")
				if err != nil {
					return err
				}
			}

			executor := workflow.NewExecutor(reg, workflow.NewTracker(), chat, eventBus, tracer, logger)

			api := NewAPI(
				logger,
				persistence,
				reg,
				executor,
			)

			err := api.Start(command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
