// Package main provides the Chatflow bot daemon. It watches the chat
// platform for trigger posts and runs scheduled workflows.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chatflow-dev/chatflow/pkg/ai"
	"github.com/chatflow-dev/chatflow/pkg/cmd"
	"github.com/chatflow-dev/chatflow/pkg/expression"
	"github.com/chatflow-dev/chatflow/pkg/log"
	"github.com/chatflow-dev/chatflow/pkg/notifier"
	"github.com/chatflow-dev/chatflow/pkg/otelhelper"
	"github.com/chatflow-dev/chatflow/pkg/registry"
	"github.com/chatflow-dev/chatflow/pkg/workflow"
	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultPollInterval    = 10 * time.Second
	defaultScheduleRefresh = time.Minute
)

func main() {
	command := &cli.Command{
		Name:                  "chatflow-bot",
		Usage:                 "Run chat-triggered and scheduled workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "bot-id",
				Aliases: []string{"id"},
				Usage:   "Custom bot ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("BOT_ID"),
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
			&cli.DurationFlag{
				Name:    "poll-interval",
				Usage:   "How often to search the chat platform for trigger posts",
				Value:   defaultPollInterval,
				Sources: cli.EnvVars("POLL_INTERVAL"),
			},
			&cli.DurationFlag{
				Name:    "schedule-refresh",
				Usage:   "How often to reconcile cron entries with stored workflows",
				Value:   defaultScheduleRefresh,
				Sources: cli.EnvVars("SCHEDULE_REFRESH"),
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

			botID := command.String("bot-id")
			if botID == "" {
				botID = "bot-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("chatflow-bot").With("bot_id", botID)

			logger.InfoContext(ctx, "Initializing Chatflow Bot")

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

				tracer, err = otelhelper.NewTracer(ctx, "chatflow-bot")
				if err != nil {
					return err
				}
			}

			executor := workflow.NewExecutor(reg, workflow.NewTracker(), chat, eventBus, tracer, logger)

			runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			scheduler := NewScheduler(persistence, executor, logger)
			go scheduler.Start(runCtx, command.Duration("schedule-refresh"))

			poller := NewPoller(persistence, chat, eventBus, command.Duration("poll-interval"), logger)
			go poller.Run(runCtx)

			bot := NewBotManager(botID, persistence, eventBus, executor, logger)

			err := bot.Start(runCtx)
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start bot", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
