package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/chatflow-dev/chatflow/pkg/eventbus"
	"github.com/chatflow-dev/chatflow/pkg/events"
	"github.com/chatflow-dev/chatflow/pkg/models"
	"github.com/chatflow-dev/chatflow/pkg/nodes/trigger"
	"github.com/chatflow-dev/chatflow/pkg/persistence"
	"github.com/chatflow-dev/chatflow/pkg/protocol"
)

// Poller searches the chat platform for posts matching the keywords of
// active chat-triggered workflows and publishes each new post as a
// ChatMessageReceived event. The first poll only primes the seen set, so
// historical posts never trigger workflows.
type Poller struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	notifier    protocol.Notifier
	bus         eventbus.EventPublisher
	interval    time.Duration

	seen   map[string]struct{}
	primed bool
}

func NewPoller(
	persistence persistence.Persistence,
	notifier protocol.Notifier,
	bus eventbus.EventPublisher,
	interval time.Duration,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		logger:      logger.With("module", "poller"),
		persistence: persistence,
		notifier:    notifier,
		bus:         bus,
		interval:    interval,
		seen:        make(map[string]struct{}),
	}
}

// Run polls until the context is cancelled.
func (p *Poller) Run(ctx context.Context) {
	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	workflows, err := p.persistence.Workflows(ctx, "")
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to load workflows", "error", err)

		return
	}

	for term := range watchedKeywords(workflows) {
		messages, err := p.notifier.Search(ctx, term)
		if err != nil {
			p.logger.WarnContext(ctx, "Post search failed", "term", term, "error", err)

			continue
		}

		for _, message := range messages {
			if !p.markSeen(message) {
				continue
			}

			if !p.primed {
				continue
			}

			p.publish(ctx, message)
		}
	}

	p.primed = true
}

func (p *Poller) publish(ctx context.Context, message protocol.Message) {
	event := events.ChatMessageReceived{
		BaseEvent: events.NewBaseEvent(events.ChatMessageReceivedEvent, ""),
		ChannelID: message.ChannelID,
		UserID:    message.UserID,
		Text:      message.Text,
		PostID:    message.PostID,
	}

	err := p.bus.Publish(ctx, message.ChannelID, event)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to publish chat message event",
			"post_id", message.PostID,
			"error", err,
		)

		return
	}

	p.logger.DebugContext(ctx, "Published chat message event", "post_id", message.PostID)
}

// markSeen records the message and reports whether it was new.
func (p *Poller) markSeen(message protocol.Message) bool {
	key := message.PostID
	if key == "" {
		key = strings.Join([]string{
			message.ChannelID,
			message.UserID,
			message.Text,
			message.CreatedAt.Format(time.RFC3339Nano),
		}, "|")
	}

	if _, ok := p.seen[key]; ok {
		return false
	}

	p.seen[key] = struct{}{}

	return true
}

// watchedKeywords collects the keyword set across active chat-triggered
// workflows.
func watchedKeywords(workflows []*models.Workflow) map[string]struct{} {
	keywords := make(map[string]struct{})

	for _, wf := range workflows {
		if wf.Status != models.WorkflowStatusActive {
			continue
		}

		node := wf.TriggerNode()
		if node == nil {
			continue
		}

		config := mergedTriggerConfig(wf, node)
		if stringValue(config, "trigger_type") != trigger.TriggerTypeChatMessage {
			continue
		}

		for _, keyword := range stringValues(config, "keywords") {
			if keyword == "" {
				continue
			}

			keywords[keyword] = struct{}{}
		}
	}

	return keywords
}
