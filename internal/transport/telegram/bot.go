// Package telegram runs the bot transport. Every incoming text is either a
// slash command or one agent task; replies go back as Telegram HTML.
package telegram

import (
	"context"
	"fmt"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/trunk/internal/config"
	"github.com/sandevgo/trunk/internal/service/agent"
	"github.com/sandevgo/trunk/pkg/log"
)

const baseContextKey = "base_context"

type Bot struct {
	bot     *tele.Bot
	cfg     *config.TelegramConfig
	agent   *agent.Orchestrator
	router  Router
	sender  *sender
	ownerID int64
}

// Router claims slash commands before input reaches the agent.
type Router interface {
	Execute(ctx context.Context, sessionID, input string) (string, bool)
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	orchestrator *agent.Orchestrator,
	router Router,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:     b,
		cfg:     cfg,
		agent:   orchestrator,
		router:  router,
		sender:  newSender(b),
		ownerID: cfg.OwnerID,
	}

	// Carry the signal context with its logger into every handler.
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Only the owner talks to the agent.
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender().ID != bot.ownerID {
				return nil
			}
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)
	sessionID := fmt.Sprintf("telegram-%d", c.Chat().ID)

	if b.router != nil {
		if reply, handled := b.router.Execute(ctx, sessionID, c.Text()); handled {
			return b.sender.sendMarkdown(ctx, c.Chat(), reply, false)
		}
	}

	_ = c.Notify(tele.Typing)

	result, err := b.agent.Run(ctx, c.Text())
	if err != nil {
		logger.Error().Err(err).Msg("agent run failed")
		return c.Send(fmt.Sprintf("error: %v", err))
	}

	for _, step := range result.Trajectory {
		_ = c.Send(fmt.Sprintf("🛠 %s (%s)", step.Tool, step.Duration.Round(time.Millisecond)))
	}

	return b.sender.sendMarkdown(ctx, c.Chat(), result.Answer, false)
}
