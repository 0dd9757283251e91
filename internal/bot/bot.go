package bot

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"

	"invitation-bot/internal/gatekeeper"
)

type Bot struct {
	Instance   *telego.Bot
	Gatekeeper *gatekeeper.Gatekeeper
}

func NewBot(token string, gk *gatekeeper.Gatekeeper) (*Bot, error) {
	tgBot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		Instance:   tgBot,
		Gatekeeper: gk,
	}, nil
}

// Start registers the handlers and blocks on the long-polling loop
// until the process is interrupted.
func (b *Bot) Start() {
	updates, _ := b.Instance.UpdatesViaLongPolling(context.Background(), nil)

	handler, _ := th.NewBotHandler(b.Instance, updates)

	// /start command
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		message := update.Message
		from := message.From

		mention := fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, from.ID, html.EscapeString(from.FirstName))
		reply := b.Gatekeeper.HandleStart(from.ID, mention)
		b.send(ctx, message.Chat.ID, reply)
		return nil
	}, th.CommandEqual("start"))

	// /help command
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		b.send(ctx, update.Message.Chat.ID, b.Gatekeeper.HandleHelp())
		return nil
	}, th.CommandEqual("help"))

	// Any non-command text goes through the gate
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		message := update.Message
		if strings.HasPrefix(message.Text, "/") {
			return nil
		}

		reply := b.Gatekeeper.HandleText(message.From.ID, message.From.FirstName, message.Text)
		b.send(ctx, message.Chat.ID, reply)
		return nil
	}, th.AnyMessageWithText())

	handler.Start()
}

func (b *Bot) send(ctx *th.Context, chatID int64, reply gatekeeper.Reply) {
	if reply.Empty() {
		return
	}

	msg := tu.Message(tu.ID(chatID), reply.Text)
	if reply.HTML {
		msg = msg.WithParseMode(telego.ModeHTML)
	}
	if reply.ForceReply {
		msg = msg.WithReplyMarkup(&telego.ForceReply{ForceReply: true, Selective: true})
	}

	if _, err := ctx.Bot().SendMessage(ctx.Context(), msg); err != nil {
		log.Printf("Failed to send message to chat %d: %v", chatID, err)
	}
}
