package gateway

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rahul/launchpad/internal/onboarding"
	"github.com/rahul/launchpad/internal/orchestrator"
)

type TelegramGateway struct {
	Bot      *tgbotapi.BotAPI
	Commands *CommandHandler
}

func NewTelegramGateway(token string, completer Completer, timeout time.Duration) (*TelegramGateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	return &TelegramGateway{
		Bot:      bot,
		Commands: NewCommandHandler(completer, timeout),
	}, nil
}

func (tg *TelegramGateway) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := tg.Bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil || update.Message.From == nil {
			continue
		}
		tg.handle(context.Background(), update.Message)
	}
	return nil
}

// handle answers one incoming message in the chat it came from.
func (tg *TelegramGateway) handle(ctx context.Context, msg *tgbotapi.Message) {
	log.Printf("[%s] %s", msg.From.UserName, msg.Command())

	userID := "tg:" + strconv.FormatInt(msg.From.ID, 10)
	reply := tg.Commands.Handle(ctx, userID, msg.Command(), msg.CommandArguments())

	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	if err := tg.Send(chatID, reply); err != nil {
		log.Printf("Error sending reply to %s: %v", chatID, err)
	}
}

func (tg *TelegramGateway) Send(chatID string, text string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil || id == 0 {
		return fmt.Errorf("invalid chat ID: %s", chatID)
	}

	// Plain text: replies echo user input and error text.
	_, err = tg.Bot.Send(tgbotapi.NewMessage(id, text))
	return err
}

func (tg *TelegramGateway) Stop() error {
	tg.Bot.StopReceivingUpdates()
	return nil
}

// Completer finishes an onboarding.
type Completer interface {
	Complete(ctx context.Context, in orchestrator.SessionInputs) onboarding.Outcome
}
