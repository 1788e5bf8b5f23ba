package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rahul/launchpad/internal/onboarding"
	"github.com/rahul/launchpad/internal/orchestrator"
)

type sentMessage struct {
	chatID string
	text   string
}

// newTestBot starts a Bot API stand-in that records sendMessage calls.
func newTestBot(t *testing.T) (*tgbotapi.BotAPI, func() []sentMessage) {
	t.Helper()
	var mu sync.Mutex
	var sent []sentMessage

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Launchpad","username":"launchpad_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			if err := r.ParseForm(); err != nil {
				t.Errorf("bad form: %v", err)
			}
			mu.Lock()
			sent = append(sent, sentMessage{chatID: r.FormValue("chat_id"), text: r.FormValue("text")})
			mu.Unlock()
			w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`))
		default:
			w.Write([]byte(`{"ok":false,"error_code":404,"description":"Not Found"}`))
		}
	}))
	t.Cleanup(srv.Close)

	bot, err := tgbotapi.NewBotAPIWithClient("test-token", srv.URL+"/bot%s/%s", srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	return bot, func() []sentMessage {
		mu.Lock()
		defer mu.Unlock()
		return append([]sentMessage(nil), sent...)
	}
}

func TestTelegramHandle_RepliesInChat(t *testing.T) {
	bot, sent := newTestBot(t)
	completer := &recordingCompleter{outcome: onboarding.Outcome{
		Result: orchestrator.Result{Success: true, BusinessID: "biz-1", TaskCount: 12, HeroTaskID: "task_1"},
		Source: onboarding.SourceFallback,
	}}
	tg := &TelegramGateway{Bot: bot, Commands: NewCommandHandler(completer, 0)}

	tg.handle(context.Background(), &tgbotapi.Message{
		Text:     "/onboard businessName: Northwind",
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 8}},
		From:     &tgbotapi.User{ID: 7, UserName: "founder"},
		Chat:     &tgbotapi.Chat{ID: 42},
	})

	if completer.got.UserID != "tg:7" || completer.got.Answers.BusinessName() != "Northwind" {
		t.Errorf("unexpected inputs %+v", completer.got)
	}
	msgs := sent()
	if len(msgs) != 1 {
		t.Fatalf("expected one reply, got %d", len(msgs))
	}
	if msgs[0].chatID != "42" {
		t.Errorf("reply sent to chat %s", msgs[0].chatID)
	}
	if !strings.Contains(msgs[0].text, "starter plan") || !strings.Contains(msgs[0].text, "task_1") {
		t.Errorf("unexpected reply %q", msgs[0].text)
	}
}

func TestTelegramSend_InvalidChat(t *testing.T) {
	bot, sent := newTestBot(t)
	tg := &TelegramGateway{Bot: bot}

	for _, chatID := range []string{"", "abc", "0"} {
		if err := tg.Send(chatID, "hello"); err == nil {
			t.Errorf("expected error for chat id %q", chatID)
		}
	}
	if len(sent()) != 0 {
		t.Error("nothing should be sent to an invalid chat")
	}
}
