package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v3"
)

const cmdStart = "/start"

// Telegram forwards contact messages to the association chat.
type Telegram struct {
	log  *logrus.Entry
	bot  *tele.Bot
	chat tele.ChatID
}

func New(log *logrus.Logger, bot *tele.Bot, chatID int64) *Telegram {
	t := Telegram{
		log:  log.WithField("component", "telegram"),
		bot:  bot,
		chat: tele.ChatID(chatID),
	}
	t.initHandlers()
	return &t
}

func NewBot(token string) (*tele.Bot, error) {
	config := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(config)
	if err != nil {
		return nil, fmt.Errorf("new bot faild: %w", err)
	}
	return b, nil
}

func (t *Telegram) Notify(_ context.Context, msg string, contact interface{}) error {
	if _, err := t.bot.Send(t.chat, msg); err != nil {
		return fmt.Errorf("tg send message to %v faild: %w", contact, err)
	}
	t.log.Infof("Notification sent for %v", contact)
	return nil
}

func (t *Telegram) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		t.bot.Stop()
	}()
	t.log.Infof("Starting telegram bot as %v", t.bot.Me.Username)
	t.bot.Start()
}
