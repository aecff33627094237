package telegram

import (
	"fmt"

	tele "gopkg.in/telebot.v3"
)

func (t *Telegram) initHandlers() {
	t.bot.Handle(cmdStart, t.startHandler)
}

// startHandler tells whoever adds the bot which id to put into TG_CHAT_ID.
func (t *Telegram) startHandler(ctx tele.Context) error {
	msg := fmt.Sprintf("Contact form messages go to chat %d. This chat is %d.", int64(t.chat), ctx.Chat().ID)
	if err := ctx.Send(msg); err != nil {
		return fmt.Errorf("tg send message faild: %w", err)
	}
	return nil
}
