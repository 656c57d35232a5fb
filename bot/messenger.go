package bot

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"
)

// Messenger adapts telebot to the registration.Messenger interface.
type Messenger struct {
	bot *tele.Bot
}

func NewMessenger(bot *tele.Bot) *Messenger {
	return &Messenger{bot: bot}
}

func (m *Messenger) Send(chatID int64, text string, markup *tele.ReplyMarkup) (int, error) {
	opts := &tele.SendOptions{ReplyMarkup: markup}
	sent, err := m.bot.Send(tele.ChatID(chatID), text, opts)
	if err != nil {
		return 0, err
	}
	return sent.ID, nil
}

func (m *Messenger) Reply(chatID int64, replyTo int, text string, markup *tele.ReplyMarkup) (int, error) {
	opts := &tele.SendOptions{
		ReplyTo:     &tele.Message{ID: replyTo, Chat: &tele.Chat{ID: chatID}},
		ReplyMarkup: markup,
	}
	sent, err := m.bot.Send(tele.ChatID(chatID), text, opts)
	if err != nil {
		return 0, err
	}
	return sent.ID, nil
}

func (m *Messenger) Edit(chatID int64, messageID int, text string, markup *tele.ReplyMarkup) error {
	message := tele.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    chatID,
	}
	var err error
	if markup != nil {
		_, err = m.bot.Edit(message, text, markup)
	} else {
		_, err = m.bot.Edit(message, text)
	}
	// Re-rendering an unchanged card is a no-op, not a failure.
	if isNotModified(err) {
		return nil
	}
	return err
}

func (m *Messenger) Delete(chatID int64, messageID int) error {
	return m.bot.Delete(tele.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    chatID,
	})
}

// UserName resolves a display name for voter listings; Telegram lookups can
// fail for users the bot never talked to, then the bare id is shown.
func (m *Messenger) UserName(userID int64) string {
	chat, err := m.bot.ChatByID(userID)
	if err != nil {
		return fmt.Sprintf("User %v", userID)
	}
	name := strings.TrimSpace(strings.TrimSpace(chat.FirstName) + " " + strings.TrimSpace(chat.LastName))
	if name == "" {
		name = chat.Title
	}
	if name == "" && chat.Username == "" {
		return fmt.Sprintf("User %v", userID)
	}
	if chat.Username != "" {
		if name == "" {
			return "@" + chat.Username
		}
		return name + " @" + chat.Username
	}
	return name
}

func isNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
