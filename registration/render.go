package registration

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	tele "gopkg.in/telebot.v3"

	"ride-registration-bot/posts"
	"ride-registration-bot/templates"
	"ride-registration-bot/votes"
)

// renderCard builds the card text for current counts. Byte-for-byte
// deterministic: the same counts always produce the same text.
func (s *Service) renderCard(ctx context.Context, key posts.Key) (string, error) {
	counts, err := s.votes.Counts(ctx, key)
	if err != nil {
		return "", err
	}
	text := fmt.Sprintf(templates.Card, counts.Join, counts.Maybe, counts.Decline)
	if s.cfg.ShowChangedMindStats && counts.ChangedMind > 0 {
		text += fmt.Sprintf(templates.ChangedMind, counts.ChangedMind)
	}
	return text, nil
}

func (s *Service) renderVoters(ctx context.Context, key posts.Key) (string, error) {
	groups, err := s.votes.VotersByStatus(ctx, key)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(templates.VotersTitle)
	b.WriteString("\n")
	total := 0
	for _, status := range votes.Statuses {
		ids := groups[status]
		if len(ids) == 0 {
			continue
		}
		total += len(ids)
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf(templates.VotersGroup, templates.StatusEmoji[string(status)], statusLabel(status), len(ids)))
		b.WriteString("\n")
		lines := lo.Map(ids, func(id int64, _ int) string {
			return fmt.Sprintf("  • %v", s.messenger.UserName(id))
		})
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n")
	}
	if total == 0 {
		b.WriteString("\n")
		b.WriteString(templates.VotersEmpty)
	}
	return b.String(), nil
}

// VotersReport is the admin view: summary counts followed by the listing.
func (s *Service) VotersReport(ctx context.Context, key posts.Key) (string, error) {
	counts, err := s.votes.Counts(ctx, key)
	if err != nil {
		return "", err
	}
	listing, err := s.renderVoters(ctx, key)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf(templates.VotersSummary, counts.Join, counts.Maybe, counts.Decline))
	if s.cfg.ShowChangedMindStats && counts.ChangedMind > 0 {
		b.WriteString(fmt.Sprintf(templates.ChangedMind, counts.ChangedMind))
	}
	b.WriteString("\n")
	b.WriteString(listing)
	return b.String(), nil
}

func statusLabel(status votes.Status) string {
	switch status {
	case votes.StatusJoin:
		return "Join"
	case votes.StatusMaybe:
		return "Maybe"
	default:
		return "Decline"
	}
}

func (s *Service) buildMarkup(key posts.Key, includeLink bool) *tele.ReplyMarkup {
	buttons := s.cfg.Buttons
	voteRow := []tele.InlineButton{{
		Text: label(buttons.CustomText.Join, templates.ButtonJoin),
		Data: fmt.Sprintf("v:%v:%v:%v", votes.StatusJoin, key.ChannelID, key.MessageID),
	}}
	if buttons.Visibility.ShowMaybe() {
		voteRow = append(voteRow, tele.InlineButton{
			Text: label(buttons.CustomText.Maybe, templates.ButtonMaybe),
			Data: fmt.Sprintf("v:%v:%v:%v", votes.StatusMaybe, key.ChannelID, key.MessageID),
		})
	}
	if buttons.Visibility.ShowDecline() {
		voteRow = append(voteRow, tele.InlineButton{
			Text: label(buttons.CustomText.Decline, templates.ButtonDecline),
			Data: fmt.Sprintf("v:%v:%v:%v", votes.StatusDecline, key.ChannelID, key.MessageID),
		})
	}
	rows := [][]tele.InlineButton{voteRow}

	var toolRow []tele.InlineButton
	if buttons.Visibility.ShowVoters() {
		toolRow = append(toolRow, tele.InlineButton{
			Text: label(buttons.CustomText.Voters, templates.ButtonVoters),
			Data: fmt.Sprintf("voters:%v:%v", key.ChannelID, key.MessageID),
		})
	}
	if buttons.Visibility.ShowRefresh() {
		toolRow = append(toolRow, tele.InlineButton{
			Text: label(buttons.CustomText.Refresh, templates.ButtonRefresh),
			Data: fmt.Sprintf("refresh:%v:%v", key.ChannelID, key.MessageID),
		})
	}
	if len(toolRow) > 0 {
		rows = append(rows, toolRow)
	}
	for _, extra := range buttons.Additional {
		rows = append(rows, []tele.InlineButton{{Text: extra.Text, URL: extra.URL}})
	}
	if includeLink {
		rows = append(rows, []tele.InlineButton{{
			Text: templates.ButtonOriginalPost,
			URL:  MessageLink(key.ChannelID, key.MessageID),
		}})
	}
	return &tele.ReplyMarkup{InlineKeyboard: rows}
}

func label(custom, fallback string) string {
	if custom != "" {
		return custom
	}
	return fallback
}
