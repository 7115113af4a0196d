// Package bot is the Discord front-end. One Discord user maps to one
// agent identity; the companion answers DMs and direct mentions only.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"soulkit/internal/session"
)

const resetCommand = "!reset"

// Bot wires a Discord session to the session manager.
type Bot struct {
	dg      *discordgo.Session
	manager *session.Manager
	log     zerolog.Logger
}

// Run opens the Discord session and blocks until ctx is done.
func Run(ctx context.Context, token string, manager *session.Manager, log zerolog.Logger) error {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("bot: create session: %w", err)
	}

	b := &Bot{dg: dg, manager: manager, log: log}

	dg.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("bot: open session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, closing discord session")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	b.log.Info().Str("user", s.State.User.Username).Msg("discord session ready")
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}

	content := strings.TrimSpace(m.Content)
	isDM := m.GuildID == ""
	if !isDM {
		mentioned := false
		for _, u := range m.Mentions {
			if u.ID == s.State.User.ID {
				mentioned = true
				break
			}
		}
		if !mentioned {
			return
		}
		content = stripMention(content, s.State.User.ID)
	}
	if content == "" {
		return
	}

	agentID := m.Author.ID

	if content == resetCommand {
		if err := b.manager.FactoryReset(agentID); err != nil {
			b.log.Error().Err(err).Str("agent", agentID).Msg("factory reset failed")
			b.send(m.ChannelID, "Something went wrong with the reset.")
			return
		}
		b.send(m.ChannelID, "Everything between us starts over now.")
		return
	}

	_ = s.ChannelTyping(m.ChannelID)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	reply, err := b.manager.ProcessTurn(ctx, agentID, content)
	switch {
	case errors.Is(err, session.ErrRateLimited):
		b.log.Warn().Str("agent", agentID).Msg("turn rate limited")
		return
	case err != nil:
		b.log.Error().Err(err).Str("agent", agentID).Msg("turn failed")
		return
	}

	for _, chunk := range splitMessage(reply.Text, 2000) {
		if _, err := s.ChannelMessageSend(m.ChannelID, chunk); err != nil {
			b.log.Error().Err(err).Str("channel", m.ChannelID).Msg("send failed")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func (b *Bot) send(channelID, text string) {
	if _, err := b.dg.ChannelMessageSend(channelID, text); err != nil {
		b.log.Error().Err(err).Str("channel", channelID).Msg("send failed")
	}
}

func stripMention(content, botID string) string {
	content = strings.ReplaceAll(content, "<@"+botID+">", "")
	content = strings.ReplaceAll(content, "<@!"+botID+">", "")
	return strings.TrimSpace(content)
}

func splitMessage(msg string, limit int) []string {
	var result []string
	for len(msg) > limit {
		cut := strings.LastIndex(msg[:limit], "\n")
		if cut == -1 {
			cut = limit
		}
		result = append(result, strings.TrimSpace(msg[:cut]))
		msg = strings.TrimSpace(msg[cut:])
	}
	if msg != "" {
		result = append(result, msg)
	}
	return result
}
