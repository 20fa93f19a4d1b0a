package discord

import (
	"fmt"

	"instacord/internal/constants"
	"instacord/internal/models"

	"github.com/bwmarrin/discordgo"
)

// Client is the destination surface the bridge consumes: find or
// create a text channel by name under a guild, and send one rendered
// message to a channel.
type Client interface {
	Open() error
	Close() error
	FindChannel(guildID, name string) (string, error)
	CreateChannel(guildID, categoryID, name, topic string) (string, error)
	SendMessage(channelID string, msg models.RenderableMessage) error
}

type DiscordClient struct {
	session *discordgo.Session
}

// NewClient creates a Discord client from a bot token. The gateway
// connection is not opened until Open is called.
func NewClient(token string) (*DiscordClient, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	return &DiscordClient{session: session}, nil
}

// Open connects to the gateway. Channel and role lookups need the
// session state populated, which happens on the ready event.
func (c *DiscordClient) Open() error {
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}
	return nil
}

func (c *DiscordClient) Close() error {
	return c.session.Close()
}

// BotUser returns the authenticated bot user's tag for logging.
func (c *DiscordClient) BotUser() string {
	if c.session.State != nil && c.session.State.User != nil {
		return c.session.State.User.Username
	}
	return ""
}

// FindChannel returns the ID of an existing text channel with the
// given name, or empty when none exists.
func (c *DiscordClient) FindChannel(guildID, name string) (string, error) {
	channels, err := c.session.GuildChannels(guildID)
	if err != nil {
		return "", fmt.Errorf("failed to list channels for guild %s: %w", guildID, err)
	}
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText && ch.Name == name {
			return ch.ID, nil
		}
	}
	return "", nil
}

// CreateChannel creates a text channel hidden from @everyone and
// visible to the bot, optionally under a category.
func (c *DiscordClient) CreateChannel(guildID, categoryID, name, topic string) (string, error) {
	if c.session.State == nil || c.session.State.User == nil {
		return "", fmt.Errorf("discord session not ready")
	}
	botID := c.session.State.User.ID

	// The @everyone role shares its ID with the guild.
	overwrites := []*discordgo.PermissionOverwrite{
		{
			ID:   guildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    botID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages,
		},
	}

	ch, err := c.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                topic,
		ParentID:             categoryID,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create channel %s: %w", name, err)
	}
	return ch.ID, nil
}

// SendMessage delivers one rendered message as an embed.
func (c *DiscordClient) SendMessage(channelID string, msg models.RenderableMessage) error {
	if _, err := c.session.ChannelMessageSendEmbed(channelID, buildEmbed(msg)); err != nil {
		return fmt.Errorf("failed to send embed to channel %s: %w", channelID, err)
	}
	return nil
}

func buildEmbed(msg models.RenderableMessage) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       msg.Title,
		Description: truncateBody(msg.Body),
		Color:       msg.Color,
	}
	if msg.ImageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: msg.ImageURL}
	}
	if msg.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: msg.Footer}
	}
	for _, f := range msg.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	return embed
}

func truncateBody(text string) string {
	runes := []rune(text)
	if len(runes) > constants.MaxBodyLength {
		return string(runes[:constants.MaxBodyLength-3]) + "..."
	}
	return text
}
