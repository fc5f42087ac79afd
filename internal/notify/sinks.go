package notify

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	slackapi "github.com/slack-go/slack"
)

// Sink is a best-effort side channel for ticket announcements.
type Sink interface {
	Name() string
	Post(text string) error
}

// slackPoster abstracts the one Slack API method the sink uses, enabling
// test mocks.
type slackPoster interface {
	PostMessage(channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// SlackSink posts ticket announcements to a Slack channel.
type SlackSink struct {
	client    slackPoster
	channelID string
}

// NewSlackSink creates a SlackSink.
func NewSlackSink(botToken, channelID string) (*SlackSink, error) {
	if botToken == "" || channelID == "" {
		return nil, fmt.Errorf("notify: slack sink needs a bot token and channel id")
	}
	return &SlackSink{
		client:    slackapi.New(botToken),
		channelID: channelID,
	}, nil
}

func (s *SlackSink) Name() string { return "slack" }

// Post sends one message to the configured channel.
func (s *SlackSink) Post(text string) error {
	_, _, err := s.client.PostMessage(s.channelID, slackapi.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("notify: slack post: %w", err)
	}
	return nil
}

// discordPoster abstracts the one Discord method the sink uses.
type discordPoster interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordSink posts ticket announcements to a Discord channel.
type DiscordSink struct {
	session   discordPoster
	channelID string
}

// NewDiscordSink creates a DiscordSink. The session posts over REST only;
// no gateway connection is opened.
func NewDiscordSink(botToken, channelID string) (*DiscordSink, error) {
	if botToken == "" || channelID == "" {
		return nil, fmt.Errorf("notify: discord sink needs a bot token and channel id")
	}
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("notify: discord session: %w", err)
	}
	return &DiscordSink{session: session, channelID: channelID}, nil
}

func (d *DiscordSink) Name() string { return "discord" }

// Post sends one message to the configured channel.
func (d *DiscordSink) Post(text string) error {
	if _, err := d.session.ChannelMessageSend(d.channelID, text); err != nil {
		return fmt.Errorf("notify: discord post: %w", err)
	}
	return nil
}
