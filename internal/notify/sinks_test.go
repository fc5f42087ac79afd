package notify

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	slackapi "github.com/slack-go/slack"
)

type mockSlackPoster struct {
	channel string
	err     error
}

func (m *mockSlackPoster) PostMessage(channelID string, options ...slackapi.MsgOption) (string, string, error) {
	m.channel = channelID
	return channelID, "ts", m.err
}

func TestSlackSink_Post(t *testing.T) {
	poster := &mockSlackPoster{}
	sink := &SlackSink{client: poster, channelID: "C123"}

	if err := sink.Post("hello"); err != nil {
		t.Fatalf("post: %v", err)
	}
	if poster.channel != "C123" {
		t.Errorf("channel = %q", poster.channel)
	}

	poster.err = errors.New("channel_not_found")
	if err := sink.Post("hello"); err == nil {
		t.Fatal("expected error")
	}
}

type mockDiscordPoster struct {
	channel string
	content string
	err     error
}

func (m *mockDiscordPoster) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.channel, m.content = channelID, content
	return &discordgo.Message{}, m.err
}

func TestDiscordSink_Post(t *testing.T) {
	poster := &mockDiscordPoster{}
	sink := &DiscordSink{session: poster, channelID: "D456"}

	if err := sink.Post("hello"); err != nil {
		t.Fatalf("post: %v", err)
	}
	if poster.channel != "D456" || poster.content != "hello" {
		t.Errorf("post = %q %q", poster.channel, poster.content)
	}
}

func TestNewSinks_Validation(t *testing.T) {
	if _, err := NewSlackSink("", "C123"); err == nil {
		t.Error("slack sink accepted empty token")
	}
	if _, err := NewSlackSink("xoxb-token", ""); err == nil {
		t.Error("slack sink accepted empty channel")
	}
	if _, err := NewDiscordSink("", "D456"); err == nil {
		t.Error("discord sink accepted empty token")
	}
}
