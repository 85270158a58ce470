package dispatch

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/solomonsojay/TaskDefender-sub000/internal/logging"
)

// DiscordNotifier delivers push notifications as Discord messages to a
// fixed channel. Clearing a tag deletes the message it produced, which is
// how a push is withdrawn once the user has interacted with the modal.
type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string

	mu       sync.Mutex
	messages map[string]string // tag -> Discord message ID
}

// NewDiscordNotifier creates a notifier over an already-open session.
func NewDiscordNotifier(session *discordgo.Session, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
		messages:  make(map[string]string),
	}
}

// Notify sends the notification. Re-notifying an existing tag replaces the
// previous message.
func (n *DiscordNotifier) Notify(title, body, tag string) error {
	if n.session == nil || n.channelID == "" {
		return fmt.Errorf("discord notifier not configured")
	}

	if err := n.Clear(tag); err != nil {
		logging.Debug("dispatch", "clear before renotify failed: %v", err)
	}

	msg, err := n.session.ChannelMessageSend(n.channelID,
		fmt.Sprintf("**%s**\n%s", title, body))
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	n.mu.Lock()
	n.messages[tag] = msg.ID
	n.mu.Unlock()
	return nil
}

// Clear removes the message previously sent for tag, if any.
func (n *DiscordNotifier) Clear(tag string) error {
	n.mu.Lock()
	msgID, ok := n.messages[tag]
	if ok {
		delete(n.messages, tag)
	}
	n.mu.Unlock()

	if !ok {
		return nil
	}
	if err := n.session.ChannelMessageDelete(n.channelID, msgID); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}
