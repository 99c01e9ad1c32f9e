package notify

import (
	"context"
	"fmt"
	"html"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"tomorrow-reminder/internal/clock"
)

// dedupHorizon is how long a tag suppresses repeat deliveries. The scanner
// never refires a task, so this only guards against overlapping callers.
const dedupHorizon = 5 * time.Minute

// MessageSender is the slice of the Telegram API the dispatcher needs.
// *tgbotapi.BotAPI satisfies it.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// ChatBinding tracks the chat that receives reminders. Until a chat is bound
// the permission state is "default" and dispatches are suppressed, mirroring
// an unanswered permission prompt.
type ChatBinding struct {
	mu     sync.Mutex
	chatID int64
}

// NewChatBinding returns a binding, pre-bound when chatID is non-zero.
func NewChatBinding(chatID int64) *ChatBinding {
	return &ChatBinding{chatID: chatID}
}

// Bind adopts a chat as the reminder target.
func (b *ChatBinding) Bind(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chatID = chatID
}

// ChatID returns the bound chat and whether one is bound.
func (b *ChatBinding) ChatID() (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chatID, b.chatID != 0
}

// Status implements PermissionSource.
func (b *ChatBinding) Status() Permission {
	if _, ok := b.ChatID(); ok {
		return PermissionGranted
	}
	return PermissionDefault
}

// Telegram delivers reminders as Telegram messages to the bound chat.
type Telegram struct {
	sender  MessageSender
	binding *ChatBinding
	clock   clock.Clock
	logger  *zap.Logger

	mu       sync.Mutex
	lastSent map[string]time.Time // tag -> delivery time
}

func NewTelegram(sender MessageSender, binding *ChatBinding, clk clock.Clock, logger *zap.Logger) *Telegram {
	return &Telegram{
		sender:   sender,
		binding:  binding,
		clock:    clk,
		logger:   logger,
		lastSent: make(map[string]time.Time),
	}
}

func (t *Telegram) Dispatch(ctx context.Context, n Notification) Outcome {
	if err := ctx.Err(); err != nil {
		t.logger.Warn("notification dropped, context done", zap.String("tag", n.Tag), zap.Error(err))
		return OutcomeFailed
	}

	if t.binding.Status() != PermissionGranted {
		t.logger.Info("notification suppressed, no chat bound", zap.String("tag", n.Tag))
		return OutcomeSuppressed
	}

	if t.duplicate(n.Tag) {
		t.logger.Debug("notification collapsed by tag", zap.String("tag", n.Tag))
		return OutcomeSuppressed
	}

	chatID, _ := t.binding.ChatID()
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("⏰ <b>%s</b>\n%s", html.EscapeString(n.Title), html.EscapeString(n.Body)))
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := t.sender.Send(msg); err != nil {
		t.logger.Error("notification delivery failed", zap.String("tag", n.Tag), zap.Error(err))
		return OutcomeFailed
	}

	t.markSent(n.Tag)
	return OutcomeSent
}

// duplicate reports whether tag was delivered within the dedup horizon, and
// prunes expired entries while it holds the lock.
func (t *Telegram) duplicate(tag string) bool {
	now := t.clock.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, at := range t.lastSent {
		if now.Sub(at) > dedupHorizon {
			delete(t.lastSent, k)
		}
	}
	_, seen := t.lastSent[tag]
	return seen
}

func (t *Telegram) markSent(tag string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastSent[tag] = t.clock.Now()
}
