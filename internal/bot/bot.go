// Package bot is the rendering surface of the reminder app: a Telegram chat
// that lists the today/tomorrow buckets and drives task mutations. Every
// mutating action re-renders the affected bucket.
package bot

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"tomorrow-reminder/internal/clock"
	"tomorrow-reminder/internal/model"
	"tomorrow-reminder/internal/notify"
	"tomorrow-reminder/internal/service"
	"tomorrow-reminder/internal/storage"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageContent
	stageBucket
	stageTime
	stageReminder
)

const (
	cbCompletePrefix = "complete:"
	cbDeletePrefix   = "delete:"
)

const (
	btnToday    = "Today"
	btnTomorrow = "Tomorrow"
	btnYes      = "Yes"
	btnNo       = "No"
)

type conversationState struct {
	stage conversationStage
	input storage.AddTaskInput
}

// Bot polls Telegram updates and translates them into store operations.
type Bot struct {
	api     *tgbotapi.BotAPI
	store   *storage.Store
	scanner *service.Scanner
	binding *notify.ChatBinding
	clock   clock.Clock
	logger  *zap.Logger

	mu            sync.Mutex
	conversations map[int64]*conversationState
}

// New wires the bot around an authorized API client. The client is created by
// the caller so the notification dispatcher can share the same connection.
func New(api *tgbotapi.BotAPI, store *storage.Store, scanner *service.Scanner, binding *notify.ChatBinding, clk clock.Clock, logger *zap.Logger) *Bot {
	logger.Info("bot authorized", zap.String("account", api.Self.UserName))

	return &Bot{
		api:           api,
		store:         store,
		scanner:       scanner,
		binding:       binding,
		clock:         clk,
		logger:        logger,
		conversations: make(map[int64]*conversationState),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.logger.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.logger.Warn("handle callback", zap.Error(err))
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.logger.Warn("handle message", zap.Error(err))
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if msg.IsCommand() {
		b.logger.Info("command",
			zap.Int64("user", msg.From.ID),
			zap.String("command", msg.Command()),
		)
		return b.handleCommand(ctx, msg)
	}

	if b.hasConversation(msg.From.ID) {
		return b.handleConversation(msg)
	}

	return b.sendText(msg.Chat.ID, "I did not understand that. Use /add to create a task or /help for the command list.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "today":
		return b.sendBucket(msg.Chat.ID, model.Today(b.clock.Now()), "Today")
	case "tomorrow":
		return b.sendBucket(msg.Chat.ID, model.Tomorrow(b.clock.Now()), "Tomorrow")
	case "add":
		b.setConversation(msg.From.ID, &conversationState{stage: stageContent})
		return b.sendText(msg.Chat.ID, "What should I remind you about? Send the task text, or /cancel to stop.")
	case "cancel":
		b.clearConversation(msg.From.ID)
		return b.sendTextWithRemove(msg.Chat.ID, "Okay, nothing added.")
	case "check":
		fired := b.scanner.Scan(ctx)
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Checked reminders, %d fired.", fired))
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. Try /help.")
	}
}

// handleStart binds the chat as the reminder target and runs a catch-up scan,
// the resume path of the app.
func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	b.binding.Bind(msg.Chat.ID)
	b.scanner.Scan(ctx)
	return b.sendText(msg.Chat.ID,
		"Hi! I keep your plans for today and tomorrow and ping you when a task is due.\n\n"+
			"/add - create a task\n/today - today's plan\n/tomorrow - tomorrow's plan\n/check - re-check reminders now")
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	return b.sendText(msg.Chat.ID,
		"/add - create a task for today or tomorrow\n"+
			"/today - show today's tasks\n"+
			"/tomorrow - show tomorrow's tasks\n"+
			"/check - re-check reminders now\n"+
			"/cancel - abandon the current dialog\n\n"+
			"Use the buttons under a list to complete or delete a task. "+
			"Tasks older than yesterday are swept automatically.")
}

func (b *Bot) handleConversation(msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}
	text := strings.TrimSpace(msg.Text)

	switch state.stage {
	case stageContent:
		if text == "" {
			return b.sendText(msg.Chat.ID, "The task text cannot be empty. Try again.")
		}
		state.input.Content = text
		state.stage = stageBucket
		return b.sendChoices(msg.Chat.ID, "For which day?", btnToday, btnTomorrow)

	case stageBucket:
		now := b.clock.Now()
		switch text {
		case btnToday:
			state.input.Date = model.Today(now)
		case btnTomorrow:
			state.input.Date = model.Tomorrow(now)
		default:
			return b.sendChoices(msg.Chat.ID, "Please pick Today or Tomorrow.", btnToday, btnTomorrow)
		}
		state.stage = stageTime
		return b.sendTextWithRemove(msg.Chat.ID, "At what time? Send HH:MM, e.g. 09:30.")

	case stageTime:
		if !model.ValidTime(text) {
			return b.sendText(msg.Chat.ID, "That does not look like HH:MM. Try again, e.g. 07:45.")
		}
		state.input.Time = text
		state.stage = stageReminder
		return b.sendChoices(msg.Chat.ID, "Remind you when the time comes?", btnYes, btnNo)

	case stageReminder:
		switch text {
		case btnYes:
			state.input.HasReminder = true
		case btnNo:
			state.input.HasReminder = false
		default:
			return b.sendChoices(msg.Chat.ID, "Please answer Yes or No.", btnYes, btnNo)
		}
		input := state.input
		b.clearConversation(msg.From.ID)

		task, err := b.store.Add(input)
		if err != nil {
			return b.sendTextWithRemove(msg.Chat.ID, fmt.Sprintf("Could not create the task: %s", err))
		}
		if err := b.sendTextWithRemove(msg.Chat.ID, fmt.Sprintf("Added %s at %s.", html.EscapeString(task.Content), task.Time)); err != nil {
			return err
		}
		return b.sendBucket(msg.Chat.ID, task.Date, bucketLabel(task.Date, b.clock.Now()))
	}

	return nil
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warn("callback ack", zap.Error(err))
	}

	chatID := cb.Message.Chat.ID
	data := cb.Data

	switch {
	case strings.HasPrefix(data, cbCompletePrefix):
		id := strings.TrimPrefix(data, cbCompletePrefix)
		completed := true
		b.store.Update(id, storage.TaskPatch{Completed: &completed})
	case strings.HasPrefix(data, cbDeletePrefix):
		id := strings.TrimPrefix(data, cbDeletePrefix)
		b.store.Delete(id)
	default:
		return nil
	}

	// The mutated task's bucket is not recoverable from the callback alone
	// once the task is deleted, so re-render today's list.
	return b.sendBucket(chatID, model.Today(b.clock.Now()), "Today")
}

// sendBucket renders one day's tasks with complete/delete buttons. Tasks in
// the ±30 minute window around now are marked as current.
func (b *Bot) sendBucket(chatID int64, dateStr, label string) error {
	tasks := b.store.TasksForDate(dateStr)
	if len(tasks) == 0 {
		return b.sendText(chatID, fmt.Sprintf("%s (%s): no tasks yet. Use /add to plan one.", label, dateStr))
	}

	current := make(map[string]bool)
	for _, t := range b.store.CurrentTasks() {
		current[t.ID] = true
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📋 <b>%s</b> · %s\n\n", label, dateStr))

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, task := range tasks {
		builder.WriteString(formatTask(task, current[task.ID]))
		buttons = append(buttons, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✅ %s", shortContent(task.Content, 20)), cbCompletePrefix+task.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", cbDeletePrefix+task.ID),
		})
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func formatTask(task model.Task, isCurrent bool) string {
	icon := "🕐"
	switch {
	case task.Completed:
		icon = "✅"
	case isCurrent:
		icon = "🔥"
	}

	line := fmt.Sprintf("%s <b>%s</b> %s", icon, task.Time, html.EscapeString(task.Content))
	if task.HasReminder && !task.Completed {
		if task.Reminded {
			line += " 🔕"
		} else {
			line += " ⏰"
		}
	}
	return line + "\n"
}

func bucketLabel(dateStr string, now time.Time) string {
	switch dateStr {
	case model.Today(now):
		return "Today"
	case model.Tomorrow(now):
		return "Tomorrow"
	default:
		return dateStr
	}
}

func shortContent(content string, limit int) string {
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit-1]) + "…"
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

// sendTextWithRemove also clears any reply keyboard left by a choice prompt.
func (b *Bot) sendTextWithRemove(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendChoices(chatID int64, text string, options ...string) error {
	row := make([]tgbotapi.KeyboardButton, 0, len(options))
	for _, opt := range options {
		row = append(row, tgbotapi.NewKeyboardButton(opt))
	}
	keyboard := tgbotapi.NewReplyKeyboard(row)
	keyboard.OneTimeKeyboard = true

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}
