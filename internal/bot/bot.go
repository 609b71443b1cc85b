// Package bot is the Telegram ingestion path: photos sent to the bot
// go through the same upload pipeline as HTTP uploads, and commands
// point users at the web app.
package bot

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"matreshka-feed/internal/config"
	"matreshka-feed/internal/domain"
	"matreshka-feed/internal/service"
)

type Bot struct {
	api       *tgbotapi.BotAPI
	photos    service.PhotoService
	users     service.UserService
	analytics service.AnalyticsService
	webAppURL string
	client    *http.Client
}

func New(cfg *config.Config, services *service.Services) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("connect bot: %w", err)
	}

	return &Bot{
		api:       api,
		photos:    services.Photo,
		users:     services.User,
		analytics: services.Analytics,
		webAppURL: cfg.WebAppURL,
		client:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Run polls for updates until ctx is cancelled. Handler panics or
// errors never stop the loop; a broken message is logged and skipped.
func (b *Bot) Run(ctx context.Context) {
	log.Printf("Bot started as @%s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil {
			continue
		}
		b.handleMessage(ctx, update.Message)
	}

	log.Println("Bot stopped")
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Bot handler panic: %v", r)
		}
	}()

	switch {
	case msg.IsCommand():
		b.handleCommand(ctx, msg)
	case len(msg.Photo) > 0:
		b.handlePhoto(ctx, msg)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		user := b.upsertSender(ctx, msg)
		if b.analytics != nil && user != nil {
			b.analytics.NotifyBotStart(user)
		}
		b.replyWithButton(msg.Chat.ID,
			fmt.Sprintf("Привет, %s! 👋\n\n"+
				"🪆 Добро пожаловать в <b>Матрешку</b> — твой путеводитель по России!\n\n"+
				"📸 Пришли мне фото из путешествия, и оно появится в ленте.\n"+
				"Нажми кнопку ниже, чтобы открыть приложение! 👇", msg.From.FirstName))
	case "help":
		b.replyWithButton(msg.Chat.ID,
			"🪆 <b>Матрешка — Помощь</b>\n\n"+
				"/start — запустить приложение\n"+
				"/help — эта справка\n"+
				"/about — о приложении\n\n"+
				"Просто пришли фото, чтобы добавить его в ленту путешествий.")
	case "about":
		b.replyWithButton(msg.Chat.ID,
			"🪆 <b>О приложении Матрешка</b>\n\n"+
				"Сервис для путешествий по России: регионы, готовые пакеты, "+
				"QR-коды партнеров и лента фотографий от пользователей.\n\n"+
				"🚀 Версия: 1.0")
	}
}

// handlePhoto downloads the best-resolution size of an incoming photo
// and pushes it through the shared upload path, keeping the caller
// informed via an editable status message.
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	user := b.upsertSender(ctx, msg)

	status, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, "⏳ Загружаю фото..."))
	if err != nil {
		log.Printf("Bot: failed to send status message: %v", err)
	}

	// Telegram orders sizes ascending; the last one is the original.
	size := msg.Photo[len(msg.Photo)-1]

	data, err := b.download(size.FileID)
	if err != nil {
		log.Printf("Bot: failed to download photo %s: %v", size.FileID, err)
		b.editStatus(status, "❌ Не удалось скачать фото. Попробуйте позже.")
		return
	}

	owner := ownerName(msg.From, user)
	photo, err := b.photos.Upload(ctx, domain.UploadInput{
		FileName:    size.FileID + ".jpg",
		Data:        data,
		Owner:       owner,
		Category:    "travel",
		Description: msg.Caption,
	})
	if err != nil {
		log.Printf("Bot: failed to store photo from %d: %v", msg.From.ID, err)
		b.editStatus(status, "❌ Произошла ошибка при сохранении фото. Попробуйте позже.")
		return
	}

	log.Printf("Bot: photo %s added to feed by %s", photo.ID, owner)
	b.editStatus(status, fmt.Sprintf(
		"✅ Отлично! Фото добавлено в ленту путешествий!\n\n"+
			"📱 Оно будет видно в разделе 'Лента' приложения Матрешка.\n"+
			"🕒 Время добавления: %s", photo.UploadedAt.Format("02.01.2006 15:04")))
}

// upsertSender refreshes the cached Telegram account. Best effort: a
// store failure must not block the message being handled.
func (b *Bot) upsertSender(ctx context.Context, msg *tgbotapi.Message) *domain.User {
	if msg.From == nil {
		return nil
	}
	// IsPremium is not exposed by this client version and stays false.
	user := &domain.User{
		TelegramID:   msg.From.ID,
		Username:     msg.From.UserName,
		FirstName:    msg.From.FirstName,
		LastName:     msg.From.LastName,
		LanguageCode: msg.From.LanguageCode,
	}
	if err := b.users.Upsert(ctx, user); err != nil {
		log.Printf("Bot: failed to upsert user %d: %v", msg.From.ID, err)
	}
	return user
}

func (b *Bot) download(fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}
	resp, err := b.client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (b *Bot) replyWithButton(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if b.webAppURL != "" {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL("🪆 Открыть Матрешку", b.webAppURL),
			),
		)
	}
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Bot: failed to send reply: %v", err)
	}
}

func (b *Bot) editStatus(status tgbotapi.Message, text string) {
	if status.MessageID == 0 {
		return
	}
	edit := tgbotapi.NewEditMessageText(status.Chat.ID, status.MessageID, text)
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Bot: failed to edit status message: %v", err)
	}
}

func ownerName(from *tgbotapi.User, cached *domain.User) string {
	if cached != nil {
		return cached.DisplayName()
	}
	if from == nil {
		return ""
	}
	if from.UserName != "" {
		return "@" + from.UserName
	}
	return from.FirstName
}
