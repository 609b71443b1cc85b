package service

import (
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"matreshka-feed/internal/domain"
)

// AnalyticsService pushes fire-and-forget notifications to the
// analytics Telegram chat. Every method returns immediately; delivery
// happens on a detached goroutine and failures are logged, never
// surfaced, so an analytics outage can neither fail nor delay an
// upload response. In-flight sends are abandoned on shutdown.
type AnalyticsService interface {
	NotifyUpload(photo *domain.Photo)
	NotifyBotStart(user *domain.User)
}

type telegramAnalytics struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewAnalyticsService connects the analytics channel. Returns nil when
// the token or chat id is unconfigured; callers treat nil as disabled.
func NewAnalyticsService(token string, chatID int64) AnalyticsService {
	if token == "" || chatID == 0 {
		return nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Printf("Warning: analytics bot unavailable: %v", err)
		return nil
	}
	return &telegramAnalytics{api: api, chatID: chatID}
}

func (a *telegramAnalytics) NotifyUpload(photo *domain.Photo) {
	owner := photo.Owner
	if owner == "" {
		owner = "anonymous"
	}
	text := fmt.Sprintf(
		"📸 <b>New photo in the feed</b>\n\n"+
			"👤 Owner: %s\n"+
			"🏷 Category: %s\n"+
			"📐 %dx%d, %d bytes\n"+
			"🔗 %s\n"+
			"⏰ %s",
		owner, photo.Category, photo.Width, photo.Height, photo.SizeBytes,
		photo.URL, photo.UploadedAt.Format("02.01.2006 15:04:05"),
	)
	a.send(text)
}

func (a *telegramAnalytics) NotifyBotStart(user *domain.User) {
	premium := ""
	if user.IsPremium {
		premium = "\n⭐ Premium user"
	}
	text := fmt.Sprintf(
		"🚀 <b>Bot started</b>\n\n"+
			"👤 ID: <code>%d</code>\n"+
			"Username: @%s\n"+
			"Name: %s %s\n"+
			"Language: %s%s\n"+
			"⏰ %s",
		user.TelegramID, user.Username, user.FirstName, user.LastName,
		user.LanguageCode, premium, time.Now().Format("02.01.2006 15:04:05"),
	)
	a.send(text)
}

func (a *telegramAnalytics) send(text string) {
	go func() {
		msg := tgbotapi.NewMessage(a.chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		if _, err := a.api.Send(msg); err != nil {
			log.Printf("Warning: failed to send analytics message: %v", err)
		}
	}()
}
