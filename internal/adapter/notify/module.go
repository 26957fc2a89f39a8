package notify

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/shopcore/internal/config"
	"github.com/polkiloo/shopcore/internal/events"
)

// Module wires the notifier with whichever channels are configured.
var Module = fx.Options(
	fx.Provide(newNotifier),
	fx.Provide(func(n *Notifier) events.Notifier { return n }),
)

type notifierParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newNotifier(p notifierParams) *Notifier {
	var mail MailSender
	if p.Config.SMTPHost != "" {
		mail = NewSMTPSender(p.Config.SMTPHost, p.Config.SMTPPort, p.Config.SMTPUser,
			p.Config.SMTPPassword, p.Config.SMTPFrom)
	} else {
		p.Logger.Warn("SMTP not configured, email notifications disabled")
	}

	var messenger Messenger
	if p.Config.TelegramBotToken != "" && p.Config.TelegramChatID != "" {
		messenger = NewTelegramClient(p.Config.TelegramBotToken, p.Config.TelegramChatID)
	} else {
		p.Logger.Warn("telegram not configured, bot notifications disabled")
	}

	return NewNotifier(mail, messenger, p.Config.AdminEmail, p.Logger)
}
