// Package notifier уведомления администраторов о новых записях очереди ревью.
package notifier

import (
	"context"
	"fmt"
	"html"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"bullion_market/internal/domain/entity"
)

type messageSender interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

type TelegramBot struct {
	sender messageSender
	chatID int64
}

func NewTelegramBot(token string, chatID int64) (*TelegramBot, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return newTelegramBot(bot, chatID), nil
}

func newTelegramBot(sender messageSender, chatID int64) *TelegramBot {
	return &TelegramBot{
		sender: sender,
		chatID: chatID,
	}
}

// NotifyExportQueued отправляет в админский чат карточку новой записи.
func (b *TelegramBot) NotifyExportQueued(ctx context.Context, export *entity.PendingExport) error {
	text := fmt.Sprintf(
		"📝 <b>New export for review</b>\n\n"+
			"<b>Project:</b> %s\n"+
			"<b>Purchase:</b> #%d\n"+
			"<b>Amount:</b> %s\n"+
			"<b>Risk:</b> %s, <b>yield:</b> %s%%\n"+
			"<b>Route:</b> %s → %s\n\n"+
			"Export ID: <code>%d</code>",
		html.EscapeString(export.Params.Name),
		export.PurchaseID,
		export.Params.AmountRequired.StringFixed(2),
		export.Params.RiskTier,
		export.Params.TargetYield.String(),
		html.EscapeString(export.Params.Origin),
		html.EscapeString(export.Params.Destination),
		export.ID,
	)

	msg := tu.Message(
		tu.ID(b.chatID),
		text,
	).WithParseMode(telego.ModeHTML)

	if _, err := b.sender.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	logger(ctx).Debug("export notification sent", "export_id", export.ID, "chat_id", b.chatID)

	return nil
}
