package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/mymmrac/telego"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"bullion_market/internal/domain/entity"
	"bullion_market/internal/domain/value"
)

type senderMock struct {
	sent []*telego.SendMessageParams
	err  error
}

func (m *senderMock) SendMessage(_ context.Context, params *telego.SendMessageParams) (*telego.Message, error) {
	m.sent = append(m.sent, params)
	if m.err != nil {
		return nil, m.err
	}

	return &telego.Message{}, nil
}

func TestNotifyExportQueued(t *testing.T) {
	rq := require.New(t)

	sender := &senderMock{}
	bot := newTelegramBot(sender, -100500)

	err := bot.NotifyExportQueued(context.Background(), &entity.PendingExport{
		ID:         12,
		PurchaseID: 34,
		Params: entity.ExportParams{
			Name:           "Gold <bar> – Acme #34",
			RiskTier:       value.RiskMedium,
			TargetYield:    decimal.NewFromInt(8),
			AmountRequired: decimal.NewFromInt(2000),
			Origin:         "Accra",
			Destination:    "Zurich",
		},
	})
	rq.NoError(err)
	rq.Len(sender.sent, 1)

	msg := sender.sent[0]
	rq.Equal(telego.ModeHTML, msg.ParseMode)
	rq.Equal(int64(-100500), msg.ChatID.ID)
	rq.Contains(msg.Text, "Gold &lt;bar&gt; – Acme #34")
	rq.Contains(msg.Text, "#34")
	rq.Contains(msg.Text, "2000.00")
	rq.Contains(msg.Text, "<code>12</code>")
}

func TestNotifyExportQueuedError(t *testing.T) {
	rq := require.New(t)

	bot := newTelegramBot(&senderMock{err: errors.New("flood wait")}, 1)

	err := bot.NotifyExportQueued(context.Background(), &entity.PendingExport{})
	rq.ErrorContains(err, "flood wait")
}
