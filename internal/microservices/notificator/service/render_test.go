package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cakeshop/internal/config"
	"cakeshop/internal/microservices/notificator/domain/dao"
)

func sampleEmail(kind dao.Kind) dao.OrderEmail {
	return dao.OrderEmail{
		MessageID:  "8d1c5e0e-2f0a-4b9e-9c57-0d0d7a2c6b11",
		Kind:       kind,
		OrderID:    7,
		FirstName:  "Hanako",
		LastName:   "Yamada",
		Email:      "hanako@example.com",
		Tel:        "090-0000-0000",
		Date:       "2024-05-03",
		PickupHour: "11:00",
		Items: []dao.EmailItem{
			{CakeName: "Shortcake", Size: "M", Amount: 2, Price: 1500, MessageCake: "おめでとう"},
			{CakeName: "Tart", Size: "S", Amount: 1, Price: 12000},
		},
	}
}

func shop() config.ShopConfig {
	return config.Default().Shop
}

func TestFormatDateJP(t *testing.T) {
	assert.Equal(t, "2024年5月3日(金)", FormatDateJP("2024-05-03"))
	assert.Equal(t, "2025年12月28日(日)", FormatDateJP("2025-12-28"))
	assert.Equal(t, "soon", FormatDateJP("soon"))
}

func TestYen(t *testing.T) {
	assert.Equal(t, "0", yen(0))
	assert.Equal(t, "999", yen(999))
	assert.Equal(t, "1,500", yen(1500))
	assert.Equal(t, "1,234,567", yen(1234567))
	assert.Equal(t, "-3,000", yen(-3000))
}

func TestRenderConfirmation(t *testing.T) {
	m, err := Render(sampleEmail(dao.KindConfirmation), shop(), "shop@example.com")
	require.NoError(t, err)

	assert.Equal(t, []string{"hanako@example.com", "shop@example.com"}, m.To)
	assert.Contains(t, m.Subject, "受付番号 0007")
	assert.Contains(t, m.HTML, "注文ありがとうございます")
	assert.Contains(t, m.HTML, "2024年5月3日(金) / 11:00")
	assert.Contains(t, m.HTML, "¥15,000")
	assert.Contains(t, m.HTML, "¥3,000")
	assert.Contains(t, m.HTML, "cid:qrcode_order_id")
	assert.Contains(t, m.HTML, "Patisserie H.Yuji")
	assert.Contains(t, m.HTML, "無し")

	require.Len(t, m.Inline, 1)
	assert.Equal(t, "qrcode_order_id", m.Inline[0].ContentID)
	assert.True(t, bytes.HasPrefix(m.Inline[0].Data, []byte("\x89PNG")))
}

func TestRenderUpdateAndCancellation(t *testing.T) {
	m, err := Render(sampleEmail(dao.KindUpdate), shop(), "shop@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"hanako@example.com"}, m.To)
	assert.Contains(t, m.Subject, "変更")
	assert.Contains(t, m.HTML, "以下の内容に変更いたしました")

	m, err = Render(sampleEmail(dao.KindCancellation), shop(), "")
	require.NoError(t, err)
	assert.Contains(t, m.Subject, "キャンセル")
	assert.Contains(t, m.HTML, "Tart")
	assert.Contains(t, m.HTML, "2024年5月3日(金)")

	_, err = Render(sampleEmail("reminder"), shop(), "")
	assert.Error(t, err)
}

func TestBuildMessageEmbedsQR(t *testing.T) {
	m, err := Render(sampleEmail(dao.KindConfirmation), shop(), "")
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = buildMessage("shop@example.com", m).WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "<qrcode_order_id>")
	assert.Contains(t, raw, "image/png")
	assert.Contains(t, raw, "text/html")
}
