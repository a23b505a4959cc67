package service

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"

	"cakeshop/internal/config"
	"cakeshop/internal/microservices/notificator/domain/dao"
)

const (
	qrContentID = "qrcode_order_id"
	qrSize      = 400
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("mail").
	Funcs(template.FuncMap{"yen": yen}).
	ParseFS(templateFS, "templates/*.html"))

var weekdaysJP = [...]string{"日", "月", "火", "水", "木", "金", "土"}

type mailView struct {
	dao.OrderEmail
	Number      string
	PickupDate  string
	QRContentID string
	Shop        config.ShopConfig
}

// OrderNumber is the customer-facing reception number.
func OrderNumber(id int) string { return fmt.Sprintf("%04d", id) }

// FormatDateJP renders 2024-05-03 as 2024年5月3日(金). Unparseable input
// is returned as is.
func FormatDateJP(date string) string {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%d年%d月%d日(%s)", t.Year(), int(t.Month()), t.Day(), weekdaysJP[t.Weekday()])
}

func yen(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func subject(e dao.OrderEmail) string {
	n := OrderNumber(e.OrderID)
	switch e.Kind {
	case dao.KindUpdate:
		return "🎂 ご注文内容変更のお知らせ - 受付番号 " + n
	case dao.KindCancellation:
		return "ご注文のキャンセル完了 - 受付番号 " + n
	default:
		return "🎂 ご注文確認 - 受付番号 " + n
	}
}

// QRCode encodes the order id as a PNG.
func QRCode(orderID int) ([]byte, error) {
	return qrcode.Encode(strconv.Itoa(orderID), qrcode.Medium, qrSize)
}

// Render builds the mail for e. Confirmations are copied to the shop.
func Render(e dao.OrderEmail, shop config.ShopConfig, shopAddress string) (dao.Mail, error) {
	if !e.Kind.Valid() {
		return dao.Mail{}, fmt.Errorf("unknown mail kind %q", e.Kind)
	}

	var body bytes.Buffer
	view := mailView{
		OrderEmail:  e,
		Number:      OrderNumber(e.OrderID),
		PickupDate:  FormatDateJP(e.Date),
		QRContentID: qrContentID,
		Shop:        shop,
	}
	if err := templates.ExecuteTemplate(&body, string(e.Kind)+".html", view); err != nil {
		return dao.Mail{}, fmt.Errorf("render %s mail: %w", e.Kind, err)
	}

	png, err := QRCode(e.OrderID)
	if err != nil {
		return dao.Mail{}, fmt.Errorf("qr code: %w", err)
	}

	to := []string{e.Email}
	if e.Kind == dao.KindConfirmation && shopAddress != "" {
		to = append(to, shopAddress)
	}
	return dao.Mail{
		To:      to,
		Subject: subject(e),
		HTML:    body.String(),
		Inline:  []dao.Inline{{Filename: "qrcode.png", ContentID: qrContentID, Data: png}},
	}, nil
}
