package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"cakeshop/internal/microservices/order/domain/dao"
	"cakeshop/internal/microservices/order/repository"
)

const exportSheet = "注文一覧"

var exportHeader = []string{
	"受付番号", "お会計", "お名前", "ケーキ名", "サイズ/価格", "個数",
	"受取日", "受け取り時間", "メッセージ ケーキ", "その他", "注文日", "電話番号", "メールアドレス",
}

type ExportServiceInterface interface {
	Export(ctx context.Context, search string) ([]byte, error)
}

type ExportService struct {
	repo repository.OrderRepositoryInterface
}

func NewExportService(repo repository.OrderRepositoryInterface) ExportServiceInterface {
	return &ExportService{repo: repo}
}

// Export renders the order list as an xlsx workbook, one row per cake line.
func (s *ExportService) Export(ctx context.Context, search string) ([]byte, error) {
	orders, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, errors.Wrap(err, "rename sheet")
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, errors.Wrap(err, "write header")
	}

	row := 2
	for _, o := range orders {
		for _, r := range exportRows(o) {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(exportSheet, cell, &r); err != nil {
				return nil, errors.Wrapf(err, "write row %d", row)
			}
			row++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, errors.Wrap(err, "encode workbook")
	}
	return buf.Bytes(), nil
}

func exportRows(o dao.Order) [][]any {
	base := func(c dao.OrderCake) []any {
		return []any{
			fmt.Sprintf("%04d", o.ID),
			o.Status.Label(),
			strings.TrimSpace(o.LastName + " " + o.FirstName),
			c.Name,
			sizeAndPrice(c),
			c.Amount,
			o.Date,
			o.PickupHour,
			c.MessageCake,
			o.Message,
			o.CreatedAt.Format("2006-01-02 15:04"),
			o.Tel,
			o.Email,
		}
	}
	if len(o.Cakes) == 0 {
		return [][]any{base(dao.OrderCake{})}
	}
	rows := make([][]any, 0, len(o.Cakes))
	for _, c := range o.Cakes {
		rows = append(rows, base(c))
	}
	return rows
}

func sizeAndPrice(c dao.OrderCake) string {
	if c.Size == "" {
		return ""
	}
	return fmt.Sprintf("%s / ¥%d", c.Size, c.Price)
}
