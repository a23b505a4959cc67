package service

import (
	"context"

	"cakeshop/internal/common/logger"
	"cakeshop/internal/config"
	"cakeshop/internal/microservices/notificator/domain/dao"
)

type NotifierServiceInterface interface {
	Deliver(ctx context.Context, e dao.OrderEmail) error
}

type NotifierService struct {
	sender      Sender
	shop        config.ShopConfig
	shopAddress string
	lg          *logger.Logger
}

func NewNotifierService(sender Sender, shop config.ShopConfig, shopAddress string, lg *logger.Logger) NotifierServiceInterface {
	return &NotifierService{sender: sender, shop: shop, shopAddress: shopAddress, lg: lg}
}

// Deliver renders and sends one order mail.
func (n *NotifierService) Deliver(ctx context.Context, e dao.OrderEmail) error {
	m, err := Render(e, n.shop, n.shopAddress)
	if err != nil {
		return err
	}
	if err := n.sender.Send(ctx, m); err != nil {
		return err
	}
	n.lg.For(ctx).Info("mail_sent", map[string]any{
		"order_id":   e.OrderID,
		"kind":       e.Kind,
		"message_id": e.MessageID,
	})
	return nil
}
