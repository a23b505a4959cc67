package notify

import (
	"context"
	"fmt"
	"os"

	"cakeshop/internal/common/logger"
	"cakeshop/internal/config"
	"cakeshop/internal/connections/rabbitmq"
	"cakeshop/internal/microservices/notificator/service"
)

// Run consumes email.q and sends order mails until ctx is done.
func Run(ctx context.Context, cfg *config.Config, name string) error {
	lg := logger.New("notifier")

	if cfg.Notify.Transport != config.TransportAMQP {
		return fmt.Errorf("notifier needs notify.transport=%s, got %q", config.TransportAMQP, cfg.Notify.Transport)
	}
	if name == "" {
		host, _ := os.Hostname()
		name = "notifier-" + host
	}

	client, err := rabbitmq.Dial(ctx, cfg.RabbitMQ, rabbitmq.Topology{RetryDelay: cfg.Notify.RetryDelay})
	if err != nil {
		return err
	}
	defer client.Close()
	lg.Info("rabbitmq_connected", map[string]any{"host": cfg.RabbitMQ.Host, "vhost": cfg.RabbitMQ.VHost})

	notifier := service.NewNotifierService(service.NewSender(cfg.Mail, lg), cfg.Shop, cfg.Mail.ShopAddress, lg)
	consumer := service.NewConsumerService(client, notifier, name, cfg.Notify.Prefetch, cfg.Notify.MaxAttempts, lg)
	return consumer.Run(ctx)
}
