package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"cakeshop/internal/common/httpx"
	"cakeshop/internal/common/logger"
	"cakeshop/internal/config"
	"cakeshop/internal/connections/database"
	"cakeshop/internal/connections/rabbitmq"
	"cakeshop/internal/microservices/catalog"
	"cakeshop/internal/microservices/notificator"
	notifyrepo "cakeshop/internal/microservices/notificator/repository"
	notifysvc "cakeshop/internal/microservices/notificator/service"
	"cakeshop/internal/microservices/order"
	"cakeshop/internal/microservices/timeslot"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

type brokerPinger interface {
	Ping() error
}

type backlogger interface {
	Backlog(ctx context.Context) (int, error)
}

// Checks are the dependencies /api/test reports on. Broker is nil with the
// direct transport; Outbox is nil when no relay runs.
type Checks struct {
	DB     pinger
	Broker brokerPinger
	Outbox backlogger
}

// Health answers /api/test by pinging the database and the broker and
// counting the unsent outbox rows.
func Health(c Checks) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := c.DB.PingContext(r.Context()); err != nil {
			httpx.WriteError(w, err)
			return
		}
		resp := map[string]any{"message": "database connection ok", "broker": "disabled"}
		if c.Broker != nil {
			if err := c.Broker.Ping(); err != nil {
				httpx.WriteError(w, err)
				return
			}
			resp["broker"] = "ok"
		}
		if c.Outbox != nil {
			n, err := c.Outbox.Backlog(r.Context())
			if err != nil {
				httpx.WriteError(w, err)
				return
			}
			resp["outbox_pending"] = n
		}
		httpx.OK(w, http.StatusOK, resp)
	}
}

// NewRouter mounts every service on one gorilla/mux router. broker is nil
// unless the amqp transport is on.
func NewRouter(cfg *config.Config, db *sqlx.DB, broker brokerPinger, mails *notifysvc.Service, auth *Auth, lg *logger.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(httpx.Recover(lg), httpx.LogMiddleware(lg))
	guard := auth.Guard()

	r.HandleFunc("/api/test", Health(Checks{DB: db, Broker: broker, Outbox: mails.RelayService})).Methods(http.MethodGet)
	r.HandleFunc("/api/admin/login", auth.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/logout", auth.Logout).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/session", auth.Session).Methods(http.MethodGet)

	catalog.Register(r, db, cfg.Uploads, guard)
	order.Register(r, db, cfg.Order, lg, guard)
	timeslot.Register(r, db, lg, guard)
	notificator.Register(r, mails, guard)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": "route not found"})
	})
	return r
}

// Run serves the API and relays the mail outbox until ctx is done.
func Run(ctx context.Context, cfg *config.Config) error {
	lg := logger.New("api")

	db, err := database.ConnectDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.MigrateUp(db); err != nil {
		return err
	}

	var (
		pub    notifysvc.Publisher
		broker brokerPinger
	)
	if cfg.Notify.Transport == config.TransportAMQP {
		client, err := rabbitmq.Dial(ctx, cfg.RabbitMQ, rabbitmq.Topology{RetryDelay: cfg.Notify.RetryDelay})
		if err != nil {
			return err
		}
		defer client.Close()
		lg.Info("rabbitmq_connected", map[string]any{"host": cfg.RabbitMQ.Host, "vhost": cfg.RabbitMQ.VHost})
		pub = notifysvc.NewAMQPPublisher(client)
		broker = client
	}
	mails := notifysvc.New(notifyrepo.New(db), pub, cfg, logger.New("outbox"))

	auth := NewAuth(cfg.Admin, lg)
	srv := httpx.New(cfg.HTTP, NewRouter(cfg, db, broker, mails, auth, lg))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("http_listening", map[string]any{
			"addr":         cfg.HTTP.Addr,
			"stock_policy": cfg.Order.StockPolicy,
			"transport":    cfg.Notify.Transport,
			"admin_auth":   auth.Enabled(),
		})
		return srv.Run(gctx)
	})
	g.Go(func() error { return mails.RelayService.Run(gctx) })
	return g.Wait()
}
