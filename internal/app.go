package internal

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
	process "github.com/s-larionov/process-manager"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/the-hive-labs/hive-timebank/internal/appversions"
	"github.com/the-hive-labs/hive-timebank/internal/chat"
	"github.com/the-hive-labs/hive-timebank/internal/config"
	"github.com/the-hive-labs/hive-timebank/internal/events"
	"github.com/the-hive-labs/hive-timebank/internal/ledger"
	"github.com/the-hive-labs/hive-timebank/internal/post"
	"github.com/the-hive-labs/hive-timebank/internal/proposal"
	"github.com/the-hive-labs/hive-timebank/internal/review"
	"github.com/the-hive-labs/hive-timebank/internal/user"
	"github.com/the-hive-labs/hive-timebank/pkg/health"
	"github.com/the-hive-labs/hive-timebank/pkg/httpsrv"
	"github.com/the-hive-labs/hive-timebank/pkg/prometheus"
)

type Application struct {
	sigChan <-chan os.Signal
	manager *process.Manager
	cfg     config.App
	db      *gorm.DB
	nc      *nats.Conn

	stopConsumer context.CancelFunc

	publisher *events.NatsPublisher
	consumer  *events.Consumer

	users       *user.Service
	posts       *post.Service
	proposals   *proposal.Service
	credits     *ledger.Service
	reviews     *review.Service
	messages    *chat.Service
	appVersions *appversions.Service
}

func NewApplication(cfg config.App) (*Application, error) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	a := &Application{
		sigChan: sigChan,
		cfg:     cfg,
		manager: process.NewManager(),
	}

	err := a.bootstrap()
	if err != nil {
		return nil, err
	}

	return a, nil
}

func (a *Application) Run() {
	a.manager.StartAll()
	a.runConsumer()
	a.registerShutdown()
}

func (a *Application) bootstrap() error {
	initializers := []func() error{
		a.initDB,
		a.initNats,

		// Init Dependencies
		a.initServices,

		// Init Workers: Application
		a.initAPI,

		// Init Workers: System
		a.initPrometheusWorker,
		a.initHealthWorker,
	}

	for _, initializer := range initializers {
		if err := initializer(); err != nil {
			return err
		}
	}

	return nil
}

func (a *Application) initDB() error {
	db, err := gorm.Open(postgres.Open(a.cfg.DB.DSN), &gorm.Config{})
	if err != nil {
		return err
	}

	ps, err := db.DB()
	if err != nil {
		return err
	}
	ps.SetMaxOpenConns(a.cfg.DB.MaxOpenConnections)

	a.db = db
	if a.cfg.DB.Debug {
		a.db = db.Debug()
	}

	return a.db.AutoMigrate(
		&user.User{},
		&user.Session{},
		&post.Post{},
		&post.AISummary{},
		&post.AIRequest{},
		&proposal.Proposal{},
		&ledger.Account{},
		&ledger.Entry{},
		&review.Review{},
		&chat.Message{},
		&appversions.Info{},
	)
}

func (a *Application) initNats() error {
	nc, err := nats.Connect(
		a.cfg.Nats.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(a.cfg.Nats.MaxReconnects),
		nats.ReconnectWait(a.cfg.Nats.ReconnectTimeout),
	)
	if err != nil {
		return err
	}

	a.nc = nc
	a.publisher = events.NewNatsPublisher(nc)
	a.consumer = events.NewConsumer(nc)

	return nil
}

func (a *Application) initServices() error {
	a.credits = ledger.NewService(ledger.NewRepo(a.db))

	tokens, err := user.NewTokenManager(a.cfg.Auth.SigningKey, a.cfg.Auth.SessionTTL)
	if err != nil {
		return err
	}
	a.users = user.NewService(a.db, user.NewRepo(a.db), user.NewSessionRepo(a.db), tokens, a.credits)

	a.posts = post.NewService(post.NewRepo(a.db), post.NewAIClient(a.cfg.AI), a.cfg.AI.MonthlyRateLimit)

	a.proposals = proposal.NewService(proposal.NewRepo(a.db), a.posts, a.users, a.credits, a.publisher)

	a.reviews = review.NewService(review.NewRepo(a.db), a.proposals)
	a.messages = chat.NewService(chat.NewRepo(a.db), a.proposals, a.publisher)
	a.appVersions = appversions.NewService(appversions.NewRepo(a.db))

	a.consumer.OnProposalUpdated(func(payload events.ProposalUpdatedPayload) error {
		log.Info().
			Str("proposal_id", payload.ProposalID.String()).
			Str("event", string(payload.Event)).
			Str("notify_user", payload.Counterparty().String()).
			Msg("proposal notification")

		return nil
	})
	a.consumer.OnMessageCreated(func(payload events.MessageCreatedPayload) error {
		log.Info().
			Str("message_id", payload.MessageID.String()).
			Str("notify_user", payload.ReceiverID.String()).
			Msg("message notification")

		return nil
	})

	return nil
}

func (a *Application) initAPI() error {
	handler := httpsrv.NewRouter(
		a.users,
		user.NewServer(a.users, a.publisher),
		post.NewServer(a.posts),
		proposal.NewServer(a.proposals),
		ledger.NewServer(a.credits, a.proposals),
		review.NewServer(a.reviews),
		chat.NewServer(a.messages),
		appversions.NewServer(a.appVersions, a.users),
	)

	srv := httpsrv.NewServer(a.cfg.API.Bind, handler, a.cfg.API.AllowedOrigins)
	a.manager.AddWorker(process.NewServerWorker("API", srv))

	return nil
}

func (a *Application) initPrometheusWorker() error {
	srv := prometheus.NewServer(a.cfg.Prometheus.Listen, "/metrics")
	a.manager.AddWorker(process.NewServerWorker("prometheus", srv))

	return nil
}

func (a *Application) initHealthWorker() error {
	srv := health.NewHealthCheckServer(a.cfg.Health.Listen, "/status", health.DefaultHandler())
	a.manager.AddWorker(process.NewServerWorker("health", srv))

	return nil
}

func (a *Application) runConsumer() {
	ctx, cancel := context.WithCancel(context.Background())
	a.stopConsumer = cancel

	go func() {
		if err := a.consumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("events consumer stopped")
		}
	}()
}

func (a *Application) registerShutdown() {
	go func(manager *process.Manager) {
		<-a.sigChan

		a.stopConsumer()
		manager.StopAll()
	}(a.manager)

	a.manager.AwaitAll()
}
