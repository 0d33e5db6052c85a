package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xavierca1/taskflow/internal/config"
	"github.com/xavierca1/taskflow/internal/infra/database"
	"github.com/xavierca1/taskflow/internal/infra/http/handlers"
	"github.com/xavierca1/taskflow/internal/infra/http/middleware"
	"github.com/xavierca1/taskflow/internal/infra/mail"
	"github.com/xavierca1/taskflow/internal/infra/queue"
	"github.com/xavierca1/taskflow/internal/infra/worker"
	"github.com/xavierca1/taskflow/internal/usecase"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Sobe a API HTTP, o consumidor da fila e o cron de leads",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

// redisPinger adapta o client do redis para o /health
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func serve(ctx context.Context, cfg *config.Config) error {
	table, err := cfg.LevelTable()
	if err != nil {
		return err
	}

	auth, err := middleware.NewAuthenticator(cfg.JWTSecret, 24*time.Hour)
	if err != nil {
		return err
	}

	// 1. Banco
	db, err := database.NewDBConnection(database.Options{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	uow := database.NewUnitOfWork(db, cfg.DBQueryTimeout)
	repos := uow.Repositories()

	checks := map[string]handlers.Pinger{"database": db, "rabbitmq": nil, "redis": nil}

	// 2. Fila (opcional)
	var events usecase.EventPublisher = queue.NoopPublisher{}
	var rabbitMQ *queue.RabbitMQ
	if cfg.AMQPURL != "" {
		rabbitMQ, err = queue.NewRabbitMQ(cfg.AMQPURL)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()
		events = queue.NewProducer(rabbitMQ.Ch)
		checks["rabbitmq"] = rabbitMQ
	} else {
		log.Warn().Msg("AMQP_URL não configurado, eventos serão descartados")
	}

	// 3. Rate limit: redis quando houver, senão memória
	var limiter middleware.Limiter
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		limiter = middleware.NewRedisLimiter(client, cfg.RateLimit, cfg.RateLimitWindow)
		checks["redis"] = redisPinger{client: client}
	} else {
		ml := middleware.NewMemoryLimiter(cfg.RateLimit, cfg.RateLimitWindow)
		defer ml.Close()
		limiter = ml
	}

	// 4. UseCases
	recordActivityUC := usecase.NewRecordActivityUseCase(uow, events)
	getProgressUC := usecase.NewGetProgressUseCase(repos.Users, table)
	awardXPUC := usecase.NewAwardXPUseCase(uow, table, events)
	resetProgressUC := usecase.NewResetProgressUseCase(uow, table)
	getLeadUC := usecase.NewGetLeadUseCase(repos.Leads, repos.Activities)
	listLeadsUC := usecase.NewListLeadsUseCase(repos.Leads)
	updateLeadStatusUC := usecase.NewUpdateLeadStatusUseCase(repos.Leads)
	archiveUC := usecase.NewArchiveStaleLeadsUseCase(repos.Leads, cfg.StaleLeadAfter)

	// 5. Workers
	if rabbitMQ != nil {
		var emailSvc usecase.EmailService
		if cfg.MailHost != "" {
			emailSvc = mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom, cfg.AppURL)
		} else {
			log.Warn().Msg("MAIL_HOST não configurado, emails desativados")
		}
		stopConsumer, err := startConsumer(ctx, rabbitMQ, usecase.NewProcessEventsUseCase(repos.Leads, emailSvc))
		if err != nil {
			return err
		}
		// roda antes dos Close do banco e do rabbit (defers são LIFO)
		defer stopConsumer()
	}

	staleWorker := worker.NewStaleLeadWorker(archiveUC, cfg.StaleLeadSchedule)
	if err := staleWorker.Start(ctx); err != nil {
		return err
	}
	defer staleWorker.Stop()

	// 6. Router
	router := newRouter(routerDeps{
		Logger:      log.Logger,
		CORSOrigins: cfg.CORSOrigins,
		Auth:        auth,
		Limiter:     limiter,
		TrustProxy:  cfg.TrustProxy,
		Activities:  handlers.NewActivityHandler(recordActivityUC),
		Progress:    handlers.NewProgressHandler(getProgressUC, awardXPUC, resetProgressUC),
		Leads:       handlers.NewLeadHandler(getLeadUC, listLeadsUC, updateLeadStatusUC),
		Health:      handlers.NewHealthHandler(version, checks),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Int("max_level", table.MaxLevel()).Msg("TaskFlow API rodando")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("encerrando servidor")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// startConsumer abre um canal próprio para o consumidor, separado do canal de publish.
// O stop devolvido só retorna depois que a mensagem em andamento terminou.
func startConsumer(ctx context.Context, rabbitMQ *queue.RabbitMQ, handler queue.EventHandler) (func(), error) {
	ch, err := rabbitMQ.Conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir canal do consumidor: %w", err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("falha ao configurar prefetch: %w", err)
	}

	w := queue.NewWorker(ch, handler)
	return runWorker(ctx, "rabbitmq-consumer", func(ctx context.Context) error {
		defer ch.Close()
		return w.Start(ctx, queue.QueueName)
	}), nil
}

// runWorker roda start numa goroutine; stop cancela o ctx e espera start retornar.
func runWorker(ctx context.Context, name string, start func(ctx context.Context) error) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := start(ctx); err != nil {
			log.Error().Err(err).Str("worker", name).Msg("worker parou")
		}
	}()

	return func() {
		cancel()
		<-done
		log.Info().Str("worker", name).Msg("worker encerrado")
	}
}
