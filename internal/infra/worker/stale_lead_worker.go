package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Archiver é implementado por usecase.ArchiveStaleLeadsUseCase.
type Archiver interface {
	Execute(ctx context.Context) (int64, error)
}

// StaleLeadWorker arquiva periodicamente leads NEW sem atividade recente.
type StaleLeadWorker struct {
	archiver Archiver
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
}

func NewStaleLeadWorker(archiver Archiver, schedule string) *StaleLeadWorker {
	logger := cronLogger{l: log.Logger}
	return &StaleLeadWorker{
		archiver: archiver,
		schedule: schedule,
		timeout:  time.Minute,
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

// Start registra o job e inicia o cron; retorna erro se o schedule for inválido.
func (w *StaleLeadWorker) Start(ctx context.Context) error {
	if _, err := w.cron.AddFunc(w.schedule, func() { w.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid stale lead schedule %q: %w", w.schedule, err)
	}
	w.cron.Start()
	log.Info().Str("schedule", w.schedule).Msg("stale lead worker iniciado")
	return nil
}

// Stop espera o job em andamento terminar.
func (w *StaleLeadWorker) Stop() {
	<-w.cron.Stop().Done()
	log.Info().Msg("stale lead worker encerrado")
}

func (w *StaleLeadWorker) RunOnce(ctx context.Context) int64 {
	if ctx.Err() != nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	n, err := w.archiver.Execute(ctx)
	if err != nil {
		log.Error().Err(err).Msg("erro ao arquivar leads inativos")
		return 0
	}
	if n > 0 {
		log.Info().Int64("archived", n).Msg("leads inativos arquivados")
	}
	return n
}

// cronLogger adapta o zerolog para a interface cron.Logger
type cronLogger struct {
	l zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
