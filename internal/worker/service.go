package worker

import (
	"context"
	"errors"
	"time"

	"github.com/fixmore/mall/internal/config"
	"github.com/fixmore/mall/internal/logger"
	"github.com/fixmore/mall/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	paymentExpiryInterval = 5 * time.Minute
	paymentExpiryMaxAge   = time.Hour
)

// Service runs the asynq consumer.
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService creates the worker service.
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name returns the service name.
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start runs the consumer until the server shuts down.
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.PaymentService != nil {
		go s.runPaymentExpiryLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop shuts the consumer down.
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runPaymentExpiryLoop periodically fails STK pushes and intents that never
// got a callback.
func (s *Service) runPaymentExpiryLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.PaymentService == nil {
		return
	}
	runOnce := func() {
		cutoff := time.Now().Add(-paymentExpiryMaxAge)
		if _, err := s.consumer.PaymentService.ExpireStaleBefore(cutoff); err != nil {
			logger.Warnw("worker_payment_expiry_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(paymentExpiryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
