package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Receiver is the consuming side of a queue.
type Receiver interface {
	Receive(ctx context.Context, max int, wait time.Duration) ([]Message, error)
	Delete(ctx context.Context, receiptHandle string) error
}

var _ Receiver = (*Client)(nil)

// Handler processes one message. A nil error deletes the message; any error
// leaves it for the queue's redelivery and dead-letter policy.
type Handler func(ctx context.Context, msg Message) error

type PoolConfig struct {
	// Concurrency is the number of polling goroutines.
	Concurrency int
	// MaxMessages per receive call, at most MaxBatchSize.
	MaxMessages int
	// WaitTime is the long-poll duration.
	WaitTime time.Duration
	// ErrorBackoff is the pause after a failed receive.
	ErrorBackoff time.Duration
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Concurrency:  4,
		MaxMessages:  MaxBatchSize,
		WaitTime:     20 * time.Second,
		ErrorBackoff: time.Second,
	}
}

// Pool runs a fixed set of pollers, each handling its messages in order.
type Pool struct {
	recv      Receiver
	handle    Handler
	config    PoolConfig
	logger    *slog.Logger
	done      chan struct{}
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

func NewPool(recv Receiver, handle Handler, cfg PoolConfig, logger *slog.Logger) *Pool {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.MaxMessages < 1 || cfg.MaxMessages > MaxBatchSize {
		cfg.MaxMessages = MaxBatchSize
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = time.Second
	}
	return &Pool{
		recv:   recv,
		handle: handle,
		config: cfg,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start launches the pollers. Handlers run with ctx; Stop only interrupts
// receiving, so in-flight messages finish.
func (p *Pool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		pollCtx, cancel := context.WithCancel(ctx)
		p.cancel = cancel

		p.logger.Info("starting queue worker pool", slog.Int("concurrency", p.config.Concurrency))
		for i := 0; i < p.config.Concurrency; i++ {
			p.wg.Add(1)
			go p.poll(ctx, pollCtx, i)
		}
	})
}

// Stop stops polling and waits for in-flight messages.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("shutting down queue worker pool")
		close(p.done)
		if p.cancel != nil {
			p.cancel()
		}
		p.wg.Wait()
	})
}

func (p *Pool) poll(ctx, pollCtx context.Context, n int) {
	defer p.wg.Done()
	logger := p.logger.With(slog.Int("poller", n))

	for {
		select {
		case <-p.done:
			return
		case <-pollCtx.Done():
			return
		default:
		}

		msgs, err := p.recv.Receive(pollCtx, p.config.MaxMessages, p.config.WaitTime)
		if err != nil {
			if pollCtx.Err() != nil {
				return
			}
			logger.Error("failed to receive messages", slog.String("error", err.Error()))
			select {
			case <-time.After(p.config.ErrorBackoff):
			case <-p.done:
				return
			}
			continue
		}

		for _, msg := range msgs {
			p.process(ctx, logger, msg)
		}
	}
}

func (p *Pool) process(ctx context.Context, logger *slog.Logger, msg Message) {
	logger = logger.With(slog.String("message_id", msg.ID))

	if err := p.handle(ctx, msg); err != nil {
		logger.Warn("message left for redelivery", slog.String("error", err.Error()))
		return
	}
	if err := p.recv.Delete(ctx, msg.ReceiptHandle); err != nil {
		logger.Error("failed to delete message", slog.String("error", err.Error()))
	}
}

// FileKeyHandler adapts a per-file function to a Handler by decoding a
// FileMessage body. Undecodable bodies are logged and left on the queue.
func FileKeyHandler(fn func(ctx context.Context, fileKey string) error, logger *slog.Logger) Handler {
	return func(ctx context.Context, msg Message) error {
		m, err := DecodeFileMessage(msg.Body)
		if err != nil {
			logger.Error("unreadable queue message",
				slog.String("message_id", msg.ID),
				slog.String("error", err.Error()),
			)
			return err
		}
		return fn(ctx, m.FileKey)
	}
}
