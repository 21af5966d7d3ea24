package main

import (
	"context"

	"go.uber.org/zap"
)

type Consumer interface {
	Consume(ctx context.Context, qids ...string) error
}

// auditConsumer records every book event it receives.
type auditConsumer struct {
	logger *zap.Logger
	queue  Queuer
}

func NewAuditConsumer(logger *zap.Logger, q Queuer) Consumer {
	return &auditConsumer{logger.Named("audit"), q}
}

// Consume pops events until the context is done. Events received
// on an unexpected queue are reported but not dropped silently.
func (ac *auditConsumer) Consume(ctx context.Context, qids ...string) error {
	for {
		qid, event, err := ac.queue.Pop(ctx, qids...)
		if err != nil && ctx.Err() != nil {
			ac.logger.Info("consumer: queue pop call: context is done: exit", zap.String("reason", ctx.Err().Error()))
			return nil
		}

		if err != nil {
			ac.logger.Error("consumer: error on queue pop call", zap.Error(err))
			continue
		}

		switch qid {
		case CreateQueue, UpdateQueue:
			ac.logger.Info("book event",
				zap.String("event.queue", qid),
				zap.String("event.kind", event.Kind),
				zap.Uint32("book.id", event.BookID),
				zap.Any("book", event.Book),
				zap.Time("event.at", event.At),
			)
		case DeleteQueue:
			ac.logger.Info("book event",
				zap.String("event.queue", qid),
				zap.String("event.kind", event.Kind),
				zap.Uint32("book.id", event.BookID),
				zap.Time("event.at", event.At),
			)
		default:
			ac.logger.Warn("consumer: received event on unknow queue id", zap.String("qid", qid), zap.Any("event", event))
		}
	}
}
