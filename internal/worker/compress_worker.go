package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"scholarforge/internal/model"
	"scholarforge/internal/platform/rabbitmq"
)

// JobProcessor runs one compress job.
type JobProcessor interface {
	Process(ctx context.Context, fileID uint) error
}

type CompressWorker struct {
	conn      *amqp.Connection
	processor JobProcessor
	queueName string
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewCompressWorker(conn *amqp.Connection, processor JobProcessor, queueName string, logger *zap.Logger) *CompressWorker {
	return &CompressWorker{
		conn:      conn,
		processor: processor,
		queueName: queueName,
		logger:    logger,
	}
}

func (w *CompressWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if _, err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}

	// one unacked job at a time; compression is CPU bound
	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				w.dispatch(workerCtx, d.Body, d)
			}
		}
	}()

	w.logger.Info("compress worker started", zap.String("queue", w.queueName))
	return nil
}

// Acknowledger is satisfied by amqp.Delivery.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (w *CompressWorker) dispatch(ctx context.Context, body []byte, ack Acknowledger) {
	var job model.CompressJob
	if err := json.Unmarshal(body, &job); err != nil || job.FileID == 0 {
		w.logger.Error("worker decode job failed", zap.ByteString("body", body), zap.Error(err))
		_ = ack.Nack(false, false)
		return
	}

	if err := w.processor.Process(ctx, job.FileID); err != nil {
		// interrupted jobs go back on the queue for the next consumer
		requeue := errors.Is(err, context.Canceled) || ctx.Err() != nil
		w.logger.Error("worker process job failed",
			zap.String("job_id", job.JobID), zap.Uint("file_id", job.FileID),
			zap.Bool("requeue", requeue), zap.Error(err))
		_ = ack.Nack(false, requeue)
		return
	}
	_ = ack.Ack(false)
}

func (w *CompressWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
