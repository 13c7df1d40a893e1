package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"legalresearch/internal/app"
)

// StatusEvent is emitted by the external processing pipeline as it advances a
// document through its lifecycle. VectorIndexed is reported separately from
// status because indexing happens after processing completes.
type StatusEvent struct {
	DocumentID     string `json:"document_id"`
	OrganizationID string `json:"organization_id"`
	Status         string `json:"status,omitempty"`
	VectorIndexed  bool   `json:"vector_indexed,omitempty"`
}

// StatusWorker consumes pipeline status events and applies them to the
// document store. Events for unknown documents or illegal transitions are
// dropped with a log line; redelivering them cannot make them valid.
type StatusWorker struct {
	conn      *amqp.Connection
	docs      *app.DocumentService
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewStatusWorker(conn *amqp.Connection, docs *app.DocumentService, queueName string) *StatusWorker {
	return &StatusWorker{
		conn:      conn,
		docs:      docs,
		queueName: queueName,
	}
}

func (w *StatusWorker) Start(ctx context.Context) error {
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

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
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

				var event StatusEvent
				if err := json.Unmarshal(d.Body, &event); err != nil {
					log.Printf("worker decode status event failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				if err := w.apply(event); err != nil {
					if errors.Is(err, app.ErrDocumentNotFound) || errors.Is(err, app.ErrInvalidState) || errors.Is(err, app.ErrInvalidInput) {
						log.Printf("worker drop status event for document %s: %v", event.DocumentID, err)
						_ = d.Nack(false, false)
						continue
					}
					log.Printf("worker apply status event failed: %v", err)
					_ = d.Nack(false, true)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

// apply routes the event through the tenant-scoped service methods, so an
// event naming the wrong organization cannot touch the document.
func (w *StatusWorker) apply(event StatusEvent) error {
	if event.Status != "" {
		if err := w.docs.UpdateProcessingStatus(event.OrganizationID, event.DocumentID, event.Status); err != nil {
			return err
		}
	}
	if event.VectorIndexed {
		if err := w.docs.MarkVectorIndexed(event.OrganizationID, event.DocumentID); err != nil {
			return err
		}
	}
	return nil
}

func (w *StatusWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
