// Package notifier turns object-store "object created" events into queue
// messages, one per uploaded object.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/aws/aws-lambda-go/events"

	"github.com/brenowss/foodiary/internal/queue"
)

// Publisher sends one batch of at most queue.MaxBatchSize entries.
type Publisher interface {
	SendBatch(ctx context.Context, entries []queue.Entry) error
}

var _ Publisher = (*queue.Client)(nil)

type Notifier struct {
	publisher Publisher
	logger    *slog.Logger
}

func New(publisher Publisher, logger *slog.Logger) *Notifier {
	return &Notifier{publisher: publisher, logger: logger}
}

// Notify enqueues one {"fileKey"} message per key, in batches of
// queue.MaxBatchSize. It returns how many messages were accepted before the
// first failing batch.
func (n *Notifier) Notify(ctx context.Context, keys []string) (int, error) {
	sent := 0
	for start := 0; start < len(keys); start += queue.MaxBatchSize {
		end := min(start+queue.MaxBatchSize, len(keys))

		entries := make([]queue.Entry, 0, end-start)
		for i, key := range keys[start:end] {
			body, err := queue.EncodeFileMessage(key)
			if err != nil {
				return sent, err
			}
			entries = append(entries, queue.Entry{ID: strconv.Itoa(i), Body: body})
		}

		if err := n.publisher.SendBatch(ctx, entries); err != nil {
			return sent, fmt.Errorf("notifier: enqueueing keys %d-%d: %w", start, end-1, err)
		}
		sent += len(entries)
	}

	n.logger.Info("upload notifications enqueued", slog.Int("count", sent))
	return sent, nil
}

// HandleS3Event is the Lambda entry point for S3 ObjectCreated events.
func (n *Notifier) HandleS3Event(ctx context.Context, event events.S3Event) (int, error) {
	return n.Notify(ctx, ObjectKeys(event))
}

// ObjectKeys extracts the decoded object key of every record, in order.
// S3 event keys are form-encoded ("my+photo.jpeg" for "my photo.jpeg").
func ObjectKeys(event events.S3Event) []string {
	keys := make([]string, 0, len(event.Records))
	for _, r := range event.Records {
		key := r.S3.Object.URLDecodedKey
		if key == "" {
			key = r.S3.Object.Key
			if decoded, err := url.QueryUnescape(key); err == nil {
				key = decoded
			}
		}
		keys = append(keys, key)
	}
	return keys
}
