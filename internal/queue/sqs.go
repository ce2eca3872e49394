// Package queue carries upload notifications over SQS and runs the worker
// pool that consumes them.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/brenowss/foodiary/internal/awscfg"
	cfg "github.com/brenowss/foodiary/internal/config"
)

// MaxBatchSize is the SQS limit for SendMessageBatch and ReceiveMessage.
const MaxBatchSize = 10

// API is the subset of *sqs.Client used here.
type API interface {
	SendMessageBatch(ctx context.Context, in *sqs.SendMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error)
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

var _ API = (*sqs.Client)(nil)

// Entry is one message of an outgoing batch. ID must be unique in the batch.
type Entry struct {
	ID   string
	Body string
}

// Message is one received message.
type Message struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// FileMessage is the body of an upload notification.
type FileMessage struct {
	FileKey string `json:"fileKey"`
}

func EncodeFileMessage(fileKey string) (string, error) {
	b, err := json.Marshal(FileMessage{FileKey: fileKey})
	if err != nil {
		return "", fmt.Errorf("queue: encoding message: %w", err)
	}
	return string(b), nil
}

func DecodeFileMessage(body string) (FileMessage, error) {
	var m FileMessage
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		return FileMessage{}, fmt.Errorf("queue: decoding message: %w", err)
	}
	if m.FileKey == "" {
		return FileMessage{}, errors.New("queue: message has no fileKey")
	}
	return m, nil
}

type Client struct {
	api      API
	queueURL string
	logger   *slog.Logger
}

// New builds an SQS client from app config.
func New(ctx context.Context, c *cfg.Config, logger *slog.Logger) (*Client, error) {
	awsCfg, err := awscfg.Load(ctx, c.S3Region, c.S3AccessKey, c.S3SecretKey)
	if err != nil {
		return nil, fmt.Errorf("queue: %w", err)
	}
	api := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if c.SQSEndpoint != "" {
			o.BaseEndpoint = aws.String(c.SQSEndpoint)
		}
	})
	return NewClient(api, c.SQSQueueURL, logger), nil
}

func NewClient(api API, queueURL string, logger *slog.Logger) *Client {
	return &Client{api: api, queueURL: queueURL, logger: logger}
}

// SendBatch sends up to MaxBatchSize entries in one call. Any entry the
// queue reports as failed makes the whole call an error.
func (c *Client) SendBatch(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if len(entries) > MaxBatchSize {
		return fmt.Errorf("queue: batch of %d exceeds %d entries", len(entries), MaxBatchSize)
	}

	reqs := make([]types.SendMessageBatchRequestEntry, 0, len(entries))
	for _, e := range entries {
		reqs = append(reqs, types.SendMessageBatchRequestEntry{
			Id:          aws.String(e.ID),
			MessageBody: aws.String(e.Body),
		})
	}

	out, err := c.api.SendMessageBatch(ctx, &sqs.SendMessageBatchInput{
		QueueUrl: aws.String(c.queueURL),
		Entries:  reqs,
	})
	if err != nil {
		return fmt.Errorf("queue: sending batch: %w", err)
	}
	if len(out.Failed) > 0 {
		ids := make([]string, 0, len(out.Failed))
		for _, f := range out.Failed {
			ids = append(ids, fmt.Sprintf("%s (%s)", aws.ToString(f.Id), aws.ToString(f.Code)))
		}
		return fmt.Errorf("queue: %d of %d entries rejected: %s", len(out.Failed), len(entries), strings.Join(ids, ", "))
	}
	return nil
}

// Receive long-polls for up to max messages.
func (c *Client) Receive(ctx context.Context, max int, wait time.Duration) ([]Message, error) {
	if max <= 0 || max > MaxBatchSize {
		max = MaxBatchSize
	}
	out, err := c.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: int32(max),
		WaitTimeSeconds:     int32(wait / time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("queue: receiving: %w", err)
	}

	msgs := make([]Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		msgs = append(msgs, Message{
			ID:            aws.ToString(m.MessageId),
			Body:          aws.ToString(m.Body),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
		})
	}
	return msgs, nil
}

func (c *Client) Delete(ctx context.Context, receiptHandle string) error {
	_, err := c.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("queue: deleting message: %w", err)
	}
	return nil
}
