package handler

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/brenowss/foodiary/internal/apperror"
)

// WebhookSecretHeader carries the shared secret of the object-store webhook.
const WebhookSecretHeader = "X-Webhook-Secret"

// ObjectNotifier enqueues one message per object in an S3 event.
type ObjectNotifier interface {
	HandleS3Event(ctx context.Context, event events.S3Event) (int, error)
}

// EventHandler receives S3-compatible "object created" notifications for
// deployments without a Lambda trigger (MinIO and other webhooks).
type EventHandler struct {
	notifier ObjectNotifier
	secret   string
	logger   *slog.Logger
}

// NewEventHandler requires secret on every call unless it is empty.
func NewEventHandler(notifier ObjectNotifier, secret string, logger *slog.Logger) *EventHandler {
	return &EventHandler{notifier: notifier, secret: secret, logger: logger}
}

type enqueuedResponse struct {
	Enqueued int `json:"enqueued"`
}

// HandleObjectCreated enqueues the uploaded objects.
//
// HTTP: POST /events/object-created
// 202 {"enqueued": N}
func (h *EventHandler) HandleObjectCreated(w http.ResponseWriter, r *http.Request) {
	if h.secret != "" {
		got := r.Header.Get(WebhookSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			writeError(w, apperror.Unauthorized("invalid webhook secret"))
			return
		}
	}

	req, err := parseRequest[events.S3Event](r)
	if err != nil {
		writeError(w, err)
		return
	}

	n, err := h.notifier.HandleS3Event(r.Context(), req.Body)
	if err != nil {
		h.logger.Error("enqueuing uploaded objects failed",
			slog.Int("records", len(req.Body.Records)),
			slog.Int("enqueued", n),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, enqueuedResponse{Enqueued: n})
}
