package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/brenowss/foodiary/internal/apperror"
	"github.com/brenowss/foodiary/internal/auth"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// Request is the transport-independent view of an inbound call: the decoded
// body, query values, named path parameters and, on protected routes, the
// authenticated user.
type Request[T any] struct {
	Body   T
	Query  url.Values
	Params map[string]string
	UserID string
}

// NoBody marks a request type without a JSON body.
type NoBody struct{}

// parseRequest builds a Request from r. The body is decoded unless T is
// NoBody. Each name in params is read from the chi route.
func parseRequest[T any](r *http.Request, params ...string) (*Request[T], error) {
	req := &Request[T]{
		Query:  r.URL.Query(),
		Params: make(map[string]string, len(params)),
	}
	for _, name := range params {
		req.Params[name] = chi.URLParam(r, name)
	}
	req.UserID, _ = auth.UserIDFromContext(r.Context())

	if _, skip := any(req.Body).(NoBody); skip {
		return req, nil
	}
	if err := decodeJSON(r, &req.Body); err != nil {
		return nil, err
	}
	return req, nil
}

// parseAuthed is parseRequest for routes behind auth.RequireAuth.
func parseAuthed[T any](r *http.Request, params ...string) (*Request[T], error) {
	req, err := parseRequest[T](r, params...)
	if err != nil {
		return nil, err
	}
	if req.UserID == "" {
		return nil, apperror.Unauthorized("valid authentication required")
	}
	return req, nil
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperror.ValidationFailed("body", "request body is required")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.ValidationFailed("body", "request body is required")
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apperror.ValidationFailed(typeErr.Field, typeErr.Field+" has the wrong type")
		}
		return apperror.ValidationFailed("body", "request body must be valid JSON")
	}
	return nil
}
