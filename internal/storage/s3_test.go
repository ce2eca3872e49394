package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brenowss/foodiary/internal/apperror"
	"github.com/brenowss/foodiary/internal/logger"
)

func newTestStorage(t *testing.T, endpoint string) *S3Storage {
	t.Helper()
	s, err := NewS3Storage(context.Background(), S3Config{
		Region:       "us-east-1",
		Bucket:       "meals",
		AccessKey:    "AKIDTEST",
		SecretKey:    "secret",
		Endpoint:     endpoint,
		UsePathStyle: endpoint != "",
		UploadExpiry: 10 * time.Minute,
		ReadExpiry:   5 * time.Minute,
	}, logger.Discard())
	require.NoError(t, err)
	return s
}

func TestNewS3Storage_RequiresBucket(t *testing.T) {
	_, err := NewS3Storage(context.Background(), S3Config{Region: "us-east-1"}, logger.Discard())
	assert.Error(t, err)
}

func TestPresignPut(t *testing.T) {
	s := newTestStorage(t, "")

	raw, err := s.PresignPut(context.Background(), "abc.m4a")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Contains(t, u.Host, "meals")
	assert.Equal(t, "/abc.m4a", u.Path)
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Contains(t, u.Query().Get("X-Amz-Credential"), "AKIDTEST")
}

func TestPresignGet_UsesReadExpiry(t *testing.T) {
	s := newTestStorage(t, "http://localhost:9000")

	raw, err := s.PresignGet(context.Background(), "photo.jpeg")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/meals/photo.jpeg", u.Path)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/meals/voice.m4a":
			w.Header().Set("Content-Type", "audio/mp4")
			w.Write([]byte("fake-audio-bytes"))
		default:
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`))
		}
	}))
	defer srv.Close()

	s := newTestStorage(t, srv.URL)

	b, err := s.Download(context.Background(), "voice.m4a")
	require.NoError(t, err)
	assert.Equal(t, "fake-audio-bytes", string(b))

	_, err = s.Download(context.Background(), "missing.m4a")
	assert.ErrorIs(t, err, apperror.ErrStorageUnavailable)
}

func TestNewKey(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.jpeg$`)

	a, b := NewKey("jpeg"), NewKey("jpeg")
	assert.Regexp(t, pattern, a)
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(NewKey("m4a"), ".m4a"))
}
