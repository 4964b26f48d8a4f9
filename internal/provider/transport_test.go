package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arcshop/podbridge/internal/domain"
	apperrors "github.com/arcshop/podbridge/pkg/errors"
)

func TestTransportTimeoutIsNormalized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	tr := newTransport(domain.ProviderPrintify, server.URL, func() map[string]string {
		return nil
	}, zap.NewNop())
	tr.timeout = 50 * time.Millisecond

	_, err := tr.get(context.Background(), "slow")
	require.Error(t, err)

	var provErr *apperrors.ErrProvider
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, apperrors.KindTimeout, provErr.Kind)
	assert.Contains(t, provErr.Message, "connection timeout")
}

func TestTransportUnreachableIsNormalized(t *testing.T) {
	tr := newTransport(domain.ProviderGelato, "http://127.0.0.1:1", func() map[string]string {
		return nil
	}, zap.NewNop())

	_, err := tr.get(context.Background(), "ping")
	require.Error(t, err)

	var provErr *apperrors.ErrProvider
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, apperrors.KindUnreachable, provErr.Kind)
}

func TestTransportJoinsEndpointPaths(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))
	defer server.Close()

	// Trailing and leading slashes collapse to a single separator.
	tr := newTransport(domain.ProviderPrintful, server.URL+"/", func() map[string]string {
		return map[string]string{"Authorization": "Bearer k"}
	}, zap.NewNop())

	_, err := tr.get(context.Background(), "/stores")
	require.NoError(t, err)
	assert.Equal(t, "/stores", gotPath)
}
