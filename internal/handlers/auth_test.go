package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "github.com/kelmerpassos/ipet-api/pkg/context"
)

type fakeRevoker struct {
	tokenID string
	ttl     time.Duration
}

func (f *fakeRevoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	f.tokenID = tokenID
	f.ttl = ttl
	return nil
}

func TestAuthRevoke(t *testing.T) {
	revoker := &fakeRevoker{}
	h := NewAuthHandler(revoker, testLogger())

	c, rec := newJSONContext(t, http.MethodPost, "/auth/revoke", "")
	ctx := appctx.SetTokenID(c.Request().Context(), "jti-123")
	ctx = appctx.SetTokenExpiresAt(ctx, time.Now().Add(time.Hour))
	c.SetRequest(c.Request().WithContext(ctx))

	require.NoError(t, h.Revoke(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jti-123", revoker.tokenID)
	assert.Greater(t, revoker.ttl, 59*time.Minute)
}

func TestAuthRevokeMissingTokenID(t *testing.T) {
	h := NewAuthHandler(&fakeRevoker{}, testLogger())

	c, _ := newJSONContext(t, http.MethodPost, "/auth/revoke", "")

	err := h.Revoke(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
}
