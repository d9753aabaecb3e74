package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))

	nf := NotFound("нет такой статьи")
	wrapped := fmt.Errorf("handler: %w", nf)
	assert.Same(t, nf, From(wrapped))

	plain := errors.New("boom")
	ae := From(plain)
	assert.Equal(t, http.StatusInternalServerError, ae.Status)
	assert.ErrorIs(t, ae, plain)
}

func TestFail_ProblemJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/inventory?dr_min=x", nil)
	r.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()

	Fail(w, r, Validation("некорректные параметры фильтра", map[string]string{"dr_min": "ожидается целое число"}))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "application/problem+json; charset=utf-8", w.Header().Get("Content-Type"))

	var p ProblemDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "/errors/validation", p.Type)
	assert.Equal(t, "/api/inventory", p.Instance)
	assert.Equal(t, "ожидается целое число", p.Fields["dr_min"])
}

func TestFail_NilURL(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.URL = nil
	w := httptest.NewRecorder()

	assert.NotPanics(t, func() { Fail(w, r, errors.New("x")) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestNonceContext(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, NonceFrom(r.Context()))
	assert.Equal(t, "abc", NonceFrom(WithNonce(r.Context(), "abc")))
}
