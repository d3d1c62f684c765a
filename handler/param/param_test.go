package param

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinding(t *testing.T) {
	r := httptest.NewRequest("GET", "/balances?page=3&size=20&noise=x", nil)

	var params struct {
		Page int `json:"page"`
		Size int `json:"size"`
	}
	require.NoError(t, Binding(r, &params))
	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 20, params.Size)
}

func TestBindingRouteParams(t *testing.T) {
	r := httptest.NewRequest("GET", "/accounts/abc", nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("account", "abc")
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

	var params struct {
		Account string `json:"account"`
	}
	require.NoError(t, Binding(r, &params))
	assert.Equal(t, "abc", params.Account)
}

func TestBindingBadValue(t *testing.T) {
	r := httptest.NewRequest("GET", "/balances?page=abc", nil)

	var params struct {
		Page int `json:"page"`
	}
	assert.Error(t, Binding(r, &params))
}
