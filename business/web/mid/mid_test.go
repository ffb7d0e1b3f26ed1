package mid_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/minichain/business/sys/validate"
	"github.com/ardanlabs/minichain/business/web/errs"
	"github.com/ardanlabs/minichain/business/web/mid"
	"github.com/ardanlabs/minichain/foundation/web"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type model struct {
	Name string `json:"name" validate:"required"`
}

func newApp(t *testing.T) *web.App {
	t.Helper()

	log := zaptest.NewLogger(t).Sugar()
	shutdown := make(chan os.Signal, 1)

	app := web.NewApp(shutdown, mid.Logger(log), mid.Errors(log), mid.Metrics(), mid.Panics())

	app.Handle(http.MethodGet, "v1", "/ok", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.Respond(ctx, w, map[string]string{"status": "ok"}, http.StatusOK)
	}, mid.Cors("*"))
	app.Handle(http.MethodGet, "v1", "/trusted", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errs.NewTrusted(errors.New("block not accepted"), http.StatusNotAcceptable)
	})
	app.Handle(http.MethodGet, "v1", "/fields", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return validate.Check(model{})
	})
	app.Handle(http.MethodGet, "v1", "/untrusted", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errors.New("database exploded")
	})
	app.Handle(http.MethodGet, "v1", "/panic", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		panic("boom")
	})

	return app
}

func call(t *testing.T, app http.Handler, path string) (int, errs.Response, http.Header) {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, r)

	var resp errs.Response
	if w.Code != http.StatusOK {
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	}

	return w.Code, resp, w.Header()
}

func TestMiddleware(t *testing.T) {
	app := newApp(t)

	t.Run("OK", func(t *testing.T) {
		status, _, header := call(t, app, "/v1/ok")
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, "*", header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("Trusted", func(t *testing.T) {
		status, resp, _ := call(t, app, "/v1/trusted")
		require.Equal(t, http.StatusNotAcceptable, status)
		require.Equal(t, "block not accepted", resp.Error)
	})

	t.Run("FieldErrors", func(t *testing.T) {
		status, resp, _ := call(t, app, "/v1/fields")
		require.Equal(t, http.StatusBadRequest, status)
		require.Contains(t, resp.Fields, "name")
	})

	t.Run("Untrusted", func(t *testing.T) {
		status, resp, _ := call(t, app, "/v1/untrusted")
		require.Equal(t, http.StatusInternalServerError, status)
		require.Equal(t, http.StatusText(http.StatusInternalServerError), resp.Error)
	})

	t.Run("Panic", func(t *testing.T) {
		status, _, _ := call(t, app, "/v1/panic")
		require.Equal(t, http.StatusInternalServerError, status)
	})
}
