package ops

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthz_Text_OK(t *testing.T) {
	t.Parallel()

	w := serve(HealthzHandler(), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok\n", w.Body.String())
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestHealthz_JSON_OK(t *testing.T) {
	t.Parallel()

	w := serve(HealthzHandler(), http.MethodGet, "/healthz?format=json")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "application/json"))

	var got healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.OK)
}

func TestHealthz_Head_NoBody(t *testing.T) {
	t.Parallel()

	w := serve(HealthzHandler(WithHealthDefaultFormat(FormatJSON)), http.MethodHead, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestHealthz_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	w := serve(HealthzHandler(), http.MethodPost, "/healthz")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "GET, HEAD", w.Header().Get("Allow"))
	assert.Equal(t, "method not allowed\n", w.Body.String())
}

func TestReadyz_AllPass(t *testing.T) {
	t.Parallel()

	h := ReadyzHandler([]ReadyCheck{
		{Name: "a", Func: func(context.Context) error { return nil }},
	})
	w := serve(h, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok\n", w.Body.String())
}

func TestReadyz_FailureListsFailedChecks(t *testing.T) {
	t.Parallel()

	h := ReadyzHandler([]ReadyCheck{
		{Name: "good", Func: func(context.Context) error { return nil }},
		{Name: "db", Func: func(context.Context) error { return errors.New("down\nhard") }},
		{Name: "boom", Func: func(context.Context) error { panic("x") }},
	})
	w := serve(h, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "fail\tdb\tdown\\nhard\nfail\tboom\tpanic: x\n", w.Body.String())
}

func TestReadyz_Timeout(t *testing.T) {
	t.Parallel()

	rep := RunReadyzChecks(context.Background(), []ReadyCheck{{
		Name:    "slow",
		Timeout: 5 * time.Millisecond,
		Func: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}})
	require.Len(t, rep.Checks, 1)
	assert.False(t, rep.OK)
	assert.True(t, rep.Checks[0].TimedOut)
}

func TestReadyz_ClockRunningCheck(t *testing.T) {
	t.Parallel()

	rt := newTestRuntime(t)
	h := ReadyzHandler([]ReadyCheck{ClockRunningCheck(rt)}, WithHealthDefaultFormat(FormatJSON))

	w := serve(h, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var rep ReadyzReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	require.Len(t, rep.Checks, 1)
	assert.Equal(t, ErrClockStopped.Error(), rep.Checks[0].Error)

	require.NoError(t, rt.Start())
	w = serve(h, http.MethodGet, "/readyz?format=text")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok\n", w.Body.String())
}

func TestReadyzHandler_PanicsOnBadCheck(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { ReadyzHandler([]ReadyCheck{{Func: func(context.Context) error { return nil }}}) })
	assert.Panics(t, func() { ReadyzHandler([]ReadyCheck{{Name: "x"}}) })
}
