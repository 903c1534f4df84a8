package ops

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLevelLogger(lvl logrus.Level) *logrus.Logger {
	l, _ := logtest.NewNullLogger()
	l.SetLevel(lvl)
	return l
}

func TestLogLevelGet_Text(t *testing.T) {
	t.Parallel()

	l := newLevelLogger(logrus.InfoLevel)
	w := serve(LogLevelGetHandler(l), http.MethodGet, "/log/level")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "log\tlevel\tinfo\nlog\tlevel_value\t4\n", w.Body.String())
}

func TestLogLevelSet_ChangesLevel(t *testing.T) {
	t.Parallel()

	l := newLevelLogger(logrus.InfoLevel)
	w := serve(LogLevelSetHandler(l), http.MethodPost, "/log/level?level=DEBUG&format=json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	var got logLevelSetResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.True(t, got.OK)
	assert.Equal(t, "info", got.Old.Level)
	assert.Equal(t, "debug", got.New.Level)
	assert.Equal(t, int(logrus.DebugLevel), got.New.LevelValue)
}

func TestLogLevelSet_WarnAlias(t *testing.T) {
	t.Parallel()

	l := newLevelLogger(logrus.InfoLevel)
	w := serve(LogLevelSetHandler(l), http.MethodPost, "/log/level?level=warn")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, logrus.WarnLevel, l.GetLevel())
	assert.Contains(t, w.Body.String(), "log\tnew_level\twarning\n")
}

func TestLogLevelSet_Invalid(t *testing.T) {
	t.Parallel()

	l := newLevelLogger(logrus.InfoLevel)
	for _, target := range []string{"/log/level", "/log/level?level=", "/log/level?level=loud"} {
		w := serve(LogLevelSetHandler(l), http.MethodPost, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())

	w := serve(LogLevelSetHandler(l), http.MethodGet, "/log/level?level=debug")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}

func TestLogLevelHandlers_PanicOnNilLogger(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { LogLevelGetHandler(nil) })
	assert.Panics(t, func() { LogLevelSetHandler(nil) })
}
