package ops

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/evan-idocoding/zrtos"
	"github.com/evan-idocoding/zrtos/rt/task"
	"github.com/evan-idocoding/zrtos/rt/tick"
)

func newTestRuntime(t *testing.T) *zrtos.Runtime {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	c := zrtos.DefaultConfig()
	c.TickPeriod = time.Millisecond
	r := zrtos.New(zrtos.WithConfig(c), zrtos.WithLogger(logrus.NewEntry(logger)))
	t.Cleanup(func() { _ = r.Shutdown(context.Background()) })
	return r
}

// spawn creates a started task that runs until stopped, deleted at cleanup.
func spawn(t *testing.T, r *zrtos.Runtime, name string, opts ...task.Option) *task.Task {
	t.Helper()
	tk, err := r.NewTask(name, func(self *task.Self, _ any) { <-self.StopRequested() }, nil, opts...)
	require.NoError(t, err)
	require.NoError(t, tk.Start())
	t.Cleanup(func() {
		tk.RequestStop()
		_ = tk.Delete(tick.Infinite)
	})
	return tk
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}
