package client

import (
	"fmt"
	"github.com/VictoriaMetrics/metrics"
	"github.com/ValentinKolb/t38/rpc/common"
	"github.com/puzpuzpuz/xsync/v3"
	"io"
	"time"
)

// commandMetrics holds the metric handles of a single command name
type commandMetrics struct {
	requests *metrics.Counter
	duration *metrics.Histogram
}

// clientMetrics holds the metrics of one client. Every client has its own set,
// so two clients in one process never share counters.
type clientMetrics struct {
	set      *metrics.Set
	commands *xsync.MapOf[string, *commandMetrics]
	errors   *xsync.MapOf[common.ErrorKind, *metrics.Counter]
}

func newClientMetrics() *clientMetrics {
	return &clientMetrics{
		set:      metrics.NewSet(),
		commands: xsync.NewMapOf[string, *commandMetrics](),
		errors:   xsync.NewMapOf[common.ErrorKind, *metrics.Counter](),
	}
}

// observe records one finished call
func (m *clientMetrics) observe(name string, start time.Time, err error) {
	cm, _ := m.commands.LoadOrCompute(name, func() *commandMetrics {
		return &commandMetrics{
			requests: m.set.GetOrCreateCounter(fmt.Sprintf(`t38_client_requests_total{command=%q}`, name)),
			duration: m.set.GetOrCreateHistogram(fmt.Sprintf(`t38_client_request_duration_seconds{command=%q}`, name)),
		}
	})
	cm.requests.Inc()
	cm.duration.UpdateDuration(start)

	if err == nil {
		return
	}
	kind := common.KindOf(err)
	c, _ := m.errors.LoadOrCompute(kind, func() *metrics.Counter {
		return m.set.GetOrCreateCounter(fmt.Sprintf(`t38_client_errors_total{kind=%q}`, metricLabel(kind)))
	})
	c.Inc()
}

func (m *clientMetrics) write(w io.Writer) {
	m.set.WritePrometheus(w)
}

func metricLabel(kind common.ErrorKind) string {
	switch kind {
	case common.KindInvalidArgument:
		return "invalid_argument"
	case common.KindTransport:
		return "transport"
	case common.KindMalformedResponse:
		return "malformed_response"
	case common.KindServer:
		return "server"
	default:
		return "unknown"
	}
}
