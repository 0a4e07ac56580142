package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "tmichat"

var (
	descConnectionsActive = prometheus.NewDesc(namespace+"_connections_active", "Open chat server connections.", nil, nil)
	descConnectionsTotal  = prometheus.NewDesc(namespace+"_connections_total", "Chat server connections established.", nil, nil)
	descBytes             = prometheus.NewDesc(namespace+"_bytes_total", "Bytes moved over the chat socket.", []string{"direction"}, nil)
	descMessages          = prometheus.NewDesc(namespace+"_messages_total", "Chat messages by outcome.", []string{"outcome"}, nil)
	descKeepalive         = prometheus.NewDesc(namespace+"_keepalive_total", "PING requests received and PONG replies sent.", []string{"kind"}, nil)
	descDecodeErrors      = prometheus.NewDesc(namespace+"_decode_errors_total", "Chat lines rejected for invalid UTF-8.", nil, nil)
	descReconnects        = prometheus.NewDesc(namespace+"_reconnects_total", "Reconnect attempts after transport faults.", nil, nil)
	descAuthFailures      = prometheus.NewDesc(namespace+"_auth_failures_total", "Logins rejected by the server.", nil, nil)
	descErrors            = prometheus.NewDesc(namespace+"_errors_total", "Errors recorded by the session.", nil, nil)
)

// Describe implements [prometheus.Collector].
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		descConnectionsActive, descConnectionsTotal, descBytes, descMessages,
		descKeepalive, descDecodeErrors, descReconnects, descAuthFailures, descErrors,
	} {
		ch <- d
	}
}

// Collect implements [prometheus.Collector] by exporting a snapshot of
// the atomic counters, so the hot path never touches the registry.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.Snapshot()

	gauge := func(d *prometheus.Desc, v int64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v), labels...)
	}
	counter := func(d *prometheus.Desc, v int64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
	}

	gauge(descConnectionsActive, s.ConnectionsActive)
	counter(descConnectionsTotal, s.ConnectionsTotal)
	counter(descBytes, s.BytesIn, "in")
	counter(descBytes, s.BytesOut, "out")
	counter(descMessages, s.MessagesIn, "received")
	counter(descMessages, s.MessagesOut, "sent")
	counter(descMessages, s.MessagesDropped, "dropped")
	counter(descKeepalive, s.Pings, "ping")
	counter(descKeepalive, s.Pongs, "pong")
	counter(descDecodeErrors, s.DecodeErrors)
	counter(descReconnects, s.Reconnects)
	counter(descAuthFailures, s.AuthFailures)
	counter(descErrors, s.ErrorsTotal)
}

var _ prometheus.Collector = (*Collector)(nil)
