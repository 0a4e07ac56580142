package cmd

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tmichat/chat"
	"tmichat/config"
	tmerr "tmichat/internal/errors"
	"tmichat/internal/metrics"
	"tmichat/internal/retry"
	"tmichat/internal/transport"
	"tmichat/util"
)

// run connects and then loops: every tick drains the session and
// prints what arrived; every stdin line is sent as a message.  Both are
// handled on this goroutine so the session has a single owner.
func run(ctx context.Context, cfg *config.Config, logger *util.Logger, stdin io.Reader, stdout io.Writer) error {
	m := metrics.New()
	if cfg.MetricsAddr != "" {
		srv, err := serveMetrics(cfg.MetricsAddr, m, logger)
		if err != nil {
			return err
		}
		defer srv.Close()
	}

	dialer := newDialer(cfg, logger)
	defer dialer.Close()

	addr, err := cfg.ServerAddr()
	if err != nil {
		return err
	}
	backoff := &retry.Backoff{
		InitialDelay: time.Second,
		MaxDelay:     config.DefaultMaxReconnectBackoff,
		Multiplier:   2,
		MaxAttempts:  cfg.MaxReconnects,
		Jitter:       true,
	}

	sess, err := chat.New(ctx, cfg.Username, cfg.OAuthToken(),
		chat.WithServer(addr),
		chat.WithDialer(dialer),
		chat.WithSendInterval(cfg.SendInterval),
		chat.WithHandshakeTimeout(cfg.HandshakeTimeout),
		chat.WithBackoff(backoff),
		chat.WithLogger(logger),
		chat.WithMetrics(m),
	)
	if err != nil {
		return err
	}
	defer sess.Close()

	// The first connect gets the same retry budget as a reconnect; a
	// rejected login ends it at once.
	err = backoff.Do(ctx, func(attempt int) error {
		err := sess.Connect(ctx)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, tmerr.ErrAuthFailed), ctx.Err() != nil:
			return retry.Permanent(err)
		}
		logger.Warn("connect attempt %d: %v", attempt, err)
		return err
	})
	if err != nil {
		return err
	}

	lines := readLines(ctx, stdin)
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Verbose("shutting down")
			logger.Debug("session metrics: %s", m.JSON())
			return nil

		case text, ok := <-lines:
			if !ok {
				logger.Verbose("stdin closed; still listening")
				lines = nil
				continue
			}
			sent, err := sess.Send(text)
			switch {
			case err != nil:
				logger.Warn("send: %v", err)
			case !sent && text != "":
				logger.Warn("message dropped: one message per %v", cfg.SendInterval)
			}

		case <-ticker.C:
			msgs, err := sess.Poll(ctx)
			for _, msg := range msgs {
				fmt.Fprintln(stdout, msg.String())
			}
			if err == nil {
				continue
			}
			if errors.Is(err, tmerr.ErrReconnectExhausted) ||
				errors.Is(err, tmerr.ErrAuthFailed) ||
				errors.Is(err, tmerr.ErrNotConnected) {
				return err
			}
			logger.Warn("%v", err)
		}
	}
}

// newDialer returns the SSH jump-host dialer when a tunnel is
// configured and a direct dialer otherwise, with TLS on top if asked.
func newDialer(cfg *config.Config, logger *util.Logger) transport.Dialer {
	var tlsConfig *tls.Config
	if cfg.TLS {
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	if !cfg.TunnelEnabled {
		return &transport.TCPDialer{Timeout: cfg.HandshakeTimeout, TLS: tlsConfig}
	}

	var d transport.Dialer = transport.NewSSHDialer(&transport.SSHConfig{
		User:          cfg.TunnelUser,
		Host:          cfg.TunnelHost,
		Port:          cfg.TunnelPort,
		KeyPath:       cfg.SSHKeyPath,
		PromptPass:    cfg.SSHPassword,
		UseAgent:      cfg.UseSSHAgent,
		StrictHostKey: cfg.StrictHostKey,
		KnownHosts:    cfg.KnownHostsPath,
		ConnTimeout:   config.DefaultConnTimeout,
	}, logger)
	if tlsConfig != nil {
		d = &transport.TLSDialer{Dialer: d, Config: tlsConfig}
	}
	return d
}

// serveMetrics exposes the session collector at /metrics.
func serveMetrics(addr string, m *metrics.Collector, logger *util.Logger) (*http.Server, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(m, collectors.NewGoCollector())

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server: %v", err)
		}
	}()
	logger.Verbose("metrics on http://%s/metrics", ln.Addr())
	return srv, nil
}

// readLines feeds stdin lines into a channel until EOF or ctx ends.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case out <- strings.TrimRight(sc.Text(), "\r"):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
