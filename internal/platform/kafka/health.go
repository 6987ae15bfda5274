// Package kafka holds broker-level helpers shared by the consumer and producer.
package kafka

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

// Brokers splits a comma separated broker list, dropping blanks.
func Brokers(list string) []string {
	var out []string
	for b := range strings.SplitSeq(list, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// ReadinessCheck returns a health check that succeeds when at least one
// broker accepts a TCP connection.
func ReadinessCheck(brokers string, timeout time.Duration) func(ctx context.Context) error {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return func(ctx context.Context) error {
		list := Brokers(brokers)
		if len(list) == 0 {
			return fmt.Errorf("kafka brokers not configured")
		}

		dialer := net.Dialer{Timeout: timeout}
		var lastErr error
		for _, broker := range list {
			conn, err := dialer.DialContext(ctx, "tcp", broker)
			if err != nil {
				lastErr = err
				continue
			}
			_ = conn.Close()
			return nil
		}
		return fmt.Errorf("no kafka brokers reachable: %w", lastErr)
	}
}
