package probe

import (
	"context"
	"os/exec"
	"strconv"
	"time"
)

// Pinger reports whether a device answered a single echo request. Any
// failure (unreachable host, timeout, malformed address, missing ping
// binary) collapses to false; callers only get a binary up/down.
type Pinger interface {
	Probe(ctx context.Context, address string) bool
}

// ExecPinger shells out to the system ping binary, one echo request
// per probe, no retries.
type ExecPinger struct {
	timeout time.Duration
}

// NewExecPinger creates a pinger with the given per-probe timeout.
func NewExecPinger(timeout time.Duration) *ExecPinger {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &ExecPinger{timeout: timeout}
}

// Probe sends one echo request to address and reports whether a reply
// arrived before the deadline.
func (p *ExecPinger) Probe(ctx context.Context, address string) bool {
	if address == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	secs := int(p.timeout / time.Second)
	if secs < 1 {
		secs = 1
	}

	cmd := exec.CommandContext(ctx, "ping", "-n", "-c", "1", "-W", strconv.Itoa(secs), address)
	return cmd.Run() == nil
}
