// Package acquire owns the serial port for one capture cycle and turns the
// unframed byte stream coming from the scope into an ordered sequence of
// text lines.
//
// The DLO-138 wire format carries no length prefix and no end-of-frame
// marker, so completion has to be inferred from traffic quiescence: the
// reader polls the port, accumulates whatever arrives, and declares the
// transmission complete on the first poll cycle that observes zero new
// bytes while the buffer is non-empty. Completion therefore lands one idle
// poll after the device stops sending; that latency buys robustness
// against mid-transmission jitter shorter than the poll interval.
package acquire

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

// State identifies where the reader is within one acquisition cycle.
type State int

const (
	// StateIdle means no bytes have arrived yet.
	StateIdle State = iota
	// StateAccumulating means a transmission is in flight.
	StateAccumulating
	// StateComplete means a quiescent poll ended the cycle and the buffer
	// was handed off.
	StateComplete
	// StateFailed means the cycle aborted on a transport or encoding error.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAccumulating:
		return "accumulating"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DefaultPollInterval matches the firmware reference tooling's 100ms poll
// cadence. It doubles as the quiescence window.
const DefaultPollInterval = 100 * time.Millisecond

// Config tunes one acquisition cycle.
type Config struct {
	// PollInterval is both the pacing of idle polls and the quiescence
	// window after which a silent line ends the transmission.
	PollInterval time.Duration

	// WaitTimeout bounds how long to wait for the first byte. Zero waits
	// forever, which reproduces the device tooling's behavior: a silent
	// scope blocks the cycle until the process is interrupted.
	WaitTimeout time.Duration

	// Clock paces the poll loop; nil uses the system clock.
	Clock Clock
}

// Reader runs acquisition cycles against a scope port. It is the exclusive
// owner of the port and closes it when the cycle ends, on every exit path.
type Reader struct {
	port  ScopePort
	cfg   Config
	state State
	size  int // bytes accumulated in the last cycle
}

// NewReader wraps an open port. The Reader takes ownership: the port is
// closed when Acquire returns.
func NewReader(port ScopePort, cfg Config) *Reader {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	return &Reader{port: port, cfg: cfg, state: StateIdle}
}

// State reports the reader's position in the cycle.
func (r *Reader) State() State { return r.state }

// BytesReceived reports how many bytes the last cycle accumulated.
func (r *Reader) BytesReceived() int { return r.size }

// Acquire runs one acquisition cycle and returns the received transmission
// as lines split on CR+LF. The port is closed before Acquire returns,
// whatever the outcome.
func (r *Reader) Acquire(ctx context.Context) (lines []string, err error) {
	defer func() {
		if cerr := r.port.Close(); cerr != nil && err == nil {
			r.state = StateFailed
			lines = nil
			err = &TransportError{Op: "close", Err: cerr}
		}
	}()

	if err := r.port.ResetInputBuffer(); err != nil {
		r.state = StateFailed
		return nil, &TransportError{Op: "reset input buffer", Err: err}
	}
	if err := r.port.SetReadTimeout(r.cfg.PollInterval); err != nil {
		r.state = StateFailed
		return nil, &TransportError{Op: "set read timeout", Err: err}
	}

	buf, err := r.accumulate(ctx)
	if err != nil {
		r.state = StateFailed
		return nil, err
	}
	r.size = len(buf)

	lines, err = splitLines(buf)
	if err != nil {
		r.state = StateFailed
		return nil, err
	}
	r.state = StateComplete
	return lines, nil
}

// accumulate polls the port until a full poll cycle sees zero new bytes
// while the buffer is non-empty.
func (r *Reader) accumulate(ctx context.Context) ([]byte, error) {
	var buf []byte
	chunk := make([]byte, 4096)
	start := r.cfg.Clock.Now()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		pollStart := r.cfg.Clock.Now()
		n, err := r.port.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			r.state = StateAccumulating
		}
		eof := errors.Is(err, io.EOF)
		if err != nil && !eof {
			return nil, &TransportError{Op: "read", Err: err}
		}
		if n > 0 && !eof {
			continue
		}

		// Zero new bytes this poll cycle (or the stream ended): a
		// non-empty buffer means the transmission is complete.
		if len(buf) > 0 {
			return buf, nil
		}
		if eof {
			return nil, ErrNoData
		}

		// Still waiting for the first byte.
		if r.cfg.WaitTimeout > 0 && r.cfg.Clock.Now().Sub(start) >= r.cfg.WaitTimeout {
			return nil, ErrNoData
		}
		// The read itself blocks up to the poll interval on real hardware;
		// sleep only whatever of the interval it left unconsumed so the
		// idle cadence stays one interval per poll.
		if remaining := r.cfg.PollInterval - r.cfg.Clock.Now().Sub(pollStart); remaining > 0 {
			r.cfg.Clock.Sleep(remaining)
		}
	}
}

// splitLines validates the buffer as strict 7-bit ASCII and splits it on
// the device's CR+LF line terminator. Any byte outside ASCII marks the
// whole transmission as corrupt; nothing partial is returned.
func splitLines(buf []byte) ([]string, error) {
	for i, b := range buf {
		if b > 0x7f {
			return nil, &EncodingError{Offset: i, Byte: b}
		}
	}
	return strings.Split(string(buf), "\r\n"), nil
}
