package acquire

import (
	"os"
	"sync"
	"time"
)

// ScriptedPort implements ScopePort with a fixed schedule of poll results.
// Each Read call consumes one step: a burst of bytes, an idle poll (no
// data), or an error. Once the script is exhausted every Read reports an
// idle poll, so a test transmission always ends in quiescence.
type ScriptedPort struct {
	mu sync.Mutex

	steps []scriptStep
	next  int

	// Closed indicates whether Close was called.
	Closed bool

	// CloseError is returned by Close if set.
	CloseError error

	// ResetCalls records the number of ResetInputBuffer calls.
	ResetCalls int

	// ReadTimeout records the last timeout passed to SetReadTimeout.
	ReadTimeout time.Duration
}

type scriptStep struct {
	data []byte
	err  error
}

// NewScriptedPort creates an empty ScriptedPort. Schedule polls with
// Burst, Idle, and Fail.
func NewScriptedPort() *ScriptedPort {
	return &ScriptedPort{}
}

// Burst schedules a poll that delivers the given bytes.
func (p *ScriptedPort) Burst(data []byte) *ScriptedPort {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps = append(p.steps, scriptStep{data: data})
	return p
}

// Idle schedules a poll that delivers no bytes.
func (p *ScriptedPort) Idle() *ScriptedPort {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps = append(p.steps, scriptStep{})
	return p
}

// Fail schedules a poll that returns the given error.
func (p *ScriptedPort) Fail(err error) *ScriptedPort {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps = append(p.steps, scriptStep{err: err})
	return p
}

func (p *ScriptedPort) Read(buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.next >= len(p.steps) {
		return 0, nil
	}
	step := p.steps[p.next]
	p.next++
	if step.err != nil {
		return 0, step.err
	}
	return copy(buf, step.data), nil
}

func (p *ScriptedPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed = true
	return p.CloseError
}

func (p *ScriptedPort) SetReadTimeout(timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ReadTimeout = timeout
	return nil
}

func (p *ScriptedPort) ResetInputBuffer() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ResetCalls++
	return nil
}

// FixturePort adapts a recorded dump file to the ScopePort interface so the
// full acquire/decode path runs without scope hardware (dev mode).
type FixturePort struct {
	f *os.File
}

// OpenFixture opens a recorded transmission dump for replay.
func OpenFixture(path string) (*FixturePort, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &TransportError{Op: "open fixture " + path, Err: err}
	}
	return &FixturePort{f: f}, nil
}

func (p *FixturePort) Read(buf []byte) (int, error) { return p.f.Read(buf) }

func (p *FixturePort) Close() error { return p.f.Close() }

// SetReadTimeout is a no-op: file reads never block.
func (p *FixturePort) SetReadTimeout(time.Duration) error { return nil }

// ResetInputBuffer is a no-op: the whole fixture is the transmission.
func (p *FixturePort) ResetInputBuffer() error { return nil }
