package dispatch

import (
	"sync"

	"github.com/agentstation/utc"
)

// Entry is one recorded delivery attempt for one target address. Entries are
// never mutated or removed; their lifetime is the process run.
type Entry struct {
	Time      utc.Time
	Recipient string
	Subject   string
	Success   bool
	Code      int
	Message   string
}

// SendLog is the append-only record of every recorded delivery attempt in a
// run. It is explicitly constructed and owned by the run's orchestrator; the
// dispatcher writes to it sequentially. The mutex keeps the type safe if it
// is ever shared, but the dispatch loop is single-writer.
type SendLog struct {
	mu      sync.Mutex
	entries []Entry
}

// NewSendLog creates an empty send log.
func NewSendLog() *SendLog {
	return &SendLog{}
}

// Append records one delivery attempt. A zero Time is stamped with the
// current UTC time.
func (l *SendLog) Append(e Entry) {
	if e.Time.IsZero() {
		e.Time = utc.Now()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

// Entries returns the recorded attempts in insertion order.
func (l *SendLog) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Failures returns only the failed attempts, in insertion order.
func (l *SendLog) Failures() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var failed []Entry
	for _, e := range l.entries {
		if !e.Success {
			failed = append(failed, e)
		}
	}
	return failed
}

// Len returns the number of recorded attempts.
func (l *SendLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
