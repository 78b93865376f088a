// Package observability records what the engine did: one append-only JSONL
// event per committed lifecycle transition.
package observability

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// TransitionEvent is a single committed transition.
type TransitionEvent struct {
	Time   time.Time `json:"time"`
	Entity string    `json:"entity"` // "work_item" or "group"
	ID     int       `json:"id"`
	From   string    `json:"from,omitempty"`
	To     string    `json:"to,omitempty"`
	Note   string    `json:"note,omitempty"`
}

// TransitionLog appends and reads transition events.
type TransitionLog interface {
	RecordTransition(entity string, id int, from, to, note string)
	ReadSince(since time.Time) ([]TransitionEvent, error)
	Close() error
}

// jsonlTransitionLog implements TransitionLog over an append-only JSONL
// file. Recording failures are dropped silently: the event log is an
// audit trail, not a participant in the transition's atomicity.
type jsonlTransitionLog struct {
	path string
	file *os.File
	mu   sync.Mutex
	now  func() time.Time
}

// NewTransitionLog opens (creating if needed) the JSONL log at path.
func NewTransitionLog(path string) (TransitionLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening transition log: %w", err)
	}
	return &jsonlTransitionLog{
		path: path,
		file: f,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

func (l *jsonlTransitionLog) RecordTransition(entity string, id int, from, to, note string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	event := TransitionEvent{Time: l.now(), Entity: entity, ID: id, From: from, To: to, Note: note}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	_, _ = l.file.Write(append(data, '\n'))
}

// ReadSince returns every event recorded at or after since, in file order.
func (l *jsonlTransitionLog) ReadSince(since time.Time) ([]TransitionEvent, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening transition log: %w", err)
	}
	defer f.Close()

	var events []TransitionEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var event TransitionEvent
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			continue // skip torn trailing lines
		}
		if !event.Time.Before(since) {
			events = append(events, event)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading transition log: %w", err)
	}
	return events, nil
}

func (l *jsonlTransitionLog) Close() error {
	return l.file.Close()
}
