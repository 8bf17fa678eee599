package interp

import (
	"sync"
	"time"

	stateffect "github.com/stateffect/stateffect-go"
)

// StepStatus is the lifecycle state of one transaction step as seen by
// a journal.
type StepStatus string

const (
	StepApplied StepStatus = "applied"
	StepFailed  StepStatus = "failed"
)

// Journal observes transaction lifecycles. Implementations must be safe
// for use from multiple concurrent Apply calls sharing one journal.
type Journal interface {
	Begin(txID string)
	Record(txID string, eff stateffect.Effect, status StepStatus)
	Commit(txID string)
	Rollback(txID string)
}

// JournalEntry is one recorded transaction step.
type JournalEntry struct {
	TxID   string
	Seq    int
	Effect stateffect.Effect
	Status StepStatus
	At     time.Time
}

// Transaction terminal states as reported by MemoryJournal.Status.
const (
	TxOpen       = "open"
	TxCommitted  = "committed"
	TxRolledBack = "rolled-back"
)

// MemoryJournal is an in-memory Journal, useful for tests and for host
// applications that only need post-hoc inspection of what a transaction
// did.
type MemoryJournal struct {
	mu      sync.Mutex
	entries map[string][]JournalEntry
	status  map[string]string
}

// NewMemoryJournal returns an empty journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{
		entries: make(map[string][]JournalEntry),
		status:  make(map[string]string),
	}
}

func (j *MemoryJournal) Begin(txID string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status[txID] = TxOpen
}

func (j *MemoryJournal) Record(txID string, eff stateffect.Effect, status StepStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries[txID] = append(j.entries[txID], JournalEntry{
		TxID:   txID,
		Seq:    len(j.entries[txID]),
		Effect: eff,
		Status: status,
		At:     time.Now(),
	})
}

func (j *MemoryJournal) Commit(txID string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status[txID] = TxCommitted
}

func (j *MemoryJournal) Rollback(txID string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status[txID] = TxRolledBack
}

// Entries returns the recorded steps of a transaction in order.
func (j *MemoryJournal) Entries(txID string) []JournalEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]JournalEntry, len(j.entries[txID]))
	copy(out, j.entries[txID])
	return out
}

// Status returns the terminal state of a transaction, or "" if unknown.
func (j *MemoryJournal) Status(txID string) string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status[txID]
}

// Transactions returns the IDs of every journaled transaction.
func (j *MemoryJournal) Transactions() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	ids := make([]string, 0, len(j.status))
	for id := range j.status {
		ids = append(ids, id)
	}
	return ids
}
