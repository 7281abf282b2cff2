package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

// StateRecord is one state reached by a pipeline run
type StateRecord struct {
	State string    `json:"state"`
	At    time.Time `json:"at"`
}

// Run is the journal of one pipeline invocation
type Run struct {
	// ID orders runs chronologically
	ID        string        `json:"id"`
	PackageID string        `json:"package_id"`
	Started   time.Time     `json:"started"`
	States    []StateRecord `json:"states"`
	Error     string        `json:"error,omitempty"`
}

// NewRun starts a journal entry for a package
func NewRun(packageID string) *Run {
	now := time.Now().UTC()

	return &Run{
		ID:        now.Format("20060102T150405.000000000Z"),
		PackageID: packageID,
		Started:   now,
	}
}

// Reached appends a state to the run
func (r *Run) Reached(state string) {
	r.States = append(r.States, StateRecord{State: state, At: time.Now().UTC()})
}

// Last returns the most recent state, or "" if none was reached
func (r *Run) Last() string {
	if len(r.States) == 0 {
		return ""
	}

	return r.States[len(r.States)-1].State
}

// SaveRun writes the run to the journal, replacing an earlier save of the same run
func (c *Cache) SaveRun(run *Run) error {
	err := c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))

		data, err := json.Marshal(run)
		if err != nil {
			return err
		}

		return b.Put([]byte(run.ID), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// LatestRun returns the most recent run, or nil if the journal is empty
func (c *Cache) LatestRun() (*Run, error) {
	var run *Run

	err := c.db.View(func(tx *bbolt.Tx) error {
		_, data := tx.Bucket([]byte(runsBucket)).Cursor().Last()
		if data == nil {
			return nil
		}

		run = &Run{}
		return json.Unmarshal(data, run)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read run journal: %w", err)
	}

	return run, nil
}
