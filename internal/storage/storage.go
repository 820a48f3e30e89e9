package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hautrelief/tilmeld-feeds/internal/event"
)

// Snapshot is the persisted record of one run's events, keyed by event ID.
type Snapshot struct {
	UpdatedAt string                  `json:"updated_at"`
	Events    map[string]*event.Event `json:"events"`
}

// NewEvents returns the subset of events whose ID is not in the snapshot,
// preserving order.
func (s *Snapshot) NewEvents(events []*event.Event) []*event.Event {
	var out []*event.Event
	for _, evt := range events {
		if _, known := s.Events[evt.ID]; !known {
			out = append(out, evt)
		}
	}
	return out
}

// Storage handles persistence of event snapshots
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// snapshotPath returns the path to the snapshot file for a host. The empty
// host and "all" name the combined snapshot. Colons in the host (ports) are
// replaced so the name stays portable.
func (s *Storage) snapshotPath(host string) string {
	if host == "" || host == "all" {
		return filepath.Join(s.dataDir, "snapshot.json")
	}
	return filepath.Join(s.dataDir, "snapshot-"+strings.ReplaceAll(host, ":", "-")+".json")
}

// LoadSnapshot loads a host's snapshot from disk. A missing file yields an
// empty snapshot, not an error.
func (s *Storage) LoadSnapshot(host string) (*Snapshot, error) {
	path := s.snapshotPath(host)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Snapshot{Events: make(map[string]*event.Event)}, nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if snapshot.Events == nil {
		snapshot.Events = make(map[string]*event.Event)
	}

	return &snapshot, nil
}

// SaveSnapshot replaces a host's snapshot with the given events.
func (s *Storage) SaveSnapshot(host string, events []*event.Event) error {
	snapshot := Snapshot{
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		Events:    make(map[string]*event.Event, len(events)),
	}
	for _, evt := range events {
		snapshot.Events[evt.ID] = evt
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := os.WriteFile(s.snapshotPath(host), data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	return nil
}
