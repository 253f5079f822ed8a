// Package snapshot persists conversation states as immutable JSON
// records on disk. One file per snapshot; names embed the creation
// time so lexical descending order equals recency order.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/undergrid/recall/internal/conversation"
	"github.com/undergrid/recall/internal/provider"
)

// Sentinel errors for snapshot operations.
var (
	// ErrNotFound indicates the identifier does not resolve to an
	// existing record.
	ErrNotFound = errors.New("snapshot not found")

	// ErrCorrupt indicates the record exists but is not well-formed.
	ErrCorrupt = errors.New("snapshot corrupt")

	// ErrExists indicates an explicit save name is already taken.
	// Records are immutable once written.
	ErrExists = errors.New("snapshot already exists")
)

const (
	filePrefix = "context_"
	fileSuffix = ".json"
	nameLayout = "20060102_150405"
)

// record is the on-disk document shape.
type record struct {
	Timestamp           string             `json:"timestamp"`
	MessageCount        int                `json:"message_count"`
	ConversationHistory []provider.Message `json:"conversation_history"`
}

// Store reads and writes snapshot files under a single directory.
// The directory is shared across process invocations but append-only
// in practice: every save creates a new record.
type Store struct {
	dir string
	now func() time.Time
}

// New creates a Store rooted at dir. The directory is created lazily
// on the first save.
func New(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Save serializes the state to a new snapshot record and returns its
// identifier (the file name). When name is empty one is derived from
// the current timestamp at second resolution; if a record with that
// name already exists (rapid same-second saves), a numeric suffix is
// appended so an earlier record is never overwritten. An explicit name
// that is already taken fails with ErrExists.
func (s *Store) Save(state *conversation.State, name string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return "", fmt.Errorf("snapshot: create directory %s: %w", s.dir, err)
	}

	turns := state.Turns()
	rec := record{
		Timestamp:           s.now().Format(time.RFC3339),
		MessageCount:        len(turns),
		ConversationHistory: turns,
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("snapshot: marshal: %w", err)
	}

	if name == "" {
		name = s.deriveName()
	} else if _, err := os.Stat(filepath.Join(s.dir, name)); err == nil {
		return "", fmt.Errorf("snapshot: %s: %w", name, ErrExists)
	}

	// Write to a temp file in the same directory and rename, so a
	// record is either fully written or absent.
	tmp, err := os.CreateTemp(s.dir, name+".tmp*")
	if err != nil {
		return "", fmt.Errorf("snapshot: create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("snapshot: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("snapshot: close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("snapshot: rename %s: %w", name, err)
	}

	return name, nil
}

// deriveName builds a timestamp-based file name, appending a numeric
// suffix when a record for the same second already exists. The suffix
// keeps lexical ordering consistent with write order ('_' sorts after
// '.', so a suffixed name lists as more recent than its base).
func (s *Store) deriveName() string {
	base := filePrefix + s.now().Format(nameLayout)
	name := base + fileSuffix
	for i := 2; ; i++ {
		if _, err := os.Stat(filepath.Join(s.dir, name)); os.IsNotExist(err) {
			return name
		}
		name = fmt.Sprintf("%s_%02d%s", base, i, fileSuffix)
	}
}

// Load reads back the turn sequence of a snapshot. It returns
// ErrNotFound when the identifier does not resolve to an existing
// record and ErrCorrupt when the record fails to parse.
func (s *Store) Load(id string) ([]provider.Message, error) {
	// Identifiers are bare file names; strip any path components so a
	// caller-supplied id cannot escape the store directory.
	id = filepath.Base(id)

	data, err := os.ReadFile(filepath.Join(s.dir, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("snapshot: %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("snapshot: read %s: %w", id, err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("snapshot: parse %s: %w: %w", id, ErrCorrupt, err)
	}

	return rec.ConversationHistory, nil
}

// List enumerates all snapshot identifiers, most recent first
// (lexically descending, which is the same thing since names embed
// timestamps). A missing store directory yields an empty list.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("snapshot: list %s: %w", s.dir, err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileSuffix) {
			continue
		}
		ids = append(ids, e.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}
