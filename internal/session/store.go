package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"jobfit/analyzer/internal/models"
)

// SessionKey is the fixed key the persisted session record lives under.
const SessionKey = "jobfit.session.v1"

// KV is the minimal key-value surface the state machine persists through.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// FileKV stores each key as its own file in a directory.
type FileKV struct {
	dir string
}

func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil && !os.IsExist(err) {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &FileKV{dir: dir}, nil
}

func (kv *FileKV) path(key string) string {
	return filepath.Join(kv.dir, key+".json")
}

func (kv *FileKV) Get(key string) (string, bool, error) {
	data, err := os.ReadFile(kv.path(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session key %s: %w", key, err)
	}
	return string(data), true, nil
}

func (kv *FileKV) Set(key, value string) error {
	if err := os.WriteFile(kv.path(key), []byte(value), 0o644); err != nil {
		return fmt.Errorf("failed to write session key %s: %w", key, err)
	}
	return nil
}

func (kv *FileKV) Remove(key string) error {
	if err := os.Remove(kv.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session key %s: %w", key, err)
	}
	return nil
}

// record is the serialized session shape. Assessment timestamps ride along
// as RFC 3339 text and come back as time.Time values.
type record struct {
	History   []models.HistoryEntry `json:"history"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// Store persists and rehydrates session state under the fixed key.
type Store struct {
	kv     KV
	logger *zap.Logger
}

func NewStore(kv KV, logger *zap.Logger) *Store {
	return &Store{kv: kv, logger: logger}
}

// Save writes the durable part of the state (the history).
func (s *Store) Save(state State) error {
	data, err := json.Marshal(record{
		History:   state.History,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return s.kv.Set(SessionKey, string(data))
}

// Load reads the persisted history back. Absent or unparsable data means
// "no history", never an error; entries whose assessment fails the validity
// check are dropped.
func (s *Store) Load() []models.HistoryEntry {
	raw, ok, err := s.kv.Get(SessionKey)
	if err != nil {
		s.logger.Warn("failed to read persisted session, starting fresh", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		s.logger.Warn("persisted session is unparsable, starting fresh", zap.Error(err))
		return nil
	}

	entries := make([]models.HistoryEntry, 0, len(rec.History))
	for _, entry := range rec.History {
		assessment := entry.Assessment
		if !models.ValidAssessment(&assessment) {
			s.logger.Warn("dropping invalid persisted assessment",
				zap.String("id", assessment.ID))
			continue
		}
		entries = append(entries, entry)
	}

	if len(entries) > MaxHistoryEntries {
		entries = entries[:MaxHistoryEntries]
	}
	return entries
}

// Clear removes the persisted record entirely.
func (s *Store) Clear() error {
	return s.kv.Remove(SessionKey)
}
