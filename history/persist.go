package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoSaveDir is returned by persistence calls on a store built without
// WithSaveDir.
var ErrNoSaveDir = errors.New("history: no save directory configured")

// Save writes the session's conversation as JSON under the save directory.
func (s *Store) Save(sessionID string) error {
	if s.saveDir == "" {
		return ErrNoSaveDir
	}
	conv, err := s.Snapshot(sessionID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.saveDir, 0o755); err != nil {
		return fmt.Errorf("create save dir: %w", err)
	}
	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}
	return os.WriteFile(s.path(sessionID), data, 0o644)
}

// Load reads a previously saved conversation back into the store,
// replacing any in-memory state for that session.
func (s *Store) Load(sessionID string) (Conversation, error) {
	if s.saveDir == "" {
		return Conversation{}, ErrNoSaveDir
	}
	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Conversation{}, ErrSessionNotFound
		}
		return Conversation{}, fmt.Errorf("read conversation: %w", err)
	}
	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return Conversation{}, fmt.Errorf("decode conversation: %w", err)
	}
	s.mu.Lock()
	s.sessions[sessionID] = &session{conv: conv, live: -1}
	s.mu.Unlock()
	return conv, nil
}

// Index lists the session ids with a saved conversation file.
func (s *Store) Index() ([]string, error) {
	if s.saveDir == "" {
		return nil, ErrNoSaveDir
	}
	entries, err := os.ReadDir(s.saveDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read save dir: %w", err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}

// Export renders the session's conversation as a markdown transcript.
func (s *Store) Export(sessionID string) (string, error) {
	conv, err := s.Snapshot(sessionID)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# Session %s\n", conv.SessionID)
	for _, r := range conv.Records {
		fmt.Fprintf(&b, "\n## %s\n", r.Role)
		if r.Content != "" {
			b.WriteString("\n" + r.Content + "\n")
		}
		for _, step := range r.Steps {
			fmt.Fprintf(&b, "\n- %s %s\n", step.Status.Marker(), step.Label)
		}
	}
	return b.String(), nil
}

func (s *Store) path(sessionID string) string {
	return filepath.Join(s.saveDir, sessionID+".json")
}
