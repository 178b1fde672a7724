package mock

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Store is an in-memory hierarchical JSON tree. The zero value is not usable;
// call New.
type Store struct {
	mu   sync.RWMutex
	root any
	push pushGenerator
	now  func() time.Time

	bearer string
}

// New returns an empty Store.
func New() *Store {
	return &Store{now: time.Now}
}

// RequireBearer makes the handler reject requests whose Authorization header
// does not carry the given bearer token.
func (s *Store) RequireBearer(token string) {
	s.mu.Lock()
	s.bearer = token
	s.mu.Unlock()
}

// Seed replaces the tree with the decoded JSON document.
func (s *Store) Seed(data []byte) error {
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("mock: decode seed: %w", err)
	}
	s.mu.Lock()
	s.root = normalize(tree)
	s.mu.Unlock()
	return nil
}

// SeedFile loads a JSON seed document from disk.
func (s *Store) SeedFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("mock: read seed file: %w", err)
	}
	return s.Seed(data)
}

// Snapshot renders the whole tree as JSON.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(s.root)
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func (s *Store) get(segs []string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getIn(s.root, segs)
}

func (s *Store) set(segs []string, value any) {
	s.mu.Lock()
	s.root = setIn(s.root, segs, normalize(value))
	s.mu.Unlock()
}

// merge applies the top-level fields of value to the node; a null field
// deletes that child.
func (s *Store) merge(segs []string, fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, v := range fields {
		s.root = setIn(s.root, append(append([]string(nil), segs...), key), normalize(v))
	}
}

func (s *Store) pushChild(segs []string, value any) string {
	key := s.push.next(s.now())
	s.set(append(append([]string(nil), segs...), key), value)
	return key
}

// etag returns the conditional-write tag for the node: a content hash over
// its canonical JSON rendering.
func (s *Store) etag(segs []string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return etagOf(getIn(s.root, segs))
}

// setIfMatch writes value only when the node's current tag equals match,
// holding the lock across the compare and the write. It reports the tag that
// was current at decision time and whether the write applied.
func (s *Store) setIfMatch(segs []string, value any, match string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := etagOf(getIn(s.root, segs))
	if current != match {
		return current, false
	}
	s.root = setIn(s.root, segs, normalize(value))
	return current, true
}

func etagOf(node any) string {
	data, err := json.Marshal(node)
	if err != nil {
		data = []byte("null")
	}
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

func getIn(node any, segs []string) any {
	for _, seg := range segs {
		m, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node = m[seg]
	}
	return node
}

func setIn(node any, segs []string, value any) any {
	if len(segs) == 0 {
		return value
	}
	m, ok := node.(map[string]any)
	if !ok {
		m = make(map[string]any)
	}
	child := setIn(m[segs[0]], segs[1:], value)
	if child == nil {
		delete(m, segs[0])
	} else {
		m[segs[0]] = child
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// normalize drops null members and empty objects, the way the store treats
// writes: null is deletion and empty nodes do not exist.
func normalize(value any) any {
	m, ok := value.(map[string]any)
	if !ok {
		return value
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nv := normalize(v); nv != nil {
			out[k] = nv
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
