package mock

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	etagRequestHeader = "X-ArborDB-ETag"
	documentSuffix    = ".json"
)

// Handler exposes the store over the ArborDB REST surface.
func (s *Store) Handler() http.Handler {
	return http.HandlerFunc(s.serve)
}

func (s *Store) serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if !strings.HasSuffix(r.URL.Path, documentSuffix) {
		writeError(w, http.StatusNotFound, "append .json to the resource path")
		return
	}
	segs := splitPath(strings.TrimSuffix(r.URL.Path, documentSuffix))

	switch r.Method {
	case http.MethodGet:
		s.handleGet(w, r, segs)
	case http.MethodPut:
		s.handlePut(w, r, segs)
	case http.MethodPatch:
		s.handlePatch(w, r, segs)
	case http.MethodPost:
		s.handlePost(w, r, segs)
	case http.MethodDelete:
		s.set(segs, nil)
		io.WriteString(w, "null")
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Store) authorized(r *http.Request) bool {
	s.mu.RLock()
	bearer := s.bearer
	s.mu.RUnlock()
	if bearer == "" {
		return true
	}
	return r.Header.Get("Authorization") == "Bearer "+bearer
}

func (s *Store) handleGet(w http.ResponseWriter, r *http.Request, segs []string) {
	qp, err := parseQueryParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	body, err := evalQuery(s.get(segs), qp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if r.Header.Get(etagRequestHeader) == "true" {
		w.Header().Set("ETag", s.etag(segs))
	}
	w.Write(body)
}

func (s *Store) handlePut(w http.ResponseWriter, r *http.Request, segs []string) {
	value, ok := decodeBody(w, r)
	if !ok {
		return
	}
	if match := r.Header.Get("if-match"); match != "" {
		if current, ok := s.setIfMatch(segs, value, match); !ok {
			w.Header().Set("ETag", current)
			writeError(w, http.StatusPreconditionFailed, "etag mismatch")
			return
		}
		writeNode(w, s.get(segs))
		return
	}
	s.set(segs, value)
	writeNode(w, s.get(segs))
}

func (s *Store) handlePatch(w http.ResponseWriter, r *http.Request, segs []string) {
	value, ok := decodeBody(w, r)
	if !ok {
		return
	}
	fields, ok := value.(map[string]any)
	if !ok {
		writeError(w, http.StatusBadRequest, "PATCH body must be a JSON object")
		return
	}
	if node := s.get(segs); node != nil {
		if _, isObject := node.(map[string]any); !isObject {
			writeError(w, http.StatusBadRequest, "PATCH target is not an object")
			return
		}
	}
	s.merge(segs, fields)
	writeNode(w, s.get(segs))
}

func (s *Store) handlePost(w http.ResponseWriter, r *http.Request, segs []string) {
	value, ok := decodeBody(w, r)
	if !ok {
		return
	}
	if value == nil {
		writeError(w, http.StatusBadRequest, "POST body must not be null")
		return
	}
	key := s.pushChild(segs, value)
	fmt.Fprintf(w, `{"name":%q}`, key)
}

func decodeBody(w http.ResponseWriter, r *http.Request) (any, bool) {
	defer r.Body.Close()
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read request body")
		return nil, false
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		writeError(w, http.StatusBadRequest, "request body is not valid JSON")
		return nil, false
	}
	return value, true
}

func writeNode(w http.ResponseWriter, node any) {
	data, err := json.Marshal(node)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	payload, _ := json.Marshal(map[string]string{"error": message})
	w.Write(payload)
}
