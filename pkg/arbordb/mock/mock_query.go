package mock

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

const orderByKey = "$key"

type queryParams struct {
	orderBy      string
	hasOrder     bool
	shallow      bool
	limitToFirst int
	limitToLast  int
	startAt      any
	endAt        any
	startAfter   any
	endBefore    any
	equalTo      any
	hasStartAt   bool
	hasEndAt     bool
	hasStartAft  bool
	hasEndBef    bool
	hasEqualTo   bool
}

// parseQueryParams decodes the querystring. Every value arrives individually
// JSON-encoded, so "active" is the quoted literal %22active%22.
func parseQueryParams(values url.Values) (queryParams, error) {
	var qp queryParams

	if v := values.Get("shallow"); v != "" {
		qp.shallow = v == "true"
	}
	if v := values.Get("orderBy"); v != "" {
		var field string
		if err := json.Unmarshal([]byte(v), &field); err != nil {
			return qp, fmt.Errorf("orderBy must be a JSON-encoded string: %q", v)
		}
		qp.orderBy = field
		qp.hasOrder = true
	}
	for _, limit := range []struct {
		name string
		dst  *int
	}{
		{"limitToFirst", &qp.limitToFirst},
		{"limitToLast", &qp.limitToLast},
	} {
		if v := values.Get(limit.name); v != "" {
			n := 0
			if _, err := fmt.Sscanf(v, "%d", &n); err != nil || n <= 0 {
				return qp, fmt.Errorf("%s must be a positive integer: %q", limit.name, v)
			}
			*limit.dst = n
		}
	}
	for _, bound := range []struct {
		name string
		dst  *any
		set  *bool
	}{
		{"startAt", &qp.startAt, &qp.hasStartAt},
		{"endAt", &qp.endAt, &qp.hasEndAt},
		{"startAfter", &qp.startAfter, &qp.hasStartAft},
		{"endBefore", &qp.endBefore, &qp.hasEndBef},
		{"equalTo", &qp.equalTo, &qp.hasEqualTo},
	} {
		if v := values.Get(bound.name); v != "" {
			var decoded any
			if err := json.Unmarshal([]byte(v), &decoded); err != nil {
				return qp, fmt.Errorf("%s must be JSON-encoded: %q", bound.name, v)
			}
			*bound.dst = decoded
			*bound.set = true
		}
	}

	if !qp.hasOrder && (qp.limitToFirst > 0 || qp.limitToLast > 0 ||
		qp.hasStartAt || qp.hasEndAt || qp.hasStartAft || qp.hasEndBef || qp.hasEqualTo) {
		return qp, fmt.Errorf("filtering requires orderBy")
	}
	return qp, nil
}

type queryEntry struct {
	key    string
	value  any
	target any
}

// evalQuery renders the node through the query. Ordered results are emitted
// as a JSON object whose member order is ascending over the orderBy target,
// matching the live store: limitToLast windows also come back ascending.
func evalQuery(node any, qp queryParams) ([]byte, error) {
	if qp.shallow {
		return renderShallow(node)
	}
	if !qp.hasOrder {
		return json.Marshal(node)
	}

	children, ok := node.(map[string]any)
	if !ok {
		return []byte("null"), nil
	}

	entries := make([]queryEntry, 0, len(children))
	for key, value := range children {
		entries = append(entries, queryEntry{key: key, value: value, target: orderTarget(qp.orderBy, key, value)})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if c := compareValues(entries[i].target, entries[j].target); c != 0 {
			return c < 0
		}
		return entries[i].key < entries[j].key
	})

	entries = applyBounds(entries, qp)
	if qp.limitToFirst > 0 && len(entries) > qp.limitToFirst {
		entries = entries[:qp.limitToFirst]
	}
	if qp.limitToLast > 0 && len(entries) > qp.limitToLast {
		entries = entries[len(entries)-qp.limitToLast:]
	}

	if len(entries) == 0 {
		return []byte("null"), nil
	}
	return renderOrdered(entries)
}

func orderTarget(orderBy, key string, value any) any {
	if orderBy == orderByKey {
		return key
	}
	child, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	return getIn(child, strings.Split(orderBy, "/"))
}

func applyBounds(entries []queryEntry, qp queryParams) []queryEntry {
	keep := entries[:0]
	for _, e := range entries {
		if qp.hasEqualTo && compareValues(e.target, qp.equalTo) != 0 {
			continue
		}
		if qp.hasStartAt && compareValues(e.target, qp.startAt) < 0 {
			continue
		}
		if qp.hasStartAft && compareValues(e.target, qp.startAfter) <= 0 {
			continue
		}
		if qp.hasEndAt && compareValues(e.target, qp.endAt) > 0 {
			continue
		}
		if qp.hasEndBef && compareValues(e.target, qp.endBefore) >= 0 {
			continue
		}
		keep = append(keep, e)
	}
	return keep
}

// compareValues orders JSON values the way the store does: null, then
// booleans (false before true), then numbers, then strings, then objects.
func compareValues(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return ra - rb
	}
	switch va := a.(type) {
	case bool:
		return 0 // same rank means same bool value
	case float64:
		vb := b.(float64)
		switch {
		case va < vb:
			return -1
		case va > vb:
			return 1
		}
		return 0
	case string:
		return strings.Compare(va, b.(string))
	default:
		return 0
	}
}

func typeRank(v any) int {
	switch t := v.(type) {
	case nil:
		return 0
	case bool:
		if !t {
			return 1
		}
		return 2
	case float64:
		return 3
	case string:
		return 4
	default:
		return 5
	}
}

func renderShallow(node any) ([]byte, error) {
	children, ok := node.(map[string]any)
	if !ok {
		return json.Marshal(node)
	}
	placeholders := make(map[string]bool, len(children))
	for key := range children {
		placeholders[key] = true
	}
	return json.Marshal(placeholders)
}

// renderOrdered writes a JSON object preserving entry order; encoding/json
// would re-sort map keys and lose the query order.
func renderOrdered(entries []queryEntry) ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e.value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
