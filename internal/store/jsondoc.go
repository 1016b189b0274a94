package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// jsonSnapshot is the Snapshot of the backends that keep documents as JSON.
type jsonSnapshot struct {
	id     string
	data   []byte
	fields map[string]any
}

func newJSONSnapshot(id string, data []byte) (*jsonSnapshot, error) {
	s := &jsonSnapshot{id: id, data: data}
	if err := json.Unmarshal(data, &s.fields); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	return s, nil
}

func (s *jsonSnapshot) ID() string { return s.id }

func (s *jsonSnapshot) DataTo(dst any) error {
	return json.Unmarshal(s.data, dst)
}

// encodeJSON marshals doc to an object, dropping the "id" key so the
// document ID only lives outside the payload.
func encodeJSON(doc any) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("document must encode to a JSON object: %w", err)
	}
	delete(m, "id")

	return json.Marshal(m)
}

func matches(s *jsonSnapshot, where []Filter) (bool, error) {
	for _, f := range where {
		want, err := json.Marshal(f.Value)
		if err != nil {
			return false, fmt.Errorf("encode filter %s: %w", f.Field, err)
		}
		got, err := json.Marshal(s.fields[f.Field])
		if err != nil {
			return false, err
		}
		if !bytes.Equal(want, got) {
			return false, nil
		}
	}
	return true, nil
}

// applyQuery sorts and truncates docs in place the way Firestore would.
func applyQuery(docs []*jsonSnapshot, q Query) []*jsonSnapshot {
	if q.OrderBy != "" {
		sort.SliceStable(docs, func(i, j int) bool {
			c := compareValues(docs[i].fields[q.OrderBy], docs[j].fields[q.OrderBy])
			if q.Dir == Desc {
				return c > 0
			}
			return c < 0
		})
	}
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs
}

func toSnapshots(docs []*jsonSnapshot) []Snapshot {
	out := make([]Snapshot, len(docs))
	for i, d := range docs {
		out[i] = d
	}
	return out
}

// compareValues orders decoded JSON values: nil first, then booleans,
// numbers, and strings. Two RFC 3339 strings compare as instants.
func compareValues(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return ra - rb
	}

	switch av := a.(type) {
	case nil:
		return 0
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case float64:
		bv := b.(float64)
		switch {
		case av < bv || (math.IsNaN(av) && !math.IsNaN(bv)):
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case string:
		bv := b.(string)
		ta, errA := time.Parse(time.RFC3339Nano, av)
		tb, errB := time.Parse(time.RFC3339Nano, bv)
		if errA == nil && errB == nil {
			return ta.Compare(tb)
		}
		return strings.Compare(av, bv)
	default:
		x, _ := json.Marshal(a)
		y, _ := json.Marshal(b)
		return bytes.Compare(x, y)
	}
}

func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	default:
		return 4
	}
}

func encodeFilterValue(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
