package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Rating is a single individual's score on one rating dimension.
type Rating struct {
	Name  string
	Value int
}

// RatingMap maps an individual's name to an integer rating while keeping the
// order in which names were first inserted. It encodes as a JSON object.
//
// Decoding is lenient: numbers and numeric strings are both accepted, and a
// value that is not an integral number is dropped so it reads as missing.
type RatingMap []Rating

// Get returns the rating stored for name.
func (m RatingMap) Get(name string) (int, bool) {
	for _, r := range m {
		if r.Name == name {
			return r.Value, true
		}
	}
	return 0, false
}

// Set returns a copy of m with name rated v. An existing entry keeps its position.
func (m RatingMap) Set(name string, v int) RatingMap {
	out := m.Clone()
	for i := range out {
		if out[i].Name == name {
			out[i].Value = v
			return out
		}
	}
	return append(out, Rating{Name: name, Value: v})
}

// Delete returns a copy of m without name.
func (m RatingMap) Delete(name string) RatingMap {
	out := make(RatingMap, 0, len(m))
	for _, r := range m {
		if r.Name != name {
			out = append(out, r)
		}
	}
	return out
}

// Names lists the keys in insertion order.
func (m RatingMap) Names() []string {
	names := make([]string, len(m))
	for i, r := range m {
		names[i] = r.Name
	}
	return names
}

func (m RatingMap) Clone() RatingMap {
	if m == nil {
		return nil
	}
	out := make(RatingMap, len(m))
	copy(out, m)
	return out
}

func (m RatingMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(r.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(r.Value))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *RatingMap) UnmarshalJSON(data []byte) error {
	out := RatingMap{}
	err := decodeObject(data, func(key string, raw json.RawMessage) {
		v, ok := ParseRating(raw)
		if !ok {
			out = out.Delete(key)
			return
		}
		out = out.Set(key, v)
	})
	if err != nil {
		return err
	}
	*m = out
	return nil
}

// ParseRating normalizes a raw JSON rating. 4, 4.0 and "4" are equivalent;
// anything that is not an integral number reports false.
func ParseRating(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}

	var f float64
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		if err := json.Unmarshal(raw, &f); err != nil {
			return 0, false
		}
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// TextEntry is one key/answer pair of a TextMap.
type TextEntry struct {
	Key   string
	Value string
}

// TextMap is an insertion-ordered string to string mapping, used for
// per-individual feedback text and answers to custom questions.
// Non-string values are dropped when decoding.
type TextMap []TextEntry

func (m TextMap) Get(key string) (string, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Set returns a copy of m with key mapped to v.
func (m TextMap) Set(key, v string) TextMap {
	out := m.Clone()
	for i := range out {
		if out[i].Key == key {
			out[i].Value = v
			return out
		}
	}
	return append(out, TextEntry{Key: key, Value: v})
}

func (m TextMap) Delete(key string) TextMap {
	out := make(TextMap, 0, len(m))
	for _, e := range m {
		if e.Key != key {
			out = append(out, e)
		}
	}
	return out
}

func (m TextMap) Keys() []string {
	keys := make([]string, len(m))
	for i, e := range m {
		keys[i] = e.Key
	}
	return keys
}

func (m TextMap) Clone() TextMap {
	if m == nil {
		return nil
	}
	out := make(TextMap, len(m))
	copy(out, m)
	return out
}

func (m TextMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *TextMap) UnmarshalJSON(data []byte) error {
	out := TextMap{}
	err := decodeObject(data, func(key string, raw json.RawMessage) {
		var s string
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) || json.Unmarshal(raw, &s) != nil {
			out = out.Delete(key)
			return
		}
		out = out.Set(key, s)
	})
	if err != nil {
		return err
	}
	*m = out
	return nil
}

// decodeObject walks a JSON object in document order. null decodes as empty.
func decodeObject(data []byte, fn func(key string, raw json.RawMessage)) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		fn(key, raw)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
