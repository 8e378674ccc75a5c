package interaction

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Topics is an ordered list of discussion topics.
//
// It decodes from either a JSON array or a single comma-separated string,
// so "A, B, C" and ["A","B","C"] produce the same value.
type Topics []string

// SplitTopics splits a comma-separated string, trimming entries and dropping empty ones.
func SplitTopics(raw string) Topics {
	parts := lo.Map(strings.Split(raw, ","), func(p string, _ int) string {
		return strings.TrimSpace(p)
	})
	return Topics(lo.Compact(parts))
}

// NormalizeTopics trims every entry and drops blanks, preserving order.
func NormalizeTopics(in []string) Topics {
	if in == nil {
		return nil
	}
	out := lo.Map(in, func(p string, _ int) string {
		return strings.TrimSpace(p)
	})
	return Topics(lo.Compact(out))
}

func (t *Topics) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode topics string: %w", err)
		}
		*t = SplitTopics(s)
		return nil
	case '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("decode topics list: %w", err)
		}
		*t = NormalizeTopics(list)
		return nil
	default:
		return fmt.Errorf("%w: discussionTopics must be a list or a comma-separated string", ErrValidation)
	}
}

// Value stores topics as a JSON array; nil topics are stored as NULL.
func (t Topics) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, fmt.Errorf("encode topics: %w", err)
	}
	return string(b), nil
}

func (t *Topics) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case []byte:
		return t.UnmarshalJSON(v)
	case string:
		return t.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("scan topics: unsupported type %T", src)
	}
}
