package ingest

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"totoforecast/internal/features/parse"
)

// Scalar is a JSON field the API publishes inconsistently as a string, a
// number, a boolean or null. It keeps the literal text; null becomes empty.
type Scalar string

// UnmarshalJSON implements json.Unmarshaler
func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}

	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Scalar(str)
		return nil
	}

	// numbers and booleans keep their literal form
	*s = Scalar(data)
	return nil
}

// MarshalJSON writes the value back as a string
func (s Scalar) MarshalJSON() ([]byte, error) {
	if s == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(s))
}

// String returns the trimmed text
func (s Scalar) String() string {
	return strings.TrimSpace(string(s))
}

// Int returns the leading integer, 0 when there is none
func (s Scalar) Int() int {
	v := s.String()
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f)
	}
	return parse.Int(v)
}

// Bool is true only for a literal true
func (s Scalar) Bool() bool {
	return strings.EqualFold(s.String(), "true")
}

// first returns the first non-empty value
func first(values ...Scalar) Scalar {
	for _, v := range values {
		if v.String() != "" {
			return v
		}
	}
	return ""
}

func firstString(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
