package submissions

import (
	"bytes"
	"encoding/json"
	"strings"
)

// MediaRefs is the normalized, ordered list of uploaded media URLs.
// An empty list means "no media yet".
type MediaRefs []string

// DecodeMediaRefs normalizes whatever the store hands back for imageUrls:
// a JSON array, a JSON string holding a JSON array, a bare URL (quoted or
// not), or nothing at all. It never fails; unreadable input yields an
// empty list.
func DecodeMediaRefs(raw []byte) MediaRefs {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return MediaRefs{}
	}

	switch raw[0] {
	case '[':
		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			return MediaRefs{}
		}
		return cleanRefs(list)

	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return MediaRefs{}
		}
		return decodeMediaString(s)
	}

	return decodeMediaString(string(raw))
}

func decodeMediaString(s string) MediaRefs {
	s = strings.TrimSpace(s)
	if s == "" {
		return MediaRefs{}
	}
	if strings.HasPrefix(s, "[") {
		var list []string
		if err := json.Unmarshal([]byte(s), &list); err == nil {
			return cleanRefs(list)
		}
		return MediaRefs{}
	}
	return MediaRefs{s}
}

func cleanRefs(list []string) MediaRefs {
	out := make(MediaRefs, 0, len(list))
	for _, ref := range list {
		ref = strings.TrimSpace(ref)
		if ref != "" {
			out = append(out, ref)
		}
	}
	return out
}

func (m MediaRefs) Empty() bool { return len(m) == 0 }

func (m MediaRefs) List() []string {
	out := make([]string, len(m))
	copy(out, m)
	return out
}

func (m *MediaRefs) UnmarshalJSON(data []byte) error {
	*m = DecodeMediaRefs(data)
	return nil
}

func (m MediaRefs) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(m))
}
