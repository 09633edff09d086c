package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Recognized settings keys.
const (
	KeyUser1Name = "user1_name"
	KeyUser2Name = "user2_name"
	KeyAccessPIN = "access_pin"
)

const (
	DefaultUser1Name = "Pessoa 1"
	DefaultUser2Name = "Pessoa 2"
	SharedName       = "Ambos"
)

// Settings is a key/value snapshot. Unknown keys are kept as-is.
type Settings map[string]string

// NameResolver turns a role into the label shown to the user.
type NameResolver interface {
	ResolveName(r Role) string
}

// UnmarshalJSON tolerates non-string values; a PIN stored in a spreadsheet
// cell comes back as a number.
func (s *Settings) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*s = Settings{}
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	out := make(Settings, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = val
		case json.Number:
			out[k] = val.String()
		case bool:
			out[k] = fmt.Sprint(val)
		default:
			enc, err := json.Marshal(val)
			if err != nil {
				return fmt.Errorf("settings key %q: %w", k, err)
			}
			out[k] = string(enc)
		}
	}
	*s = out
	return nil
}

// Clone returns an independent copy.
func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// ResolveName maps a role to its display label. Empty configured names fall
// back to the defaults; unknown roles are returned unchanged.
func (s Settings) ResolveName(r Role) string {
	switch r {
	case RoleUser1:
		if v := s[KeyUser1Name]; v != "" {
			return v
		}
		return DefaultUser1Name
	case RoleUser2:
		if v := s[KeyUser2Name]; v != "" {
			return v
		}
		return DefaultUser2Name
	case RoleShared:
		return SharedName
	default:
		return string(r)
	}
}

// PIN returns the stored access PIN and whether one is set.
func (s Settings) PIN() (string, bool) {
	v := s[KeyAccessPIN]
	return v, v != ""
}
