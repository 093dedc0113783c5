package conversations

import (
	"bytes"
	"encoding/json"
	"strings"
)

// accepts JSON booleans and the strings "1", "true", "yes", "y", "on"
// in any case; everything else is false
func parseBool(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String() == "1"
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	}

	return false
}
