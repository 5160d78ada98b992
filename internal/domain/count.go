package domain

import (
	"encoding/json"
	"strconv"
)

// Count is a non-negative figure that may be unknown. The zero value is
// Unknown, which is distinct from a reported zero (Known(0)).
type Count struct {
	n     int
	known bool
}

// Unknown is a Count with no reported value.
var Unknown = Count{}

// Known returns a Count carrying n.
func Known(n int) Count {
	return Count{n: n, known: true}
}

// IsKnown reports whether the count carries a value.
func (c Count) IsKnown() bool { return c.known }

// Value returns the count and whether it is known.
func (c Count) Value() (int, bool) { return c.n, c.known }

// Or returns the count if known, otherwise def.
func (c Count) Or(def int) int {
	if c.known {
		return c.n
	}
	return def
}

// Ptr returns nil for an unknown count, so projections can emit JSON null.
func (c Count) Ptr() *int {
	if !c.known {
		return nil
	}
	n := c.n
	return &n
}

// Prefer returns c when known, otherwise fallback.
func (c Count) Prefer(fallback Count) Count {
	if c.known {
		return c
	}
	return fallback
}

func (c Count) String() string {
	if !c.known {
		return "unknown"
	}
	return strconv.Itoa(c.n)
}

// MarshalJSON encodes an unknown count as null.
func (c Count) MarshalJSON() ([]byte, error) {
	if !c.known {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(c.n)), nil
}

// UnmarshalJSON decodes null as Unknown.
func (c *Count) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Unknown
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = Known(n)
	return nil
}
