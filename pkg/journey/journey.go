package journey

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ScreenID is an optional stable screen identifier.
//
// The backend contract allows screenId to be either a JSON string or a JSON
// number, so ScreenID normalizes both to a string. The empty string means
// the identifier is absent. Numeric identifiers keep their decimal form
// ("4", not "4.0") for integral values.
type ScreenID string

// IsZero reports whether the identifier is absent.
func (id ScreenID) IsZero() bool { return id == "" }

// UnmarshalJSON accepts a string, a number, or null.
func (id *ScreenID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ScreenID(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("screenId must be a string or number: %w", err)
	}
	if n == float64(int64(n)) {
		*id = ScreenID(strconv.FormatInt(int64(n), 10))
	} else {
		*id = ScreenID(strconv.FormatFloat(n, 'f', -1, 64))
	}
	return nil
}

// MarshalJSON emits the identifier as a string, or null when absent.
func (id ScreenID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(id))
}

// Step is one screen visit within a journey.
//
// A step's identity for layout purposes is the pair (ScreenName, ScreenID),
// not the name alone. The zero value is a valid, degenerate step whose key
// is the empty string.
type Step struct {
	ScreenName string   `json:"screenName" bson:"screen_name"`
	ScreenID   ScreenID `json:"screenId,omitempty" bson:"screen_id,omitempty"`
}

// Key returns the canonical screen key for the step.
//
// Key is pure and total: a missing name or identifier defaults to the empty
// string, still producing a valid (if degenerate) key. The key is the sole
// node identity used throughout the flow engine, so it must be stable and
// collision-free for the lifetime of one computation:
//
//	Step{ScreenName: "Home"}.Key()                  // "Home"
//	Step{ScreenName: "Home", ScreenID: "4"}.Key()   // "Home_4"
func (s Step) Key() string {
	if s.ScreenID.IsZero() {
		return s.ScreenName
	}
	return s.ScreenName + "_" + string(s.ScreenID)
}

// Journey is one user's ordered traversal of screens during a test run.
//
// Journeys are immutable once received: the flow engine reads them and never
// mutates steps. An empty or missing Steps slice is valid and contributes
// nothing to a layout.
type Journey struct {
	Name  string `json:"name" bson:"name"`
	Steps []Step `json:"steps" bson:"steps"`
}

// Keys returns the screen key of every step, in visit order.
func (j Journey) Keys() []string {
	keys := make([]string, len(j.Steps))
	for i, s := range j.Steps {
		keys[i] = s.Key()
	}
	return keys
}

// Validate checks a journey against the input contract.
// Step entries may be degenerate (empty name and id), but the journey name
// must be printable and of sane length so it can serve as a chart label.
func (j Journey) Validate() error {
	if len(j.Name) > 256 {
		return fmt.Errorf("journey name too long (max 256 characters)")
	}
	if strings.ContainsRune(j.Name, '\x00') {
		return fmt.Errorf("journey name contains null byte")
	}
	return nil
}
