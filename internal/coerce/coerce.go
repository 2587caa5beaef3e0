// Package coerce provides primitive string-to-scalar parsing shared by the
// schema resolver (default values) and the binder (raw source values).
package coerce

import (
	"fmt"
	"strings"
	"time"
)

// Bool parses the wire boolean tokens: "1" and "true" (any case) are true,
// "0" and "false" (any case) are false. Anything else is an error; the
// shorthand tokens accepted by strconv.ParseBool are deliberately rejected.
func Bool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean token %q", s)
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.DateTime,
	"2006-01-02",
}

// Time parses a timestamp trying common layouts in order.
func Time(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
