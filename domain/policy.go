package domain

import (
	"fmt"
	"strings"
)

// DeletePolicy decides what happens to recorded rounds when their course is
// deleted.
type DeletePolicy string

const (
	// DeleteRestrict refuses to delete a course that rounds still reference.
	DeleteRestrict DeletePolicy = "restrict"
	// DeleteCascade deletes the referencing rounds together with the course.
	DeleteCascade DeletePolicy = "cascade"
)

// ParseDeletePolicy maps a config value to a policy. Empty means restrict.
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch DeletePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", DeleteRestrict:
		return DeleteRestrict, nil
	case DeleteCascade:
		return DeleteCascade, nil
	default:
		return "", fmt.Errorf("unknown course delete policy %q", s)
	}
}
