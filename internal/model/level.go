package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Level is a CEFR proficiency tier. The zero value is not a valid level.
type Level int

const (
	A1 Level = iota + 1
	A2
	B1
	B2
	C1
	C2
)

var levelNames = [...]string{"", "A1", "A2", "B1", "B2", "C1", "C2"}

var levelDescriptors = map[Level]string{
	A1: "beginner (A1) - very simple sentences and common words",
	A2: "elementary (A2) - simple sentences and everyday vocabulary",
	B1: "intermediate (B1) - clear standard language",
	B2: "upper-intermediate (B2) - detailed texts on various subjects",
	C1: "advanced (C1) - complex texts with sophisticated vocabulary",
	C2: "proficiency (C2) - nuanced, idiomatic language",
}

// ParseLevel parses a level name case-insensitively ("b1" → B1).
func ParseLevel(s string) (Level, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for i := A1; i <= C2; i++ {
		if levelNames[i] == up {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown level %q", s)
}

// Valid reports whether l is one of the six defined tiers.
func (l Level) Valid() bool {
	return l >= A1 && l <= C2
}

func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// Descriptor is the human description embedded in generation prompts.
func (l Level) Descriptor() string {
	return levelDescriptors[l]
}

// Levels returns all tiers in ascending order.
func Levels() []Level {
	return []Level{A1, A2, B1, B2, C1, C2}
}

// Value stores the level by name.
func (l Level) Value() (driver.Value, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid level %d", int(l))
	}
	return l.String(), nil
}

func (l *Level) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("scan level: unsupported type %T", src)
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
