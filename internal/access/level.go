// AngelaMos | 2026
// level.go

package access

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// Level is an ordered entitlement tier. Higher values see more of the
// catalog.
type Level int16

const (
	LevelFree Level = iota
	LevelBasic
	LevelAdvanced
	LevelPremium
)

const DefaultLevel = LevelFree

var labels = map[Level]string{
	LevelFree:     "Free",
	LevelBasic:    "Basic",
	LevelAdvanced: "Advanced",
	LevelPremium:  "Premium",
}

func Levels() []Level {
	return []Level{LevelFree, LevelBasic, LevelAdvanced, LevelPremium}
}

func (l Level) Valid() bool {
	_, ok := labels[l]
	return ok
}

func (l Level) Label() string {
	if label, ok := labels[l]; ok {
		return label
	}
	return "Level " + strconv.Itoa(int(l))
}

func (l Level) String() string {
	return strconv.Itoa(int(l))
}

// ParseLevel accepts the numeric form ("2") or a label ("advanced").
func ParseLevel(s string) (Level, error) {
	s = strings.TrimSpace(s)

	if n, err := strconv.ParseInt(s, 10, 16); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("parse level %q: negative", s)
		}
		return Level(n), nil
	}

	for _, lvl := range Levels() {
		if strings.EqualFold(labels[lvl], s) {
			return lvl, nil
		}
	}

	return 0, fmt.Errorf("parse level %q: unknown tier", s)
}

func (l *Level) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*l = Level(v)
	case int32:
		*l = Level(v)
	case int16:
		*l = Level(v)
	case []byte:
		parsed, err := ParseLevel(string(v))
		if err != nil {
			return err
		}
		*l = parsed
	case string:
		parsed, err := ParseLevel(v)
		if err != nil {
			return err
		}
		*l = parsed
	case nil:
		*l = DefaultLevel
	default:
		return fmt.Errorf("scan level: unsupported type %T", src)
	}
	return nil
}

func (l Level) Value() (driver.Value, error) {
	return int64(l), nil
}
