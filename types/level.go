package types

import "fmt"

// Level is the privilege a call requires
type Level uint8

// levels are ordered: anything satisfying a higher level also satisfies lower ones
const (
	Public Level = iota
	Admin
	Owner
)

var levelNames = map[Level]string{
	Public: "public",
	Admin:  "admin",
	Owner:  "owner",
}

func (l Level) String() string {
	if n, ok := levelNames[l]; ok {
		return n
	}
	return fmt.Sprintf("level(%d)", uint8(l))
}

// Valid tells if l is one of the known levels
func (l Level) Valid() bool {
	_, ok := levelNames[l]
	return ok
}

// ParseLevel parses a level from its name
func ParseLevel(s string) (Level, error) {
	for l, n := range levelNames {
		if n == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}
