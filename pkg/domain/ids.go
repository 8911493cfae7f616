package domain

import (
	"fmt"
	"strconv"
)

// FarmID identifies a registered farm. IDs are issued by the registry as a
// monotonically increasing sequence starting at 1; zero is never issued and
// serves as the absent value.
type FarmID uint64

func (id FarmID) IsZero() bool {
	return id == 0
}

func (id FarmID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseFarmID parses a decimal farm id from transport input.
func ParseFarmID(s string) (FarmID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid farm id %q: %w", s, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("invalid farm id %q: zero is never issued", s)
	}
	return FarmID(n), nil
}
