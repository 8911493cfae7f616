package domain

import (
	"testing"
)

// FuzzParseFarmID checks that arbitrary URL input never panics and that
// every accepted id round-trips through String.
func FuzzParseFarmID(f *testing.F) {
	f.Add("")
	f.Add("1")
	f.Add("0")
	f.Add("-1")
	f.Add("18446744073709551615")
	f.Add("18446744073709551616")
	f.Add("'; DROP TABLE farms;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseFarmID(input)
		if err != nil {
			return
		}
		if id.IsZero() {
			t.Error("accepted id is zero")
		}
		roundTrip, err2 := ParseFarmID(id.String())
		if err2 != nil {
			t.Errorf("accepted id failed round-trip: %v", err2)
		}
		if roundTrip != id {
			t.Error("round-trip changed id value")
		}
	})
}
