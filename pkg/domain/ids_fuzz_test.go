//go:build go1.18

package domain

import (
	"testing"
)

// FuzzParseEmployeeID checks that parsing never panics on arbitrary input
// and always returns either a valid ID or an error.
func FuzzParseEmployeeID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("'; DROP TABLE employees;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseEmployeeID(input)
		if err != nil {
			if !id.IsNil() {
				t.Errorf("error returned with non-nil ID: %v", id)
			}
			return
		}
		if id.IsNil() {
			t.Errorf("nil ID returned without error for input %q", input)
		}
	})
}
