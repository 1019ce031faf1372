package target

import (
	"encoding/json"
	"fmt"

	"pixelgardenlabs.io/pgl-sync/pkg/util"
)

// Backend represents the copy implementation used for a target.
type Backend int

const (
	// Local copies within the local filesystem.
	Local Backend = iota
	// Remote targets a network destination. Not yet implemented: selecting
	// it yields ErrUnsupportedBackend at run time.
	Remote
)

var backendToString = map[Backend]string{Local: "local", Remote: "remote"}
var stringToBackend = map[string]Backend{}

func init() {
	stringToBackend = util.InvertMap(backendToString)
}

// String returns the string representation of a Backend.
func (b Backend) String() string {
	if str, ok := backendToString[b]; ok {
		return str
	}
	return fmt.Sprintf("unknown_backend(%d)", int(b))
}

// ParseBackend parses a string and returns the corresponding Backend.
func ParseBackend(s string) (Backend, error) {
	if b, ok := stringToBackend[s]; ok {
		return b, nil
	}
	return 0, fmt.Errorf("invalid backend: %q. Must be 'local' or 'remote'", s)
}

// MarshalJSON implements the json.Marshaler interface for Backend.
func (b Backend) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for Backend.
func (b *Backend) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("Backend should be a string, got %s", data)
	}

	backend, err := ParseBackend(s)
	if err != nil {
		return err
	}
	*b = backend
	return nil
}
