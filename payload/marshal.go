package payload

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Marshal serializes a payload to its binary wire form for store backends
// that persist the payload as a single blob.
func Marshal(p Payload) ([]byte, error) {
	data, err := msgpack.Marshal(map[string]any(p))
	if err != nil {
		return nil, fmt.Errorf("reporting: marshal payload: %w", err)
	}
	return data, nil
}

// Unmarshal deserializes a payload from its binary wire form. Integer
// values come back at whatever width the codec chose, so they are
// normalized to int64 to keep the in-memory payload shape uniform.
func Unmarshal(data []byte) (Payload, error) {
	var raw map[string]any
	if err := msgpack.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("reporting: unmarshal payload: %w", err)
	}

	p := make(Payload, len(raw))
	for k := range raw {
		switch raw[k].(type) {
		case string, bool:
			p[k] = raw[k]
		default:
			p[k] = Payload(raw).getInt64(k)
		}
	}
	return p, nil
}
