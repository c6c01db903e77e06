// Package payload maps receipt events to and from their durable key-value
// form. The flat payload is the interoperability contract between everything
// that persists a receipt and everything that later submits it — both
// scheduler bindings, every store backend, and payloads written by older
// releases all share this one schema.
package payload

import "errors"

// Payload keys. Payloads written by older releases may lack newer keys, so
// renaming any of these is a compatibility break.
const (
	KeyEventType             = "EventType"
	KeyInstanceID            = "InstanceId"
	KeyDeviceID              = "DeviceId"
	KeyUserID                = "UserId"
	KeyPublishID             = "PublishId"
	KeyTimestamp             = "Timestamp"
	KeyAppInBackground       = "AppInBackground"
	KeyHasDisplayableContent = "HasDisplayableContent"
	KeyHasData               = "HasData"
)

// Decode errors. Both are terminal: a payload that fails to decode will not
// become well-formed on a later attempt, so callers drop the report rather
// than retry it.
var (
	// ErrMissingInstanceID means the payload lacks the submission routing
	// key. Older producers could write such payloads; the report is
	// dropped rather than partially reconstructed.
	ErrMissingInstanceID = errors.New("reporting: payload missing instance id")
	// ErrMissingEventType means the payload lacks the variant
	// discriminator, or carries one this release does not know.
	ErrMissingEventType = errors.New("reporting: payload missing event type")
)

// Payload is the flat key-value form of a receipt event. Values are strings,
// int64s, and bools only.
type Payload map[string]any

// Clone returns a shallow copy of the payload.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	cp := make(Payload, len(p))
	for k, v := range p {
		cp[k] = v
	}
	return cp
}

// getString returns the string stored under key, or "" if the key is absent
// or holds a non-string value.
func (p Payload) getString(key string) string {
	s, _ := p[key].(string)
	return s
}

// getBool returns the bool stored under key, or false if the key is absent
// or holds a non-bool value.
func (p Payload) getBool(key string) bool {
	b, _ := p[key].(bool)
	return b
}

// getInt64 returns the integer stored under key, or 0 if the key is absent.
// Payloads that have passed through a serialization boundary may carry the
// value at a narrower integer width or as a float, so all numeric types
// are accepted.
func (p Payload) getInt64(key string) int64 {
	switch v := p[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case float64:
		return int64(v)
	case float32:
		return int64(v)
	default:
		return 0
	}
}
