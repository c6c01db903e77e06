package payload

import (
	"github.com/pushkit/reporting/event"
)

// Encode maps an event to its flat key-value payload. Delivery events
// additionally write their three boolean attributes; Open events omit them.
// An empty UserID omits the key entirely.
func Encode(ev event.Event) Payload {
	p := Payload{
		KeyEventType: string(ev.Kind()),
	}

	if d, ok := ev.(event.Delivery); ok {
		p[KeyAppInBackground] = d.AppInBackground
		p[KeyHasDisplayableContent] = d.HasDisplayableContent
		p[KeyHasData] = d.HasData
	}

	f := ev.Common()
	p[KeyInstanceID] = f.InstanceID
	p[KeyDeviceID] = f.DeviceID
	p[KeyPublishID] = f.PublishID
	p[KeyTimestamp] = f.Timestamp
	if f.UserID != "" {
		p[KeyUserID] = f.UserID
	}

	return p
}

// Decode reconstructs an event from its flat payload.
//
// The instance id is checked first: without the routing key there is nothing
// to submit, and decoding fails with ErrMissingInstanceID. A missing or
// unknown discriminator fails with ErrMissingEventType. Every other key is
// tolerated when absent — payloads written by older releases may lack them —
// and resolves to its zero value: the three Delivery booleans to false,
// DeviceId and PublishId to "", Timestamp to 0, UserId to unset.
func Decode(p Payload) (event.Event, error) {
	instanceID := p.getString(KeyInstanceID)
	if instanceID == "" {
		return nil, ErrMissingInstanceID
	}

	kind := event.Type(p.getString(KeyEventType))
	if !kind.Valid() {
		return nil, ErrMissingEventType
	}

	f := event.Fields{
		InstanceID: instanceID,
		DeviceID:   p.getString(KeyDeviceID),
		UserID:     p.getString(KeyUserID),
		PublishID:  p.getString(KeyPublishID),
		Timestamp:  p.getInt64(KeyTimestamp),
	}

	switch kind {
	case event.TypeDelivery:
		return event.Delivery{
			Fields:                f,
			AppInBackground:       p.getBool(KeyAppInBackground),
			HasDisplayableContent: p.getBool(KeyHasDisplayableContent),
			HasData:               p.getBool(KeyHasData),
		}, nil
	case event.TypeOpen:
		return event.Open{Fields: f}, nil
	default:
		return nil, ErrMissingEventType
	}
}
