package payload_test

import (
	"errors"
	"testing"

	"github.com/pushkit/reporting/event"
	"github.com/pushkit/reporting/payload"
)

func TestEncodeDecode_DeliveryRoundTrip(t *testing.T) {
	want := event.Delivery{
		Fields: event.Fields{
			InstanceID: "i1",
			DeviceID:   "d1",
			UserID:     "u1",
			PublishID:  "p1",
			Timestamp:  1000,
		},
		AppInBackground:       true,
		HasDisplayableContent: true,
		HasData:               false,
	}

	got, err := payload.Decode(payload.Encode(want))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != event.Event(want) {
		t.Errorf("Decode(Encode(e)) = %+v, want %+v", got, want)
	}
}

func TestEncodeDecode_OpenRoundTrip(t *testing.T) {
	want := event.Open{
		Fields: event.Fields{
			InstanceID: "i2",
			DeviceID:   "d2",
			PublishID:  "p2",
			Timestamp:  2000,
		},
	}

	got, err := payload.Decode(payload.Encode(want))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != event.Event(want) {
		t.Errorf("Decode(Encode(e)) = %+v, want %+v", got, want)
	}
}

func TestEncode_OpenOmitsDeliveryKeys(t *testing.T) {
	p := payload.Encode(event.Open{Fields: event.Fields{InstanceID: "i1"}})

	for _, key := range []string{
		payload.KeyAppInBackground,
		payload.KeyHasDisplayableContent,
		payload.KeyHasData,
	} {
		if _, ok := p[key]; ok {
			t.Errorf("Open payload should not contain %q", key)
		}
	}
}

func TestEncode_EmptyUserIDOmitsKey(t *testing.T) {
	p := payload.Encode(event.Open{Fields: event.Fields{InstanceID: "i1"}})
	if _, ok := p[payload.KeyUserID]; ok {
		t.Errorf("payload should not contain %q for an unset user", payload.KeyUserID)
	}
}

func TestDecode_MissingInstanceID(t *testing.T) {
	tests := []struct {
		name string
		p    payload.Payload
	}{
		{"empty payload", payload.Payload{}},
		{"all other keys present", payload.Payload{
			payload.KeyEventType: "Open",
			payload.KeyDeviceID:  "d1",
			payload.KeyPublishID: "p1",
			payload.KeyTimestamp: int64(1000),
		}},
		{"empty instance id", payload.Payload{
			payload.KeyEventType:  "Open",
			payload.KeyInstanceID: "",
		}},
		{"non-string instance id", payload.Payload{
			payload.KeyEventType:  "Open",
			payload.KeyInstanceID: int64(42),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := payload.Decode(tt.p)
			if !errors.Is(err, payload.ErrMissingInstanceID) {
				t.Errorf("Decode() error = %v, want ErrMissingInstanceID", err)
			}
		})
	}
}

func TestDecode_MissingEventType(t *testing.T) {
	tests := []struct {
		name string
		p    payload.Payload
	}{
		{"no discriminator", payload.Payload{
			payload.KeyInstanceID: "i1",
		}},
		{"unknown discriminator", payload.Payload{
			payload.KeyInstanceID: "i1",
			payload.KeyEventType:  "Click",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := payload.Decode(tt.p)
			if !errors.Is(err, payload.ErrMissingEventType) {
				t.Errorf("Decode() error = %v, want ErrMissingEventType", err)
			}
		})
	}
}

func TestDecode_InstanceIDCheckedBeforeEventType(t *testing.T) {
	// A payload missing both keys reports the routing key first.
	_, err := payload.Decode(payload.Payload{})
	if !errors.Is(err, payload.ErrMissingInstanceID) {
		t.Errorf("Decode() error = %v, want ErrMissingInstanceID", err)
	}
}

func TestDecode_DeliveryBooleansDefaultFalse(t *testing.T) {
	// Payloads written before the boolean attributes existed must still
	// decode, with each absent flag resolving to false.
	p := payload.Payload{
		payload.KeyEventType:  "Delivery",
		payload.KeyInstanceID: "i1",
		payload.KeyPublishID:  "p1",
	}

	got, err := payload.Decode(p)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	d, ok := got.(event.Delivery)
	if !ok {
		t.Fatalf("Decode() = %T, want event.Delivery", got)
	}
	if d.AppInBackground || d.HasDisplayableContent || d.HasData {
		t.Errorf("absent delivery flags should decode to false, got %+v", d)
	}
}

func TestDecode_OpenWithoutTimestamp(t *testing.T) {
	p := payload.Payload{
		payload.KeyEventType:  "Open",
		payload.KeyInstanceID: "i2",
		payload.KeyPublishID:  "p2",
	}

	got, err := payload.Decode(p)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := event.Open{Fields: event.Fields{InstanceID: "i2", PublishID: "p2", Timestamp: 0}}
	if got != event.Event(want) {
		t.Errorf("Decode() = %+v, want %+v", got, want)
	}
}

func TestDecode_OptionalStringsDefaultEmpty(t *testing.T) {
	p := payload.Payload{
		payload.KeyEventType:  "Delivery",
		payload.KeyInstanceID: "i1",
	}

	got, err := payload.Decode(p)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	d := got.(event.Delivery)
	if d.DeviceID != "" || d.PublishID != "" || d.UserID != "" {
		t.Errorf("absent string keys should decode to empty, got %+v", d)
	}
}

func TestDecode_TimestampWidths(t *testing.T) {
	// Serialization boundaries may hand the timestamp back at a narrower
	// width or as a float.
	for _, v := range []any{int64(1000), int(1000), int32(1000), uint16(1000), float64(1000)} {
		p := payload.Payload{
			payload.KeyEventType:  "Open",
			payload.KeyInstanceID: "i1",
			payload.KeyTimestamp:  v,
		}
		got, err := payload.Decode(p)
		if err != nil {
			t.Fatalf("Decode() error = %v for %T", err, v)
		}
		if ts := got.(event.Open).Timestamp; ts != 1000 {
			t.Errorf("Timestamp = %d for %T, want 1000", ts, v)
		}
	}
}
