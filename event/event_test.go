package event_test

import (
	"testing"

	"github.com/pushkit/reporting/event"
)

func TestType_Valid(t *testing.T) {
	tests := []struct {
		typ  event.Type
		want bool
	}{
		{event.TypeDelivery, true},
		{event.TypeOpen, true},
		{event.Type(""), false},
		{event.Type("Click"), false},
	}
	for _, tt := range tests {
		if got := tt.typ.Valid(); got != tt.want {
			t.Errorf("Type(%q).Valid() = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestDelivery_Kind(t *testing.T) {
	d := event.Delivery{
		Fields: event.Fields{InstanceID: "i1", PublishID: "p1", Timestamp: 1000},
	}
	if got := d.Kind(); got != event.TypeDelivery {
		t.Errorf("Kind() = %q, want %q", got, event.TypeDelivery)
	}
}

func TestOpen_Kind(t *testing.T) {
	o := event.Open{
		Fields: event.Fields{InstanceID: "i1", PublishID: "p1"},
	}
	if got := o.Kind(); got != event.TypeOpen {
		t.Errorf("Kind() = %q, want %q", got, event.TypeOpen)
	}
}

func TestEvents_AreComparable(t *testing.T) {
	a := event.Delivery{
		Fields:          event.Fields{InstanceID: "i1", DeviceID: "d1", UserID: "u1", PublishID: "p1", Timestamp: 1000},
		AppInBackground: true,
	}
	b := event.Delivery{
		Fields:          event.Fields{InstanceID: "i1", DeviceID: "d1", UserID: "u1", PublishID: "p1", Timestamp: 1000},
		AppInBackground: true,
	}
	if a != b {
		t.Error("identical Delivery values should compare equal")
	}

	b.HasData = true
	if a == b {
		t.Error("distinct Delivery values should not compare equal")
	}
}
