// Package event defines the receipt types reported by the pipeline: a
// Delivery receipt recorded when a push notification arrives on the device,
// and an Open receipt recorded when the user taps it.
//
// Events are immutable value objects. They are constructed once at the call
// site that observed the notification, encoded into a durable payload, and
// only ever reconstructed by decoding that payload back.
package event

// Type discriminates the two receipt variants. It is persisted alongside
// the payload and is required to decode one back into an Event.
type Type string

const (
	// TypeDelivery marks a receipt recorded when a notification was
	// delivered to the device.
	TypeDelivery Type = "Delivery"
	// TypeOpen marks a receipt recorded when the user opened a
	// notification.
	TypeOpen Type = "Open"
)

// Valid reports whether t is one of the known receipt variants.
func (t Type) Valid() bool {
	return t == TypeDelivery || t == TypeOpen
}

// Fields holds the attributes common to both receipt variants.
type Fields struct {
	// InstanceID identifies the SDK installation the receipt belongs to.
	// It is the submission routing key and is never empty in a validly
	// constructed event.
	InstanceID string
	// DeviceID identifies the device. May be empty.
	DeviceID string
	// UserID is the authenticated user the device is associated with.
	// Empty means no user.
	UserID string
	// PublishID identifies the publish that triggered the notification.
	PublishID string
	// Timestamp is the event occurrence time in Unix seconds.
	Timestamp int64
}

// Common returns the receiver. Through embedding it gives both variants
// a uniform accessor for their shared fields.
func (f Fields) Common() Fields { return f }

// Event is the sealed interface over the two receipt variants.
type Event interface {
	// Kind returns the variant discriminator.
	Kind() Type
	// Common returns the fields shared by all variants.
	Common() Fields

	sealed()
}

// Delivery is a receipt recorded when a notification reached the device.
type Delivery struct {
	Fields

	// AppInBackground reports whether the app was backgrounded when the
	// notification was delivered.
	AppInBackground bool
	// HasDisplayableContent reports whether the notification carried
	// user-visible content.
	HasDisplayableContent bool
	// HasData reports whether the notification carried a data payload.
	HasData bool
}

// Kind returns TypeDelivery.
func (Delivery) Kind() Type { return TypeDelivery }

func (Delivery) sealed() {}

// Open is a receipt recorded when the user opened a notification. It
// carries no attributes beyond the common fields.
type Open struct {
	Fields
}

// Kind returns TypeOpen.
func (Open) Kind() Type { return TypeOpen }

func (Open) sealed() {}

// Compile-time variant checks.
var (
	_ Event = Delivery{}
	_ Event = Open{}
)
