package dispatch

// Notifier is the platform push-notification primitive. Tag identifies the
// notification so a later interaction or clear can reference it.
type Notifier interface {
	Notify(title, body, tag string) error
	Clear(tag string) error
}
