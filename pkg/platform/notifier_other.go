//go:build !linux

package platform

// Notifier is unavailable on this host; callers fall back to fyne
type Notifier struct{}

// NewNotifier returns a notifier that reports ErrUnsupported
func NewNotifier(appName string) *Notifier {
	return &Notifier{}
}

// OnAction is a no-op
func (n *Notifier) OnAction(fn ActionHandler) {}

// Show reports ErrUnsupported
func (n *Notifier) Show(t Toast) error {
	return ErrUnsupported
}

// CloseMatching is a no-op
func (n *Notifier) CloseMatching(prefix string) error {
	return nil
}

// Shutdown is a no-op
func (n *Notifier) Shutdown() {}
