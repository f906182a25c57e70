//go:build linux

package platform

import (
	"fmt"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsDest = "org.freedesktop.Notifications"
	notificationsPath = "/org/freedesktop/Notifications"
)

// Notifier posts toasts through the freedesktop notification service and
// reports action clicks back by tag.
type Notifier struct {
	appName string

	mu       sync.Mutex
	conn     *dbus.Conn
	ids      map[string]uint32
	onAction ActionHandler
}

// NewNotifier creates a notifier; the bus connection is opened lazily
func NewNotifier(appName string) *Notifier {
	return &Notifier{appName: appName, ids: make(map[string]uint32)}
}

// OnAction registers the handler for action clicks
func (n *Notifier) OnAction(fn ActionHandler) {
	n.mu.Lock()
	n.onAction = fn
	n.mu.Unlock()
}

func (n *Notifier) connect() (*dbus.Conn, error) {
	if n.conn != nil {
		return n.conn, nil
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("%w: session bus: %v", ErrUnsupported, err)
	}
	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(notificationsPath),
		dbus.WithMatchInterface(notificationsDest),
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe notification signals: %w", err)
	}

	signals := make(chan *dbus.Signal, 16)
	conn.Signal(signals)
	go n.listen(signals)

	n.conn = conn
	return conn, nil
}

func (n *Notifier) listen(signals <-chan *dbus.Signal) {
	for sig := range signals {
		if len(sig.Body) < 2 {
			continue
		}
		id, ok := sig.Body[0].(uint32)
		if !ok {
			continue
		}

		switch sig.Name {
		case notificationsDest + ".ActionInvoked":
			action, _ := sig.Body[1].(string)
			n.mu.Lock()
			tag := n.tagFor(id)
			handler := n.onAction
			n.mu.Unlock()
			if tag != "" && handler != nil {
				handler(tag, action)
			}
		case notificationsDest + ".NotificationClosed":
			n.mu.Lock()
			if tag := n.tagFor(id); tag != "" {
				delete(n.ids, tag)
			}
			n.mu.Unlock()
		}
	}
}

func (n *Notifier) tagFor(id uint32) string {
	for tag, known := range n.ids {
		if known == id {
			return tag
		}
	}
	return ""
}

// Show posts t, replacing an earlier toast with the same tag
func (n *Notifier) Show(t Toast) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	conn, err := n.connect()
	if err != nil {
		return err
	}

	actions := make([]string, 0, 2*len(t.Actions)+2)
	actions = append(actions, "default", "Open")
	for _, a := range t.Actions {
		actions = append(actions, a.ID, a.Label)
	}

	hints := map[string]dbus.Variant{}
	if t.Persistent {
		hints["resident"] = dbus.MakeVariant(true)
	}
	if t.Critical {
		hints["urgency"] = dbus.MakeVariant(byte(2))
	}

	timeout := int32(-1)
	if t.Persistent {
		timeout = 0
	}

	var id uint32
	obj := conn.Object(notificationsDest, notificationsPath)
	call := obj.Call(notificationsDest+".Notify", 0,
		n.appName, n.ids[t.Tag], t.Icon, t.Title, t.Body, actions, hints, timeout)
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	if t.Tag != "" {
		n.ids[t.Tag] = id
	}
	return nil
}

// CloseMatching closes every shown toast whose tag starts with prefix
func (n *Notifier) CloseMatching(prefix string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn == nil {
		return nil
	}

	obj := n.conn.Object(notificationsDest, notificationsPath)
	var firstErr error
	for tag, id := range n.ids {
		if !strings.HasPrefix(tag, prefix) {
			continue
		}
		if err := obj.Call(notificationsDest+".CloseNotification", 0, id).Err; err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s: %w", tag, err)
		}
		delete(n.ids, tag)
	}
	return firstErr
}

// Shutdown closes the bus connection
func (n *Notifier) Shutdown() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conn != nil {
		n.conn.Close()
		n.conn = nil
	}
}
