package platform

// Toast is a native notification
type Toast struct {
	Tag        string
	Title      string
	Body       string
	Icon       string
	Actions    []ToastAction
	Persistent bool // stays until the user interacts with it
	Critical   bool
}

// ToastAction is a button on a Toast
type ToastAction struct {
	ID    string
	Label string
}

// ActionHandler receives the tag of the toast and the chosen action ID.
// Clicking the toast body reports the action "default".
type ActionHandler func(tag, action string)
