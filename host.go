package main

import (
	"errors"

	"fyne.io/fyne/v2"
	"go.uber.org/zap"

	"github.com/borgmon/carebell/pkg/courier"
	"github.com/borgmon/carebell/pkg/platform"
)

// toaster is the native notification service
type toaster interface {
	Show(t platform.Toast) error
	CloseMatching(prefix string) error
}

// notificationHost shows courier notifications through the native service
// and falls back to fyne's plain notifications where there is none
type notificationHost struct {
	native toaster
	send   func(*fyne.Notification)
	logger *zap.Logger
}

func newNotificationHost(a fyne.App, native toaster, logger *zap.Logger) *notificationHost {
	return &notificationHost{native: native, send: a.SendNotification, logger: logger}
}

func (h *notificationHost) Show(n courier.Notification) error {
	err := h.native.Show(toToast(n))
	if errors.Is(err, platform.ErrUnsupported) {
		h.logger.Debug("Native notifications unavailable, using fallback", zap.Error(err))
		h.send(fyne.NewNotification(n.Title, n.Body))
		return nil
	}
	return err
}

func (h *notificationHost) CloseTagged(prefix string) error {
	return h.native.CloseMatching(prefix)
}

func toToast(n courier.Notification) platform.Toast {
	t := platform.Toast{
		Tag:        n.Tag,
		Title:      n.Title,
		Body:       n.Body,
		Icon:       n.Icon,
		Persistent: n.RequireInteraction,
		Critical:   len(n.Vibrate) > 0,
	}
	for _, a := range n.Actions {
		t.Actions = append(t.Actions, platform.ToastAction{ID: a.Action, Label: a.Title})
	}
	return t
}
