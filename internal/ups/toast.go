package ups

import (
	"context"

	"github.com/kazi-app/ups/internal/domain"
	"github.com/kazi-app/ups/internal/integration"
)

// ToastVariant selects how a toast is shown.
type ToastVariant string

const (
	ToastDefault     ToastVariant = "default"
	ToastSuccess     ToastVariant = "success"
	ToastDestructive ToastVariant = "destructive"
)

// Toast is a transient user-facing message.
type Toast struct {
	Title   string
	Message string
	Variant ToastVariant
}

// Toaster shows toasts. It is the only user-facing error surface.
type Toaster interface {
	Toast(ctx context.Context, t Toast)
}

// ToasterFunc adapts a function to Toaster.
type ToasterFunc func(ctx context.Context, t Toast)

func (f ToasterFunc) Toast(ctx context.Context, t Toast) { f(ctx, t) }

// notificationToaster turns toasts into notifications so they reach the
// notification center.
type notificationToaster struct {
	svc *integration.Service
}

func (n notificationToaster) Toast(ctx context.Context, t Toast) {
	in := integration.NotificationInput{
		Type:    domain.NotifyInfo,
		Title:   t.Title,
		Message: t.Message,
	}
	switch t.Variant {
	case ToastDestructive:
		in.Type = domain.NotifyError
		in.Priority = domain.PriorityHigh
	case ToastSuccess:
		in.Type = domain.NotifySuccess
	}
	_, _ = n.svc.AddNotification(ctx, in)
}
