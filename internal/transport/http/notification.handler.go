package httptransport

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/k-code-yt/cashpay-ipn/pkg/errors"
)

const maxBodyBytes = 16 << 10

type NotificationProcessor interface {
	Process(ctx context.Context, payload url.Values) error
	Reject(payload url.Values, cause error) error
}

type NotificationHandler struct {
	processor NotificationProcessor
}

func NewNotificationHandler(p NotificationProcessor) *NotificationHandler {
	return &NotificationHandler{processor: p}
}

// Handle accepts the provider callback as query or form parameters. The
// response never says why a notification was rejected.
func (h *NotificationHandler) Handle(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.Request.ParseForm(); err != nil {
		// Form holds whatever parsed before the error.
		rejected := h.processor.Reject(c.Request.Form, err)
		c.Status(statusFor(pkgerrors.GetDisposition(rejected)))
		return
	}

	err := h.processor.Process(c.Request.Context(), c.Request.Form)
	c.Status(statusFor(pkgerrors.GetDisposition(err)))
}

func statusFor(d pkgerrors.Disposition) int {
	switch d {
	case pkgerrors.DispositionAccepted, pkgerrors.DispositionRejected:
		return http.StatusOK
	case pkgerrors.DispositionRefused:
		return http.StatusBadRequest
	default:
		return http.StatusServiceUnavailable
	}
}
