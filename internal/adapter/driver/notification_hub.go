package driver

import (
	"net/http"
	"sync"
	"time"
)

// maxNotices bounds the hub's backlog; older notices are dropped first.
const maxNotices = 50

// notice is one user-facing message. A zero TTL means the notice stays until
// explicitly cleared.
type notice struct {
	Message string        `json:"message"`
	TTL     time.Duration `json:"-"`
	TTLMS   int64         `json:"ttl_ms"`
	At      time.Time     `json:"at"`
}

// NotificationHub collects user-facing notices from the services and serves
// them over HTTP. It implements the notifier port.
type NotificationHub struct {
	mu      sync.Mutex
	notices []notice
}

// NewNotificationHub creates an empty hub.
func NewNotificationHub() *NotificationHub {
	return &NotificationHub{}
}

// Notify records a notice. A zero duration marks it persistent.
func (h *NotificationHub) Notify(message string, duration time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.notices = append(h.notices, notice{
		Message: message,
		TTL:     duration,
		TTLMS:   duration.Milliseconds(),
		At:      time.Now(),
	})
	if len(h.notices) > maxNotices {
		h.notices = h.notices[len(h.notices)-maxNotices:]
	}
}

// ServeHTTP handles GET /notifications (list pending notices) and
// DELETE /notifications (clear them).
func (h *NotificationHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.mu.Lock()
		resp := append([]notice(nil), h.notices...)
		h.mu.Unlock()
		writeJSON(w, http.StatusOK, resp)
	case http.MethodDelete:
		h.mu.Lock()
		h.notices = nil
		h.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
