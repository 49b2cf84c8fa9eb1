package web

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/cybears/swerve/internal/logic/tags"
)

// maxBodyBytes bounds POST bodies.
const maxBodyBytes = 1 << 10

// DefaultMaintenanceInterval is the minimum spacing between maintenance requests.
const DefaultMaintenanceInterval = time.Second

// Snapshotter exposes the latest telemetry values.
type Snapshotter interface {
	Snapshot() map[string]any
	Get(key string) (any, bool)
}

// Maintenance queues drivetrain maintenance for the control loop. The
// handlers never touch the drivetrain directly.
type Maintenance interface {
	PressZeroGyro()
	PressResetModules()
}

// AllianceSetter changes the match alliance.
type AllianceSetter interface {
	Set(a tags.Alliance)
}

// Deps are the handler collaborators. Any of them may be nil; the matching
// routes then answer 503.
type Deps struct {
	Telemetry   Snapshotter
	Maintenance Maintenance
	Alliance    AllianceSetter
	// Settings is served as-is on GET /config.
	Settings any
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	Broadcaster *StatusBroadcaster
	deps        Deps
	staticFS    fs.FS

	// MaintenanceInterval throttles POST /gyro/zero and /modules/reset.
	MaintenanceInterval time.Duration
	mu                  sync.Mutex
	lastMaintenance     time.Time
	now                 func() time.Time
}

// NewHandlers creates handlers with the given dependencies.
func NewHandlers(broadcaster *StatusBroadcaster, deps Deps, staticFS fs.FS) *Handlers {
	return &Handlers{
		Broadcaster:         broadcaster,
		deps:                deps,
		staticFS:            staticFS,
		MaintenanceInterval: DefaultMaintenanceInterval,
		now:                 time.Now,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// HandleTelemetry returns the latest value of every telemetry key.
func (h *Handlers) HandleTelemetry(w http.ResponseWriter, r *http.Request) {
	if h.deps.Telemetry == nil {
		http.Error(w, "telemetry not configured", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Telemetry.Snapshot())
}

// HandleTelemetryKey returns one entry as {"key":...,"value":...}. Keys
// contain slashes, so the route captures the rest of the path.
func (h *Handlers) HandleTelemetryKey(w http.ResponseWriter, r *http.Request) {
	if h.deps.Telemetry == nil {
		http.Error(w, "telemetry not configured", http.StatusServiceUnavailable)
		return
	}
	key := r.PathValue("key")
	v, ok := h.deps.Telemetry.Get(key)
	if !ok {
		http.Error(w, "unknown telemetry key", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": key, "value": v})
}

// HandleConfig returns the running configuration.
func (h *Handlers) HandleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Settings)
}

// ServeIndex serves the dashboard page (root path only).
func (h *Handlers) ServeIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(h.staticFS, "index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// allowMaintenance enforces MaintenanceInterval between accepted requests.
func (h *Handlers) allowMaintenance() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.now()
	if !h.lastMaintenance.IsZero() && now.Sub(h.lastMaintenance) < h.MaintenanceInterval {
		return false
	}
	h.lastMaintenance = now
	return true
}

func (h *Handlers) maintenance(w http.ResponseWriter, r *http.Request, name string, press func(Maintenance)) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.deps.Maintenance == nil {
		http.Error(w, "maintenance not configured", http.StatusServiceUnavailable)
		return
	}
	if !h.allowMaintenance() {
		http.Error(w, "too many maintenance requests", http.StatusTooManyRequests)
		return
	}
	press(h.deps.Maintenance)
	h.Broadcaster.Broadcast("info", name+" queued")
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "action": name})
}

// HandleZeroGyro handles POST /gyro/zero.
func (h *Handlers) HandleZeroGyro(w http.ResponseWriter, r *http.Request) {
	h.maintenance(w, r, "zero gyro", Maintenance.PressZeroGyro)
}

// HandleResetModules handles POST /modules/reset.
func (h *Handlers) HandleResetModules(w http.ResponseWriter, r *http.Request) {
	h.maintenance(w, r, "reset modules", Maintenance.PressResetModules)
}

type allianceRequest struct {
	Alliance string `json:"alliance"`
}

// HandleAlliance handles POST /alliance with {"alliance":"red|blue|unknown"}.
func (h *Handlers) HandleAlliance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.deps.Alliance == nil {
		http.Error(w, "alliance not configurable", http.StatusServiceUnavailable)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	var req allianceRequest
	if err := dec.Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	a, err := tags.ParseAlliance(req.Alliance)
	if err != nil || req.Alliance == "" {
		http.Error(w, "alliance must be red, blue or unknown", http.StatusBadRequest)
		return
	}
	h.deps.Alliance.Set(a)
	h.Broadcaster.Broadcast("info", "alliance set to "+a.String())
	writeJSON(w, http.StatusOK, map[string]string{"alliance": a.String()})
}

// HandleStatusStream handles GET /status/stream for SSE.
func (h *Handlers) HandleStatusStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx

	ch, unsub := h.Broadcaster.Subscribe()
	defer unsub()

	w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.Write([]byte("data: " + msg + "\n\n"))
			flusher.Flush()

		case <-ticker.C:
			w.Write([]byte(": heartbeat\n\n"))
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
