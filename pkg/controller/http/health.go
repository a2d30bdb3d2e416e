package http

import (
	"encoding/json"
	"io/fs"
	"net/http"

	"github.com/m-mizutani/idxget/pkg/domain/model"
	"github.com/m-mizutani/idxget/pkg/domain/types"
	"github.com/m-mizutani/idxget/pkg/utils/logging"
)

// healthHandler reports whether the served tree is still readable
type healthHandler struct {
	fsys fs.FS
}

func (h *healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := &model.HealthStatus{
		Status:  model.HealthStatusHealthy,
		Service: "idxget",
		Version: types.Version,
	}
	code := http.StatusOK

	if _, err := fs.ReadDir(h.fsys, "."); err != nil {
		logging.From(r.Context()).Warn("Archive root is not readable", "error", err)
		status.Status = model.HealthStatusUnavailable
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(status); err != nil {
		logging.From(r.Context()).Error("Failed to encode health response", "error", err)
	}
}
