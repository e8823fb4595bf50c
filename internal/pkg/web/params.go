package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gethiox/padshim/internal/pkg/input"
	"github.com/gethiox/padshim/internal/pkg/logger"
	"go.uber.org/zap"
)

// Params are the live shim parameters exposed for external writers
type Params interface {
	Deadzone() float64
	SetDeadzone(deadzone float64) error
	Filter() input.Filter
	SetFilter(f input.Filter)
}

type paramsMessage struct {
	Deadzone *float64 `json:"deadzone,omitempty"`
	Vendor   *uint16  `json:"vendor,omitempty"`
	Product  *uint16  `json:"product,omitempty"`
}

func currentParams(p Params) paramsMessage {
	deadzone := p.Deadzone()
	filter := p.Filter()
	return paramsMessage{
		Deadzone: &deadzone,
		Vendor:   &filter.Vendor,
		Product:  &filter.Product,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// handleParams serves GET (current values) and POST (partial update, omitted fields stay intact)
func handleParams(p Params, noLogs bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, currentParams(p))
		case http.MethodPost:
			var msg paramsMessage
			err := json.NewDecoder(r.Body).Decode(&msg)
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Errorf("malformed request: %w", err))
				return
			}

			if msg.Deadzone != nil {
				err := p.SetDeadzone(*msg.Deadzone)
				if err != nil {
					writeError(w, http.StatusBadRequest, err)
					return
				}
			}

			if msg.Vendor != nil || msg.Product != nil {
				filter := p.Filter()
				if msg.Vendor != nil {
					filter.Vendor = *msg.Vendor
				}
				if msg.Product != nil {
					filter.Product = *msg.Product
				}
				p.SetFilter(filter)
			}

			if !noLogs {
				log.Info("Parameters updated",
					zap.Float64("deadzone", p.Deadzone()),
					zap.String("filter", p.Filter().String()),
					zap.String("remote", r.RemoteAddr),
					logger.Info,
				)
			}
			writeJSON(w, http.StatusOK, currentParams(p))
		default:
			w.Header().Set("Allow", "GET, POST")
			writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
		}
	}
}
