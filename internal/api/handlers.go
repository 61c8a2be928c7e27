package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/omerorhan/fx-advisor/internal/engine"
	"github.com/omerorhan/fx-advisor/internal/service"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Field   string      `json:"field,omitempty"`
}

// ChannelsRequest is the body for POST /api/v1/channels.
type ChannelsRequest struct {
	Amount   float64       `json:"amount"`
	Method   engine.Method `json:"method"`
	Location string        `json:"location"`
}

type ChannelsResponse struct {
	Channels []engine.Channel `json:"channels"`
	Count    int              `json:"count"`
}

type CurrenciesResponse struct {
	Currencies []string `json:"currencies"`
}

type HealthResponse struct {
	Status      string    `json:"status"`
	Version     string    `json:"version"`
	Initialized bool      `json:"initialized"`
	Leader      bool      `json:"leader"`
	Time        time.Time `json:"time"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if !s.advisor.IsInitialized() {
		status, code = "starting", http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, APIResponse{
		Success: code == http.StatusOK,
		Data: HealthResponse{
			Status:      status,
			Version:     s.opts.Version,
			Initialized: s.advisor.IsInitialized(),
			Leader:      s.advisor.IsLeader(),
			Time:        time.Now().UTC(),
		},
	})
}

func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	var req service.RecommendReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := s.advisor.Recommend(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: rec})
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	var req ChannelsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	channels, err := s.advisor.AvailableChannels(req.Amount, req.Method, req.Location)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if channels == nil {
		channels = []engine.Channel{}
	}
	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    ChannelsResponse{Channels: channels, Count: len(channels)},
	})
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	quote, err := s.advisor.RateQuote(r.Context(), chi.URLParam(r, "from"), chi.URLParam(r, "to"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: quote})
}

func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    CurrenciesResponse{Currencies: s.advisor.SupportedCurrencies()},
	})
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var ve *engine.ValidationError
	switch {
	case errors.As(err, &ve):
		s.writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Error: ve.Error(), Field: ve.Field})
	case errors.Is(err, service.ErrNotInitialized):
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write JSON response", zap.Int("status", status), zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
