package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/veradocs/vera/internal/common"
)

type errorBody struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Reason string `json:"reason,omitempty"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response failed", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, errorBody{Error: msg, Code: string(common.CodeInternal)})
}

// respondDomainError maps the error taxonomy onto HTTP statuses.
func (s *Server) respondDomainError(w http.ResponseWriter, err error) {
	code := common.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case common.CodeNotFound:
		status = http.StatusNotFound
	case common.CodePrecondition:
		status = http.StatusConflict
	case common.CodeUnsupported:
		status = http.StatusBadRequest
	case common.CodeUpstream:
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("internal error", zap.Error(err))
	}
	s.respondJSON(w, status, errorBody{
		Error:  err.Error(),
		Code:   string(code),
		Reason: common.ReasonOf(err),
	})
}
