package response

import "github.com/user/seo-audit-service/internal/entity"

// ErrorResponse is the body of every non-2xx API answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	URL     string `json:"url,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HistoryResponse struct {
	URL     string                 `json:"url"`
	History []*entity.AuditHistory `json:"history"`
}

// HealthResponse reports "ok" or "degraded" plus one entry per configured backend.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}
