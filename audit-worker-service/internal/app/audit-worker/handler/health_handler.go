package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"pinemarket/audit-worker-service/internal/app/audit-worker/service"
	"pinemarket/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
)

// HealthCheckHandler отдает состояние воркера и читающий доступ к журналу
type HealthCheckHandler struct {
	mongoClient *mongo.Client
	auditSvc    service.AuditServiceInterface
}

func NewHealthCheckHandler(mongoClient *mongo.Client, auditSvc service.AuditServiceInterface) *HealthCheckHandler {
	return &HealthCheckHandler{
		mongoClient: mongoClient,
		auditSvc:    auditSvc,
	}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp time.Time         `json:"timestamp"`
}

func (h *HealthCheckHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	overallStatus := "healthy"

	if err := h.mongoClient.Ping(ctx, nil); err != nil {
		checks["mongodb"] = "unhealthy: " + err.Error()
		overallStatus = "unhealthy"
	} else {
		checks["mongodb"] = "healthy"
	}

	response := HealthResponse{
		Status:    overallStatus,
		Checks:    checks,
		Timestamp: time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	if overallStatus != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(response)
}

func (h *HealthCheckHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.mongoClient.Ping(ctx, nil); err != nil {
		http.Error(w, "mongodb not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

func (h *HealthCheckHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("alive"))
}

// RecentEntries отдает последние записи журнала аудита.
// Параметр limit опционален, по умолчанию 100.
func (h *HealthCheckHandler) RecentEntries(w http.ResponseWriter, r *http.Request) {
	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	entries, err := h.auditSvc.GetRecent(r.Context(), limit)
	if err != nil {
		logger.Error().Err(err).Msg("failed to read audit log")
		http.Error(w, "failed to read audit log", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// RecordHistory отдает историю изменений одной записи каталога
func (h *HealthCheckHandler) RecordHistory(w http.ResponseWriter, r *http.Request) {
	recordID := r.URL.Query().Get("record_id")

	entries, err := h.auditSvc.GetRecordHistory(r.Context(), recordID)
	if err != nil {
		if errors.Is(err, service.ErrEmptyRecordID) {
			http.Error(w, "record_id is required", http.StatusBadRequest)
			return
		}
		logger.Error().Err(err).Msg("failed to read record history")
		http.Error(w, "failed to read record history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

func (h *HealthCheckHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.HealthCheck)
	mux.HandleFunc("/health/readiness", h.Readiness)
	mux.HandleFunc("/health/liveness", h.Liveness)
	mux.HandleFunc("/audit/recent", h.RecentEntries)
	mux.HandleFunc("/audit/history", h.RecordHistory)
}
