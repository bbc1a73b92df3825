package handlers

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"maqayees/internal/domain"
	"maqayees/internal/server/resp"
	"maqayees/internal/shifts"
	"maqayees/internal/uploads"
)

const failedToSaveMsg = "Failed to save driver shift."

// ShiftStore is the persistence surface the shift endpoints need.
type ShiftStore interface {
	Persist(ctx context.Context, id string, eventType domain.EventType, idn shifts.Identity, ev shifts.ShiftEvent) (*shifts.ShiftRecord, error)
	Load(ctx context.Context, id string) (*shifts.ShiftRecord, error)
	FindOpenByDriver(ctx context.Context, driverID string) (*shifts.ShiftRecord, error)
	ListRecent(ctx context.Context, driverID string, limit int) ([]*shifts.ShiftRecord, error)
}

// UploadResolver resolves the uploads payload of one submission.
type UploadResolver interface {
	Resolve(ctx context.Context, shiftID string, p uploads.Payload) (*shifts.UploadSet, error)
}

// ActiveShiftCache tracks the open shift per driver.
type ActiveShiftCache interface {
	Set(ctx context.Context, driverID, shiftID string) error
	Get(ctx context.Context, driverID string) (string, error)
	Clear(ctx context.Context, driverID string) error
}

type ShiftHandler struct {
	logger   *zap.Logger
	store    ShiftStore
	resolver UploadResolver
	active   ActiveShiftCache
}

func NewShiftHandler(logger *zap.Logger, store ShiftStore, resolver UploadResolver, active ActiveShiftCache) *ShiftHandler {
	return &ShiftHandler{logger: logger, store: store, resolver: resolver, active: active}
}

type shiftEventReq struct {
	EventType    string   `json:"eventType"`
	ShiftID      string   `json:"shiftId"`
	Mileage      *float64 `json:"mileage"`
	RecordedAt   string   `json:"recordedAt"`
	Notes        string   `json:"notes"`
	StartMileage *float64 `json:"startMileage"`

	DriverID    string `json:"driverId"`
	DriverName  string `json:"driverName"`
	DriverEmail string `json:"driverEmail"`
	DriverPhone string `json:"driverPhone"`

	VehicleID    string `json:"vehicleId"`
	VehiclePlate string `json:"vehiclePlate"`
	ProjectName  string `json:"projectName"`

	Uploads *uploads.Payload `json:"uploads"`
}

// POST /v1/shifts
// Validates everything before any I/O, resolves the photo uploads, merges
// the event into the shift record and returns the merged record.
func (h *ShiftHandler) Submit(c *gin.Context) {
	var req shiftEventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Error(c, http.StatusBadRequest, "invalid payload")
		return
	}

	eventType := domain.EventType(strings.TrimSpace(req.EventType))
	if !eventType.Valid() {
		resp.Error(c, http.StatusBadRequest, "eventType must be \"start\" or \"end\"")
		return
	}
	if req.Mileage == nil || math.IsNaN(*req.Mileage) || math.IsInf(*req.Mileage, 0) || *req.Mileage < 0 {
		resp.Error(c, http.StatusBadRequest, "mileage must be a non-negative number")
		return
	}
	if eventType == domain.EventEnd && strings.TrimSpace(req.ShiftID) == "" {
		resp.Error(c, http.StatusBadRequest, "shiftId is required to end a shift")
		return
	}
	if req.Uploads == nil {
		resp.Error(c, http.StatusBadRequest, "uploads payload is required")
		return
	}
	if err := req.Uploads.Validate(); err != nil {
		resp.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	shiftID := shifts.DeriveID(req.ShiftID)
	ctx := c.Request.Context()

	resolved, err := h.resolver.Resolve(ctx, shiftID, *req.Uploads)
	if err != nil {
		h.logger.Error("resolve uploads failed", zap.String("shift_id", shiftID), zap.Error(err))
		resp.Error(c, http.StatusInternalServerError, failedToSaveMsg)
		return
	}

	event := shifts.ShiftEvent{
		Mileage:      *req.Mileage,
		RecordedAt:   recordedAtOrNow(req.RecordedAt),
		Notes:        strings.TrimSpace(req.Notes),
		StartMileage: req.StartMileage,
		Uploads:      *resolved,
	}
	identity := shifts.Identity{
		DriverID:     req.DriverID,
		DriverName:   req.DriverName,
		DriverEmail:  req.DriverEmail,
		DriverPhone:  req.DriverPhone,
		VehicleID:    req.VehicleID,
		VehiclePlate: req.VehiclePlate,
		ProjectName:  req.ProjectName,
	}

	rec, err := h.store.Persist(ctx, shiftID, eventType, identity, event)
	if err != nil {
		h.logger.Error("persist shift failed", zap.String("shift_id", shiftID), zap.Error(err))
		resp.Error(c, http.StatusInternalServerError, failedToSaveMsg)
		return
	}

	h.updateActiveCache(ctx, rec)

	resp.OK(c, gin.H{"shift": rec})
}

// updateActiveCache keeps the driver -> open shift mapping warm. Cache
// errors never fail the request.
func (h *ShiftHandler) updateActiveCache(ctx context.Context, rec *shifts.ShiftRecord) {
	if h.active == nil || rec.Driver.ID == "" {
		return
	}
	var err error
	if rec.IsClosed {
		err = h.active.Clear(ctx, rec.Driver.ID)
	} else {
		err = h.active.Set(ctx, rec.Driver.ID, rec.ID)
	}
	if err != nil {
		h.logger.Warn("active shift cache update failed",
			zap.String("driver_id", rec.Driver.ID),
			zap.String("shift_id", rec.ID),
			zap.Error(err),
		)
	}
}

// recordedAtOrNow accepts an ISO timestamp from the client; anything else
// becomes server time.
func recordedAtOrNow(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}
