// Shift records: one JSON document per shift id, merged across start/end
// submissions. The merged document is what the mobile client gets back and
// what the shifts table stores as its JSONB body.
package shifts

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"maqayees/internal/domain"
	"maqayees/internal/util"
)

// Identity carries the driver/vehicle fields a submission may include.
// Empty fields never erase previously known values.
type Identity struct {
	DriverID    string
	DriverName  string
	DriverEmail string
	DriverPhone string

	VehicleID    string
	VehiclePlate string
	ProjectName  string
}

// DriverInfo is the merged driver portion of a shift record.
type DriverInfo struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// VehicleInfo is the merged vehicle portion of a shift record.
type VehicleInfo struct {
	ID      string `json:"id,omitempty"`
	Plate   string `json:"plate,omitempty"`
	Project string `json:"project,omitempty"`
}

// UploadResult records where one uploaded photo ended up.
type UploadResult struct {
	OriginalName string                `json:"originalName"`
	RemotePath   string                `json:"remotePath"`
	BlobPath     string                `json:"blobPath,omitempty"`
	BlobURL      string                `json:"blobUrl"`
	Location     domain.UploadLocation `json:"location"`
	ContentType  string                `json:"contentType,omitempty"`
}

// UploadSet groups the resolved uploads of one submission.
type UploadSet struct {
	OdometerPhoto UploadResult   `json:"odometerPhoto"`
	VehiclePhotos []UploadResult `json:"vehiclePhotos"`
}

// ShiftEvent is one start or end submission.
type ShiftEvent struct {
	Mileage      float64   `json:"mileage"`
	RecordedAt   time.Time `json:"recordedAt"`
	Notes        string    `json:"notes,omitempty"`
	StartMileage *float64  `json:"startMileage,omitempty"`
	Uploads      UploadSet `json:"uploads"`
}

// ShiftRecord is the merged document for one shift id. At most one start and
// one end event; a repeated submission overwrites only its own slot.
type ShiftRecord struct {
	ID        string      `json:"id"`
	Driver    DriverInfo  `json:"driver"`
	Vehicle   VehicleInfo `json:"vehicle"`
	Start     *ShiftEvent `json:"start,omitempty"`
	End       *ShiftEvent `json:"end,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	IsClosed  bool        `json:"isClosed"`
}

// Merge applies one submission to an existing record (nil means first write)
// and returns the updated document. Driver/vehicle fields merge without
// erasing known values, the event lands in its own slot only, and isClosed
// is recomputed from the presence of end.
func Merge(existing *ShiftRecord, id string, eventType domain.EventType, idn Identity, ev ShiftEvent, now time.Time) *ShiftRecord {
	rec := existing
	if rec == nil {
		rec = &ShiftRecord{ID: id, CreatedAt: now}
	}

	applyIdentity(rec, idn)

	switch eventType {
	case domain.EventStart:
		e := ev
		rec.Start = &e
	case domain.EventEnd:
		e := ev
		rec.End = &e
	}

	rec.UpdatedAt = now
	rec.IsClosed = rec.End != nil
	return rec
}

func applyIdentity(rec *ShiftRecord, idn Identity) {
	if v := strings.TrimSpace(idn.DriverID); v != "" {
		rec.Driver.ID = v
	}
	if v := strings.TrimSpace(idn.DriverName); v != "" {
		rec.Driver.Name = v
	}
	if v := strings.TrimSpace(idn.DriverEmail); v != "" {
		rec.Driver.Email = strings.ToLower(v)
	}
	if v := strings.TrimSpace(idn.DriverPhone); v != "" {
		rec.Driver.Phone = v
	}
	if v := strings.TrimSpace(idn.VehicleID); v != "" {
		rec.Vehicle.ID = v
	}
	if v := strings.TrimSpace(idn.VehiclePlate); v != "" {
		rec.Vehicle.Plate = v
	}
	if v := strings.TrimSpace(idn.ProjectName); v != "" {
		rec.Vehicle.Project = v
	}
}

// DeriveID returns the sanitized client-supplied shift id, or a generated
// fallback when the client sent none.
func DeriveID(raw string) string {
	if s := SanitizeID(raw); s != "" {
		return s
	}
	return newID()
}

// SanitizeID reduces a client-supplied shift id to [a-zA-Z0-9._-].
func SanitizeID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return strings.Trim(util.SanitizeName(raw), "-")
}

func newID() string {
	short := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return "shift-" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + short
}
