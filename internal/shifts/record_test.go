package shifts

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maqayees/internal/domain"
)

func mileageEvent(m float64) ShiftEvent {
	return ShiftEvent{Mileage: m, RecordedAt: time.Now().UTC()}
}

func TestMergeFirstWrite(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	idn := Identity{DriverID: "d1", DriverName: "Ali", DriverEmail: "Ali@Example.COM"}

	rec := Merge(nil, "shift-1", domain.EventStart, idn, mileageEvent(100), now)

	require.NotNil(t, rec.Start)
	assert.Nil(t, rec.End)
	assert.Equal(t, "shift-1", rec.ID)
	assert.Equal(t, now, rec.CreatedAt)
	assert.Equal(t, now, rec.UpdatedAt)
	assert.False(t, rec.IsClosed)
	assert.Equal(t, 100.0, rec.Start.Mileage)
	assert.Equal(t, "ali@example.com", rec.Driver.Email, "email is lowercased")
}

func TestMergeStartThenEnd(t *testing.T) {
	t0 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	t1 := t0.Add(9 * time.Hour)

	rec := Merge(nil, "shift-1", domain.EventStart, Identity{DriverName: "Ali"}, mileageEvent(100), t0)
	rec = Merge(rec, "shift-1", domain.EventEnd, Identity{}, mileageEvent(150), t1)

	require.NotNil(t, rec.Start)
	require.NotNil(t, rec.End)
	assert.Equal(t, 100.0, rec.Start.Mileage)
	assert.Equal(t, 150.0, rec.End.Mileage)
	assert.True(t, rec.IsClosed)
	assert.Equal(t, t0, rec.CreatedAt, "createdAt fixed at first write")
	assert.Equal(t, t1, rec.UpdatedAt)
}

func TestMergeResubmittedStartOverwritesOnlyStart(t *testing.T) {
	t0 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	rec := Merge(nil, "s", domain.EventStart, Identity{}, mileageEvent(100), t0)
	rec = Merge(rec, "s", domain.EventEnd, Identity{}, mileageEvent(150), t0.Add(time.Hour))
	rec = Merge(rec, "s", domain.EventStart, Identity{}, mileageEvent(105), t0.Add(2*time.Hour))

	assert.Equal(t, 105.0, rec.Start.Mileage, "start slot takes the latest submission")
	require.NotNil(t, rec.End)
	assert.Equal(t, 150.0, rec.End.Mileage, "end slot untouched")
	assert.True(t, rec.IsClosed)
}

func TestMergeIdentityMonotonic(t *testing.T) {
	t0 := time.Now().UTC()

	rec := Merge(nil, "s", domain.EventStart, Identity{DriverName: "A", VehiclePlate: "XYZ-1"}, mileageEvent(1), t0)
	rec = Merge(rec, "s", domain.EventEnd, Identity{DriverPhone: "+111"}, mileageEvent(2), t0)

	assert.Equal(t, "A", rec.Driver.Name, "absent fields never blank known values")
	assert.Equal(t, "XYZ-1", rec.Vehicle.Plate)
	assert.Equal(t, "+111", rec.Driver.Phone)

	rec = Merge(rec, "s", domain.EventEnd, Identity{DriverName: "B"}, mileageEvent(3), t0)
	assert.Equal(t, "B", rec.Driver.Name, "non-empty fields do overwrite")
}

func TestSanitizeID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "already safe", in: "shift-2026-03-10.am", want: "shift-2026-03-10.am"},
		{name: "spaces and slashes", in: " shift/10 march ", want: "shift-10-march"},
		{name: "empty", in: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeID(tt.in))
		})
	}
}

func TestDeriveIDFallback(t *testing.T) {
	id := DeriveID("")
	assert.True(t, strings.HasPrefix(id, "shift-"), "generated id: %s", id)
	assert.Equal(t, id, SanitizeID(id), "generated id is already safe")

	assert.Equal(t, "abc", DeriveID("abc"))
}
