package uploads

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"maqayees/internal/domain"
)

type fakeDownloader struct {
	err   error
	calls []string
}

func (f *fakeDownloader) Download(_ context.Context, url, destPath string) error {
	f.calls = append(f.calls, url)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(destPath, []byte("jpeg-bytes"), 0o644)
}

type fakeArchive struct {
	err   error
	paths []string
}

func (f *fakeArchive) Store(_ context.Context, localPath, remotePath string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := os.Stat(localPath); err != nil {
		return "", err
	}
	f.paths = append(f.paths, remotePath)
	return remotePath, nil
}

func payloadWith(vehicles ...string) Payload {
	refs := make([]FileRef, 0, len(vehicles))
	for _, u := range vehicles {
		refs = append(refs, FileRef{URL: u})
	}
	return Payload{
		OdometerPhoto: &FileRef{URL: "https://blob/o.jpg", Pathname: "tmp/o.jpg", OriginalName: "odometer snap.jpg"},
		VehiclePhotos: refs,
	}
}

func TestPayloadValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		wantErr error
	}{
		{name: "valid", payload: payloadWith("https://blob/v1.jpg")},
		{name: "no odometer", payload: Payload{VehiclePhotos: []FileRef{{URL: "u"}}}, wantErr: ErrMissingOdometerPhoto},
		{name: "no vehicle photos", payload: Payload{OdometerPhoto: &FileRef{URL: "u"}}, wantErr: ErrMissingVehiclePhotos},
		{name: "empty vehicle list", payload: Payload{OdometerPhoto: &FileRef{URL: "u"}, VehiclePhotos: []FileRef{}}, wantErr: ErrMissingVehiclePhotos},
		{name: "vehicle without url", payload: payloadWith(""), wantErr: ErrMissingURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestResolveArchiveDisabled(t *testing.T) {
	dl := &fakeDownloader{}
	r := NewResolver(zap.NewNop(), dl, nil, "", t.TempDir())

	set, err := r.Resolve(context.Background(), "shift-1", payloadWith("https://blob/v1.jpg", "https://blob/v2.png"))
	require.NoError(t, err)

	assert.Empty(t, dl.calls, "no downloads when the archive is off")
	assert.Equal(t, domain.LocationBlob, set.OdometerPhoto.Location)
	assert.Equal(t, "https://blob/o.jpg", set.OdometerPhoto.RemotePath)
	require.Len(t, set.VehiclePhotos, 2)
	for _, v := range set.VehiclePhotos {
		assert.Equal(t, domain.LocationBlob, v.Location)
		assert.Equal(t, v.BlobURL, v.RemotePath)
	}
}

func TestResolveRelaySuccess(t *testing.T) {
	dl := &fakeDownloader{}
	ar := &fakeArchive{}
	tempRoot := t.TempDir()
	r := NewResolver(zap.NewNop(), dl, ar, "/fleet/shifts", tempRoot)

	set, err := r.Resolve(context.Background(), "shift-1", payloadWith("https://blob/v1.jpg", "https://blob/v2.jpg"))
	require.NoError(t, err)

	assert.Equal(t, domain.LocationSynology, set.OdometerPhoto.Location)
	assert.Equal(t, "/fleet/shifts/shift-1/odometer.jpg", set.OdometerPhoto.RemotePath)
	assert.Equal(t, "https://blob/o.jpg", set.OdometerPhoto.BlobURL, "blob reference retained")
	assert.Equal(t, "odometer-snap.jpg", set.OdometerPhoto.OriginalName)

	require.Len(t, set.VehiclePhotos, 2)
	assert.Equal(t, "/fleet/shifts/shift-1/vehicle-1.jpg", set.VehiclePhotos[0].RemotePath)
	assert.Equal(t, "/fleet/shifts/shift-1/vehicle-2.jpg", set.VehiclePhotos[1].RemotePath)

	// declared order: odometer first, then vehicles by index
	assert.Equal(t, []string{"https://blob/o.jpg", "https://blob/v1.jpg", "https://blob/v2.jpg"}, dl.calls)

	assertTempEmpty(t, tempRoot)
}

func TestResolveRelayFailureFallsBack(t *testing.T) {
	dl := &fakeDownloader{}
	ar := &fakeArchive{err: errors.New("ftp: connection refused")}
	tempRoot := t.TempDir()
	r := NewResolver(zap.NewNop(), dl, ar, "/fleet/shifts", tempRoot)

	set, err := r.Resolve(context.Background(), "shift-1", payloadWith("https://blob/v1.jpg"))
	require.NoError(t, err, "relay failure is not a request failure")

	assert.Equal(t, domain.LocationBlob, set.OdometerPhoto.Location)
	assert.Equal(t, "https://blob/o.jpg", set.OdometerPhoto.RemotePath)
	assert.Equal(t, domain.LocationBlob, set.VehiclePhotos[0].Location)

	assertTempEmpty(t, tempRoot)
}

func TestResolveDownloadFailureAborts(t *testing.T) {
	dl := &fakeDownloader{err: errors.New("http 404")}
	ar := &fakeArchive{}
	tempRoot := t.TempDir()
	r := NewResolver(zap.NewNop(), dl, ar, "/fleet/shifts", tempRoot)

	_, err := r.Resolve(context.Background(), "shift-1", payloadWith("https://blob/v1.jpg"))
	require.Error(t, err, "no fallback for the source file itself")

	assertTempEmpty(t, tempRoot)
}

// assertTempEmpty verifies the per-request temp dir was removed on exit.
func assertTempEmpty(t *testing.T, root string) {
	t.Helper()
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	for _, e := range entries {
		assert.Fail(t, "leftover temp entry", filepath.Join(root, e.Name()))
	}
}
