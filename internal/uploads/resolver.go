// Upload resolver: turns client-declared blob references into archive-backed
// (or blob-fallback) upload results. Photos are processed sequentially so
// the generated labels stay stable: odometer, vehicle-1, vehicle-2, ...
package uploads

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"maqayees/internal/domain"
	"maqayees/internal/shifts"
	"maqayees/internal/util"
)

var (
	ErrMissingOdometerPhoto = errors.New("odometer photo is required")
	ErrMissingVehiclePhotos = errors.New("at least one vehicle photo is required")
	ErrMissingURL           = errors.New("upload reference has no url")
)

// FileRef is one client-declared upload: the transient blob URL plus
// whatever metadata the client kept from the original capture.
type FileRef struct {
	URL          string `json:"url"`
	OriginalName string `json:"originalName,omitempty"`
	Pathname     string `json:"pathname,omitempty"`
	ContentType  string `json:"contentType,omitempty"`
}

// Payload is the uploads section of a shift submission.
type Payload struct {
	OdometerPhoto *FileRef  `json:"odometerPhoto"`
	VehiclePhotos []FileRef `json:"vehiclePhotos"`
}

// Validate checks the payload shape before any I/O happens.
func (p Payload) Validate() error {
	if p.OdometerPhoto == nil {
		return ErrMissingOdometerPhoto
	}
	if len(p.VehiclePhotos) == 0 {
		return ErrMissingVehiclePhotos
	}
	if strings.TrimSpace(p.OdometerPhoto.URL) == "" {
		return fmt.Errorf("odometer photo: %w", ErrMissingURL)
	}
	for i, ref := range p.VehiclePhotos {
		if strings.TrimSpace(ref.URL) == "" {
			return fmt.Errorf("vehicle photo %d: %w", i+1, ErrMissingURL)
		}
	}
	return nil
}

// Downloader fetches a blob URL into a local file.
type Downloader interface {
	Download(ctx context.Context, url, destPath string) error
}

// ArchiveStore transfers a local file to the archive and returns the final
// remote path.
type ArchiveStore interface {
	Store(ctx context.Context, localPath, remotePath string) (string, error)
}

// Resolver downloads each referenced blob and relays it to the archive.
// When the archive is not configured (archive == nil) every result keeps its
// blob URL; that is the intended degraded mode, not an error.
type Resolver struct {
	logger      *zap.Logger
	blob        Downloader
	archive     ArchiveStore
	archiveBase string
	tempRoot    string
}

func NewResolver(logger *zap.Logger, blob Downloader, archive ArchiveStore, archiveBase, tempRoot string) *Resolver {
	return &Resolver{
		logger:      logger,
		blob:        blob,
		archive:     archive,
		archiveBase: strings.TrimRight(archiveBase, "/"),
		tempRoot:    tempRoot,
	}
}

// Resolve processes the payload for one shift submission. Temp files live in
// a directory owned by this call and are removed on every exit path.
func (r *Resolver) Resolve(ctx context.Context, shiftID string, p Payload) (*shifts.UploadSet, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	tempDir := ""
	if r.archive != nil {
		dir, err := os.MkdirTemp(r.tempRoot, "shift-upload-")
		if err != nil {
			return nil, fmt.Errorf("create temp dir: %w", err)
		}
		tempDir = dir
		defer func() {
			if rmErr := os.RemoveAll(tempDir); rmErr != nil {
				r.logger.Warn("temp dir cleanup failed", zap.String("dir", tempDir), zap.Error(rmErr))
			}
		}()
	}

	odo, err := r.resolveOne(ctx, shiftID, "odometer", *p.OdometerPhoto, tempDir)
	if err != nil {
		return nil, err
	}

	vehicle := make([]shifts.UploadResult, 0, len(p.VehiclePhotos))
	for i, ref := range p.VehiclePhotos {
		label := fmt.Sprintf("vehicle-%d", i+1)
		res, err := r.resolveOne(ctx, shiftID, label, ref, tempDir)
		if err != nil {
			return nil, err
		}
		vehicle = append(vehicle, res)
	}

	return &shifts.UploadSet{OdometerPhoto: odo, VehiclePhotos: vehicle}, nil
}

func (r *Resolver) resolveOne(ctx context.Context, shiftID, label string, ref FileRef, tempDir string) (shifts.UploadResult, error) {
	ext := util.SafeExt(ref.Pathname, ref.OriginalName)

	originalName := ref.OriginalName
	if originalName == "" {
		originalName = path.Base(ref.Pathname)
	}
	if originalName == "" || originalName == "." || originalName == "/" {
		originalName = label + ext
	}

	// Blob URL is the result until a relay succeeds.
	result := shifts.UploadResult{
		OriginalName: util.SanitizeName(originalName),
		RemotePath:   ref.URL,
		BlobPath:     ref.Pathname,
		BlobURL:      ref.URL,
		Location:     domain.LocationBlob,
		ContentType:  ref.ContentType,
	}

	if r.archive == nil {
		return result, nil
	}

	localPath := filepath.Join(tempDir, label+ext)
	if err := r.blob.Download(ctx, ref.URL, localPath); err != nil {
		// No fallback for the source file itself.
		return shifts.UploadResult{}, fmt.Errorf("download %s: %w", label, err)
	}

	remotePath := r.archiveBase + "/" + shiftID + "/" + label + ext
	stored, err := r.archive.Store(ctx, localPath, remotePath)
	if err != nil {
		r.logger.Warn("archive relay failed, keeping blob url",
			zap.String("shift_id", shiftID),
			zap.String("label", label),
			zap.Error(err),
		)
		return result, nil
	}

	result.RemotePath = stored
	result.Location = domain.LocationSynology
	return result, nil
}
