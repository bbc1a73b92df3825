package domain

// EventType marks which boundary of a shift a submission describes.
type EventType string

const (
	EventStart EventType = "start"
	EventEnd   EventType = "end"
)

// Valid reports whether the value is one of the two known event types.
func (e EventType) Valid() bool {
	return e == EventStart || e == EventEnd
}

// UploadLocation says where the final copy of an uploaded photo lives.
type UploadLocation string

const (
	// LocationBlob means the transient blob URL is the final reference
	// (relay skipped or failed).
	LocationBlob UploadLocation = "blob"
	// LocationSynology means the file was relayed to the FTP archive.
	LocationSynology UploadLocation = "synology"
)
