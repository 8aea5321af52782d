// Package models defines the client-side rows of the local drive index.
package models

// FileState is the lifecycle state of a drive file as reported by the server.
type FileState string

const (
	FileStateDraft   FileState = "draft"
	FileStateActive  FileState = "active"
	FileStateDeleted FileState = "deleted"
)

// Valid reports whether s is one of the known states.
func (s FileState) Valid() bool {
	switch s {
	case FileStateDraft, FileStateActive, FileStateDeleted:
		return true
	}
	return false
}

// FileKey identifies one file in the index. The triple is unique across the
// whole store.
type FileKey struct {
	IdentityID string
	DriveID    string
	FileID     string
}

// IndexRecord is one row of the main index. Header blobs are kept opaque;
// the index only needs them to rebuild a file header without a round trip.
type IndexRecord struct {
	FileKey

	// GlobalTransitID links copies of the same file across identities.
	GlobalTransitID *string

	FileState             FileState
	RequiredSecurityGroup int
	FileSystemType        int
	UserDate              int64
	FileType              int
	DataType              int
	ArchivalStatus        int
	HistoryStatus         int

	SenderID *string
	GroupID  *string
	UniqueID *string

	ByteCount int64

	EncryptedKeyHeader []byte
	VersionTag         []byte
	AppData            []byte
	LocalAppData       []byte
	ReactionSummary    []byte
	ServerData         []byte
	TransferHistory    []byte
	FileMetadata       []byte

	// Created and Modified are unix milliseconds.
	Created  int64
	Modified int64
}

// TagRecord associates a server-side tag with a file.
type TagRecord struct {
	FileKey
	TagID string
}

// LocalTagRecord associates a device-local tag with a file.
type LocalTagRecord struct {
	FileKey
	TagID string
}
