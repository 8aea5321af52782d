package driveapi

import (
	"encoding/json"

	"github.com/dmitrijs2005/drivemirror/internal/client/models"
	"github.com/dmitrijs2005/drivemirror/internal/cryptox"
)

// DefaultMaxRecords is used when a request leaves MaxRecords unset.
const DefaultMaxRecords = 100

type Ordering string

const (
	OrderingDefault     Ordering = ""
	OrderingNewestFirst Ordering = "newestFirst"
	OrderingOldestFirst Ordering = "oldestFirst"
)

type Sorting string

const (
	SortingDefault       Sorting = ""
	SortingAnyChangeDate Sorting = "anyChangeDate"
	SortingUserDate      Sorting = "userDate"
	SortingFileID        Sorting = "fileId"
)

// TargetDrive selects the drive a query runs against.
type TargetDrive struct {
	Alias string `json:"alias"`
	Type  string `json:"type"`
}

// FileQueryParams is the predicate part of a query. Empty lists do not
// constrain the result.
type FileQueryParams struct {
	TargetDrive              TargetDrive        `json:"targetDrive"`
	FileType                 []int              `json:"fileType,omitempty"`
	DataType                 []int              `json:"dataType,omitempty"`
	FileState                []models.FileState `json:"fileState,omitempty"`
	ArchivalStatus           []int              `json:"archivalStatus,omitempty"`
	Sender                   []string           `json:"sender,omitempty"`
	GroupID                  []string           `json:"groupId,omitempty"`
	GlobalTransitID          []string           `json:"globalTransitId,omitempty"`
	UniqueID                 []string           `json:"uniqueId,omitempty"`
	TagsMatchAtLeastOne      []string           `json:"tagsMatchAtLeastOne,omitempty"`
	TagsMatchAll             []string           `json:"tagsMatchAll,omitempty"`
	LocalTagsMatchAtLeastOne []string           `json:"localTagsMatchAtLeastOne,omitempty"`
	LocalTagsMatchAll        []string           `json:"localTagsMatchAll,omitempty"`
}

// ResultOptions controls paging and the shape of returned records.
type ResultOptions struct {
	CursorState             string   `json:"cursorState,omitempty"`
	MaxRecords              int      `json:"maxRecords"`
	IncludeHeaderContent    bool     `json:"includeHeaderContent"`
	ExcludePreviewThumbnail bool     `json:"excludePreviewThumbnail"`
	ExcludeServerMetaData   bool     `json:"excludeServerMetaData"`
	IncludeTransferHistory  bool     `json:"includeTransferHistory"`
	Ordering                Ordering `json:"ordering,omitempty"`
	Sorting                 Sorting  `json:"sorting,omitempty"`
}

type QueryBatchRequest struct {
	QueryParams          FileQueryParams `json:"queryParams"`
	ResultOptionsRequest ResultOptions   `json:"resultOptionsRequest"`
}

type QueryBatchOptions struct {
	// Decrypt replaces encrypted app-data content with its plaintext.
	Decrypt bool
}

type QueryBatchResponse struct {
	Name                  string         `json:"name,omitempty"`
	IncludeMetadataHeader bool           `json:"includeMetadataHeader"`
	CursorState           string         `json:"cursorState"`
	QueryTime             int64          `json:"queryTime"`
	SearchResults         []SearchResult `json:"searchResults"`
}

// SearchResult is one file header returned by a query.
type SearchResult struct {
	FileID                         string                      `json:"fileId"`
	FileState                      models.FileState            `json:"fileState"`
	FileSystemType                 int                         `json:"fileSystemType"`
	SharedSecretEncryptedKeyHeader *cryptox.EncryptedKeyHeader `json:"sharedSecretEncryptedKeyHeader,omitempty"`
	FileMetadata                   FileMetadata                `json:"fileMetadata"`
	ServerMetadata                 *ServerMetadata             `json:"serverMetadata,omitempty"`

	// DecryptError is set when decryption was requested and failed for this
	// record. The content is left as received.
	DecryptError error `json:"-"`
}

type FileMetadata struct {
	GlobalTransitID *string         `json:"globalTransitId,omitempty"`
	Created         int64           `json:"created"`
	Updated         int64           `json:"updated"`
	IsEncrypted     bool            `json:"isEncrypted"`
	SenderID        *string         `json:"senderOdinId,omitempty"`
	HistoryStatus   int             `json:"historyStatus"`
	VersionTag      string          `json:"versionTag,omitempty"`
	AppData         AppData         `json:"appData"`
	LocalAppData    *LocalAppData   `json:"localAppData,omitempty"`
	ReactionPreview json.RawMessage `json:"reactionPreview,omitempty"`
}

type AppData struct {
	UniqueID         *string         `json:"uniqueId,omitempty"`
	GroupID          *string         `json:"groupId,omitempty"`
	Tags             []string        `json:"tags,omitempty"`
	FileType         int             `json:"fileType"`
	DataType         int             `json:"dataType"`
	UserDate         int64           `json:"userDate"`
	ArchivalStatus   int             `json:"archivalStatus"`
	Content          string          `json:"content,omitempty"`
	PreviewThumbnail json.RawMessage `json:"previewThumbnail,omitempty"`
}

type LocalAppData struct {
	VersionTag string   `json:"versionTag,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Content    string   `json:"content,omitempty"`
}

type AccessControlList struct {
	RequiredSecurityGroup int `json:"requiredSecurityGroup"`
}

type ServerMetadata struct {
	AccessControlList AccessControlList `json:"accessControlList"`
	AllowDistribution bool              `json:"allowDistribution"`
	FileSystemType    int               `json:"fileSystemType"`
	FileByteCount     int64             `json:"fileByteCount"`
	TransferHistory   json.RawMessage   `json:"transferHistory,omitempty"`
}
