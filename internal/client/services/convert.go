package services

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/drivemirror/internal/client/driveapi"
	"github.com/dmitrijs2005/drivemirror/internal/client/models"
)

// ToBatch converts one search result into the rows stored for it. Header
// sections are kept as their JSON encoding.
func ToBatch(identityID, driveID string, r driveapi.SearchResult) (Batch, error) {
	key := models.FileKey{IdentityID: identityID, DriveID: driveID, FileID: r.FileID}
	md := r.FileMetadata

	rec := models.IndexRecord{
		FileKey:         key,
		GlobalTransitID: md.GlobalTransitID,
		FileState:       r.FileState,
		FileSystemType:  r.FileSystemType,
		UserDate:        md.AppData.UserDate,
		FileType:        md.AppData.FileType,
		DataType:        md.AppData.DataType,
		ArchivalStatus:  md.AppData.ArchivalStatus,
		HistoryStatus:   md.HistoryStatus,
		SenderID:        md.SenderID,
		GroupID:         md.AppData.GroupID,
		UniqueID:        md.AppData.UniqueID,
		ReactionSummary: md.ReactionPreview,
		Created:         md.Created,
		Modified:        md.Updated,
	}
	if md.VersionTag != "" {
		rec.VersionTag = []byte(md.VersionTag)
	}

	var err error
	if r.SharedSecretEncryptedKeyHeader != nil {
		if rec.EncryptedKeyHeader, err = json.Marshal(r.SharedSecretEncryptedKeyHeader); err != nil {
			return Batch{}, fmt.Errorf("encode key header: %w", err)
		}
	}
	if rec.AppData, err = json.Marshal(md.AppData); err != nil {
		return Batch{}, fmt.Errorf("encode app data: %w", err)
	}
	if md.LocalAppData != nil {
		if rec.LocalAppData, err = json.Marshal(md.LocalAppData); err != nil {
			return Batch{}, fmt.Errorf("encode local app data: %w", err)
		}
	}
	if sm := r.ServerMetadata; sm != nil {
		rec.RequiredSecurityGroup = sm.AccessControlList.RequiredSecurityGroup
		rec.ByteCount = sm.FileByteCount
		rec.TransferHistory = sm.TransferHistory
		if rec.ServerData, err = json.Marshal(sm); err != nil {
			return Batch{}, fmt.Errorf("encode server metadata: %w", err)
		}
	}
	if rec.FileMetadata, err = json.Marshal(md); err != nil {
		return Batch{}, fmt.Errorf("encode file metadata: %w", err)
	}

	b := Batch{Record: rec}
	for _, id := range unique(md.AppData.Tags) {
		b.Tags = append(b.Tags, models.TagRecord{FileKey: key, TagID: id})
	}
	if md.LocalAppData != nil {
		for _, id := range unique(md.LocalAppData.Tags) {
			b.LocalTags = append(b.LocalTags, models.LocalTagRecord{FileKey: key, TagID: id})
		}
	}

	return b, nil
}

// unique drops repeated ids, keeping the first occurrence.
func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
