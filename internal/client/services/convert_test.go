package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/drivemirror/internal/client/driveapi"
	"github.com/dmitrijs2005/drivemirror/internal/client/models"
	"github.com/dmitrijs2005/drivemirror/internal/cryptox"
)

func TestToBatch_MapsHeaderFields(t *testing.T) {
	uid, gid, sender, transit := "uq", "grp", "sender", "gt"
	r := driveapi.SearchResult{
		FileID:                         "f1",
		FileState:                      models.FileStateActive,
		FileSystemType:                 128,
		SharedSecretEncryptedKeyHeader: &cryptox.EncryptedKeyHeader{EncryptionVersion: 1, Type: "aes", Iv: []byte{1}, EncryptedAesKey: []byte{2}},
		FileMetadata: driveapi.FileMetadata{
			GlobalTransitID: &transit,
			Created:         100,
			Updated:         200,
			SenderID:        &sender,
			HistoryStatus:   2,
			VersionTag:      "v1",
			AppData: driveapi.AppData{
				UniqueID: &uid, GroupID: &gid,
				Tags:     []string{"a", "b", "a"},
				FileType: 10, DataType: 20, UserDate: 300, ArchivalStatus: 1,
				Content: "hello",
			},
			LocalAppData:    &driveapi.LocalAppData{Tags: []string{"l"}},
			ReactionPreview: json.RawMessage(`{"likes":3}`),
		},
		ServerMetadata: &driveapi.ServerMetadata{
			AccessControlList: driveapi.AccessControlList{RequiredSecurityGroup: 4},
			FileByteCount:     2048,
			TransferHistory:   json.RawMessage(`[]`),
		},
	}

	b, err := ToBatch("identity", "drive", r)
	require.NoError(t, err)

	key := models.FileKey{IdentityID: "identity", DriveID: "drive", FileID: "f1"}
	rec := b.Record
	assert.Equal(t, key, rec.FileKey)
	assert.Equal(t, &transit, rec.GlobalTransitID)
	assert.Equal(t, &uid, rec.UniqueID)
	assert.Equal(t, &gid, rec.GroupID)
	assert.Equal(t, &sender, rec.SenderID)
	assert.Equal(t, 4, rec.RequiredSecurityGroup)
	assert.Equal(t, 128, rec.FileSystemType)
	assert.Equal(t, 10, rec.FileType)
	assert.Equal(t, 20, rec.DataType)
	assert.Equal(t, int64(300), rec.UserDate)
	assert.Equal(t, 1, rec.ArchivalStatus)
	assert.Equal(t, 2, rec.HistoryStatus)
	assert.Equal(t, int64(2048), rec.ByteCount)
	assert.Equal(t, int64(100), rec.Created)
	assert.Equal(t, int64(200), rec.Modified)
	assert.Equal(t, []byte("v1"), rec.VersionTag)
	assert.JSONEq(t, `{"likes":3}`, string(rec.ReactionSummary))
	assert.JSONEq(t, `[]`, string(rec.TransferHistory))

	var app driveapi.AppData
	require.NoError(t, json.Unmarshal(rec.AppData, &app))
	assert.Equal(t, "hello", app.Content)

	var ekh cryptox.EncryptedKeyHeader
	require.NoError(t, json.Unmarshal(rec.EncryptedKeyHeader, &ekh))
	assert.Equal(t, []byte{2}, ekh.EncryptedAesKey)

	assert.Equal(t, []models.TagRecord{{FileKey: key, TagID: "a"}, {FileKey: key, TagID: "b"}}, b.Tags)
	assert.Equal(t, []models.LocalTagRecord{{FileKey: key, TagID: "l"}}, b.LocalTags)
	assert.Nil(t, b.Cursor)
}

func TestToBatch_OptionalSectionsMissing(t *testing.T) {
	b, err := ToBatch("i", "d", driveapi.SearchResult{FileID: "f", FileState: models.FileStateDraft})
	require.NoError(t, err)
	assert.Nil(t, b.Record.EncryptedKeyHeader)
	assert.Nil(t, b.Record.ServerData)
	assert.Nil(t, b.Record.LocalAppData)
	assert.Nil(t, b.Record.VersionTag)
	assert.Zero(t, b.Record.ByteCount)
	assert.Empty(t, b.Tags)
	assert.Empty(t, b.LocalTags)
}
