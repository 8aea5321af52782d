package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/drivemirror/internal/client/models"
	"github.com/dmitrijs2005/drivemirror/internal/common"
	"github.com/dmitrijs2005/drivemirror/internal/dbx"
)

const recordColumns = `identity_id, drive_id, file_id, global_transit_id, file_state,
	required_security_group, file_system_type, user_date, file_type, data_type,
	archival_status, history_status, sender_id, group_id, unique_id, byte_count,
	hdr_encrypted_key_header, hdr_version_tag, hdr_app_data, hdr_local_app_data,
	hdr_reaction_summary, hdr_server_data, hdr_transfer_history, hdr_file_metadata,
	created, modified`

// SQLRepository implements Repository over a DBTX.
type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) UpsertRecord(ctx context.Context, e models.IndexRecord) error {

	query := `INSERT INTO drive_main_index (` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(identity_id, drive_id, file_id) DO UPDATE SET
			global_transit_id = excluded.global_transit_id,
			file_state = excluded.file_state,
			required_security_group = excluded.required_security_group,
			file_system_type = excluded.file_system_type,
			user_date = excluded.user_date,
			file_type = excluded.file_type,
			data_type = excluded.data_type,
			archival_status = excluded.archival_status,
			history_status = excluded.history_status,
			sender_id = excluded.sender_id,
			group_id = excluded.group_id,
			unique_id = excluded.unique_id,
			byte_count = excluded.byte_count,
			hdr_encrypted_key_header = excluded.hdr_encrypted_key_header,
			hdr_version_tag = excluded.hdr_version_tag,
			hdr_app_data = excluded.hdr_app_data,
			hdr_local_app_data = excluded.hdr_local_app_data,
			hdr_reaction_summary = excluded.hdr_reaction_summary,
			hdr_server_data = excluded.hdr_server_data,
			hdr_transfer_history = excluded.hdr_transfer_history,
			hdr_file_metadata = excluded.hdr_file_metadata,
			created = excluded.created,
			modified = excluded.modified
	`
	_, err := r.db.ExecContext(ctx, query,
		e.IdentityID, e.DriveID, e.FileID, nullString(e.GlobalTransitID), string(e.FileState),
		e.RequiredSecurityGroup, e.FileSystemType, e.UserDate, e.FileType, e.DataType,
		e.ArchivalStatus, e.HistoryStatus, nullString(e.SenderID), nullString(e.GroupID), nullString(e.UniqueID), e.ByteCount,
		e.EncryptedKeyHeader, e.VersionTag, e.AppData, e.LocalAppData,
		e.ReactionSummary, e.ServerData, e.TransferHistory, e.FileMetadata,
		e.Created, e.Modified,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert index record %s: %w", e.FileID, err)
	}

	return nil
}

func (r *SQLRepository) ReplaceTags(ctx context.Context, key models.FileKey, tags []models.TagRecord, localTags []models.LocalTagRecord) error {

	if err := r.deleteTags(ctx, key); err != nil {
		return err
	}

	for _, t := range tags {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO drive_tag_index (identity_id, drive_id, file_id, tag_id) VALUES (?, ?, ?, ?)`,
			t.IdentityID, t.DriveID, t.FileID, t.TagID)
		if err != nil {
			return fmt.Errorf("failed to insert tag %s: %w", t.TagID, err)
		}
	}

	for _, t := range localTags {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO drive_local_tag_index (identity_id, drive_id, file_id, tag_id) VALUES (?, ?, ?, ?)`,
			t.IdentityID, t.DriveID, t.FileID, t.TagID)
		if err != nil {
			return fmt.Errorf("failed to insert local tag %s: %w", t.TagID, err)
		}
	}

	return nil
}

func (r *SQLRepository) deleteTags(ctx context.Context, key models.FileKey) error {
	const where = ` WHERE identity_id = ? AND drive_id = ? AND file_id = ?`

	if _, err := r.db.ExecContext(ctx, `DELETE FROM drive_tag_index`+where, key.IdentityID, key.DriveID, key.FileID); err != nil {
		return fmt.Errorf("failed to delete tags: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM drive_local_tag_index`+where, key.IdentityID, key.DriveID, key.FileID); err != nil {
		return fmt.Errorf("failed to delete local tags: %w", err)
	}
	return nil
}

func (r *SQLRepository) DeleteRecord(ctx context.Context, key models.FileKey) error {

	if err := r.deleteTags(ctx, key); err != nil {
		return err
	}

	query := `DELETE FROM drive_main_index WHERE identity_id = ? AND drive_id = ? AND file_id = ?`
	if _, err := r.db.ExecContext(ctx, query, key.IdentityID, key.DriveID, key.FileID); err != nil {
		return fmt.Errorf("failed to delete index record %s: %w", key.FileID, err)
	}

	return nil
}

func (r *SQLRepository) Get(ctx context.Context, key models.FileKey) (*models.IndexRecord, error) {

	query := `SELECT ` + recordColumns + ` FROM drive_main_index
		WHERE identity_id = ? AND drive_id = ? AND file_id = ?`
	row := r.db.QueryRowContext(ctx, query, key.IdentityID, key.DriveID, key.FileID)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get index record %s: %w", key.FileID, err)
	}

	return rec, nil
}

func (r *SQLRepository) SelectAll(ctx context.Context) ([]models.IndexRecord, error) {

	query := `SELECT ` + recordColumns + ` FROM drive_main_index
		ORDER BY identity_id, drive_id, file_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error selecting index records: %w", err)
	}
	defer rows.Close()

	var result []models.IndexRecord

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan index record: %w", err)
		}
		result = append(result, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *SQLRepository) CountAll(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM drive_main_index`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count index records: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) CountByState(ctx context.Context, state models.FileState) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM drive_main_index WHERE file_state = ?`, string(state)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s records: %w", state, err)
	}
	return n, nil
}

func (r *SQLRepository) TagsFor(ctx context.Context, key models.FileKey) ([]models.TagRecord, error) {
	ids, err := r.tagIDs(ctx, "drive_tag_index", key)
	if err != nil {
		return nil, err
	}

	result := make([]models.TagRecord, 0, len(ids))
	for _, id := range ids {
		result = append(result, models.TagRecord{FileKey: key, TagID: id})
	}
	return result, nil
}

func (r *SQLRepository) LocalTagsFor(ctx context.Context, key models.FileKey) ([]models.LocalTagRecord, error) {
	ids, err := r.tagIDs(ctx, "drive_local_tag_index", key)
	if err != nil {
		return nil, err
	}

	result := make([]models.LocalTagRecord, 0, len(ids))
	for _, id := range ids {
		result = append(result, models.LocalTagRecord{FileKey: key, TagID: id})
	}
	return result, nil
}

// tagIDs reads the tag ids of one file. table is one of the two fixed tag
// table names, never user input.
func (r *SQLRepository) tagIDs(ctx context.Context, table string, key models.FileKey) ([]string, error) {

	query := `SELECT tag_id FROM ` + table + `
		WHERE identity_id = ? AND drive_id = ? AND file_id = ? ORDER BY tag_id`
	rows, err := r.db.QueryContext(ctx, query, key.IdentityID, key.DriveID, key.FileID)
	if err != nil {
		return nil, fmt.Errorf("error selecting %s: %w", table, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*models.IndexRecord, error) {
	var (
		e                                models.IndexRecord
		state                            string
		transitID, senderID, groupID, uq sql.NullString
	)

	err := s.Scan(
		&e.IdentityID, &e.DriveID, &e.FileID, &transitID, &state,
		&e.RequiredSecurityGroup, &e.FileSystemType, &e.UserDate, &e.FileType, &e.DataType,
		&e.ArchivalStatus, &e.HistoryStatus, &senderID, &groupID, &uq, &e.ByteCount,
		&e.EncryptedKeyHeader, &e.VersionTag, &e.AppData, &e.LocalAppData,
		&e.ReactionSummary, &e.ServerData, &e.TransferHistory, &e.FileMetadata,
		&e.Created, &e.Modified,
	)
	if err != nil {
		return nil, err
	}

	e.FileState = models.FileState(state)
	e.GlobalTransitID = stringPtr(transitID)
	e.SenderID = stringPtr(senderID)
	e.GroupID = stringPtr(groupID)
	e.UniqueID = stringPtr(uq)

	return &e, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
