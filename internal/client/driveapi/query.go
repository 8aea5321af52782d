package driveapi

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/drivemirror/internal/client/models"
)

const resultPrefix = "resultOptionsRequest."

// Values flattens the request into query-string form. Lists become
// repeated keys and result options are prefixed with "resultOptionsRequest.".
func (r QueryBatchRequest) Values() url.Values {
	v := url.Values{}
	q := r.QueryParams

	v.Set("targetDrive.alias", q.TargetDrive.Alias)
	v.Set("targetDrive.type", q.TargetDrive.Type)
	addInts(v, "fileType", q.FileType)
	addInts(v, "dataType", q.DataType)
	for _, s := range q.FileState {
		v.Add("fileState", string(s))
	}
	addInts(v, "archivalStatus", q.ArchivalStatus)
	addStrings(v, "sender", q.Sender)
	addStrings(v, "groupId", q.GroupID)
	addStrings(v, "globalTransitId", q.GlobalTransitID)
	addStrings(v, "uniqueId", q.UniqueID)
	addStrings(v, "tagsMatchAtLeastOne", q.TagsMatchAtLeastOne)
	addStrings(v, "tagsMatchAll", q.TagsMatchAll)
	addStrings(v, "localTagsMatchAtLeastOne", q.LocalTagsMatchAtLeastOne)
	addStrings(v, "localTagsMatchAll", q.LocalTagsMatchAll)

	o := r.ResultOptionsRequest
	if o.CursorState != "" {
		v.Set(resultPrefix+"cursorState", o.CursorState)
	}
	v.Set(resultPrefix+"maxRecords", strconv.Itoa(o.MaxRecords))
	v.Set(resultPrefix+"includeHeaderContent", strconv.FormatBool(o.IncludeHeaderContent))
	v.Set(resultPrefix+"excludePreviewThumbnail", strconv.FormatBool(o.ExcludePreviewThumbnail))
	v.Set(resultPrefix+"excludeServerMetaData", strconv.FormatBool(o.ExcludeServerMetaData))
	v.Set(resultPrefix+"includeTransferHistory", strconv.FormatBool(o.IncludeTransferHistory))
	if o.Ordering != OrderingDefault {
		v.Set(resultPrefix+"ordering", string(o.Ordering))
	}
	if o.Sorting != SortingDefault {
		v.Set(resultPrefix+"sorting", string(o.Sorting))
	}

	return v
}

// ParseValues is the inverse of Values.
func ParseValues(v url.Values) (QueryBatchRequest, error) {
	var (
		r   QueryBatchRequest
		err error
	)
	q := &r.QueryParams

	q.TargetDrive.Alias = v.Get("targetDrive.alias")
	q.TargetDrive.Type = v.Get("targetDrive.type")
	if q.FileType, err = parseInts(v, "fileType"); err != nil {
		return r, err
	}
	if q.DataType, err = parseInts(v, "dataType"); err != nil {
		return r, err
	}
	for _, s := range v["fileState"] {
		q.FileState = append(q.FileState, models.FileState(s))
	}
	if q.ArchivalStatus, err = parseInts(v, "archivalStatus"); err != nil {
		return r, err
	}
	q.Sender = v["sender"]
	q.GroupID = v["groupId"]
	q.GlobalTransitID = v["globalTransitId"]
	q.UniqueID = v["uniqueId"]
	q.TagsMatchAtLeastOne = v["tagsMatchAtLeastOne"]
	q.TagsMatchAll = v["tagsMatchAll"]
	q.LocalTagsMatchAtLeastOne = v["localTagsMatchAtLeastOne"]
	q.LocalTagsMatchAll = v["localTagsMatchAll"]

	o := &r.ResultOptionsRequest
	o.CursorState = v.Get(resultPrefix + "cursorState")
	if s := v.Get(resultPrefix + "maxRecords"); s != "" {
		if o.MaxRecords, err = strconv.Atoi(s); err != nil {
			return r, fmt.Errorf("maxRecords: %w", err)
		}
	}
	for key, dst := range map[string]*bool{
		"includeHeaderContent":    &o.IncludeHeaderContent,
		"excludePreviewThumbnail": &o.ExcludePreviewThumbnail,
		"excludeServerMetaData":   &o.ExcludeServerMetaData,
		"includeTransferHistory":  &o.IncludeTransferHistory,
	} {
		if s := v.Get(resultPrefix + key); s != "" {
			if *dst, err = strconv.ParseBool(s); err != nil {
				return r, fmt.Errorf("%s: %w", key, err)
			}
		}
	}
	o.Ordering = Ordering(v.Get(resultPrefix + "ordering"))
	o.Sorting = Sorting(v.Get(resultPrefix + "sorting"))

	return r, nil
}

func addInts(v url.Values, key string, xs []int) {
	for _, x := range xs {
		v.Add(key, strconv.Itoa(x))
	}
}

func addStrings(v url.Values, key string, xs []string) {
	for _, x := range xs {
		v.Add(key, x)
	}
}

func parseInts(v url.Values, key string) ([]int, error) {
	raw := v[key]
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]int, 0, len(raw))
	for _, s := range raw {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out = append(out, n)
	}
	return out, nil
}
