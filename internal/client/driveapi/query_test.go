package driveapi

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/drivemirror/internal/client/models"
)

func TestValues_FlatKeys(t *testing.T) {
	req := QueryBatchRequest{
		QueryParams: FileQueryParams{
			TargetDrive:         TargetDrive{Alias: "a", Type: "t"},
			FileType:            []int{1, 2},
			FileState:           []models.FileState{models.FileStateActive},
			TagsMatchAtLeastOne: []string{"x", "y"},
		},
		ResultOptionsRequest: ResultOptions{CursorState: "c", MaxRecords: 10, Ordering: OrderingNewestFirst},
	}

	v := req.Values()
	assert.Equal(t, "a", v.Get("targetDrive.alias"))
	assert.Equal(t, []string{"1", "2"}, v["fileType"])
	assert.Equal(t, []string{"x", "y"}, v["tagsMatchAtLeastOne"])
	assert.Equal(t, "c", v.Get("resultOptionsRequest.cursorState"))
	assert.Equal(t, "10", v.Get("resultOptionsRequest.maxRecords"))
	assert.Equal(t, "newestFirst", v.Get("resultOptionsRequest.ordering"))
	assert.False(t, v.Has("resultOptionsRequest.sorting"))

	back, err := ParseValues(v)
	require.NoError(t, err)
	if diff := cmp.Diff(req, back); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseValues_RejectsMalformedNumbers(t *testing.T) {
	_, err := ParseValues(url.Values{"fileType": {"abc"}})
	require.ErrorContains(t, err, "fileType")

	_, err = ParseValues(url.Values{"resultOptionsRequest.maxRecords": {"many"}})
	require.ErrorContains(t, err, "maxRecords")

	_, err = ParseValues(url.Values{"resultOptionsRequest.includeHeaderContent": {"maybe"}})
	require.ErrorContains(t, err, "includeHeaderContent")
}
