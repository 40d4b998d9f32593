package pagination

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: "42", CreatedAt: "2026-08-01T09:00:00Z"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	decoded, err := DecodeCursor(token)
	require.NoError(t, err)
	require.Equal(t, "42", decoded.ID)
	require.Equal(t, "2026-08-01T09:00:00Z", decoded.CreatedAt)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("not base64!!!")
	require.Error(t, err)

	_, err = DecodeCursor("bm90IGpzb24=")
	require.Error(t, err)
}

type row struct{ id string }

func TestBuildCursorPageInfo(t *testing.T) {
	extract := func(r *row) string { return r.id }
	page := func(ids ...string) []*row {
		out := make([]*row, 0, len(ids))
		for _, id := range ids {
			out = append(out, &row{id: id})
		}
		return out
	}

	tests := []struct {
		name      string
		rows      []*row
		limit     int
		wantMore  bool
		wantToken string
	}{
		{name: "empty page", rows: nil, limit: 2, wantMore: false, wantToken: ""},
		{name: "partial page", rows: page("a"), limit: 2, wantMore: false, wantToken: "a"},
		{name: "exact page", rows: page("a", "b"), limit: 2, wantMore: false, wantToken: "b"},
		{name: "overflow page", rows: page("a", "b", "c"), limit: 2, wantMore: true, wantToken: "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := BuildCursorPageInfo(tt.rows, tt.limit, extract)
			require.Equal(t, tt.wantMore, info.HasMore)
			require.Equal(t, tt.wantToken, info.NextPageToken)
		})
	}
}
