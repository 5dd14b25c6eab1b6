package crossref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaskKey(t *testing.T) {
	tests := []struct {
		key         string
		wantProject string
		wantID      string
		wantErr     bool
	}{
		{key: "ST-4", wantProject: "ST", wantID: "4"},
		{key: " MDX-12 ", wantProject: "MDX", wantID: "12"},
		{key: "A1B2C-7", wantProject: "A1B2C", wantID: "7"},
		{key: "st-4", wantErr: true},
		{key: "TOOLONG-1", wantErr: true},
		{key: "ST-", wantErr: true},
		{key: "ST-4 extra", wantErr: true},
		{key: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			project, id, err := ParseTaskKey(tt.key)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantProject, project)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestFormatTaskKey(t *testing.T) {
	key := FormatTaskKey("ST", "4")
	assert.Equal(t, "ST-4", key)

	project, id, err := ParseTaskKey(key)
	require.NoError(t, err)
	assert.Equal(t, "ST", project)
	assert.Equal(t, "4", id)
}

func TestExtractTaskKeys(t *testing.T) {
	assert.Equal(t, []string{"MDX-3", "MOB-1"}, ExtractTaskKeys("MDX-3 blocks MOB-1, see MDX-3"))
	assert.Nil(t, ExtractTaskKeys("no keys in here"))
	assert.Nil(t, ExtractTaskKeys("lowercase mdx-3"))
}

func TestMatchTaskKeys(t *testing.T) {
	known := map[string]bool{"MDX-3": true}
	assert.Equal(t, []string{"MDX-3"}, MatchTaskKeys(known, "MDX-3 and", "MOB-1"))
	assert.Equal(t, []string{"MDX-3", "MOB-1"}, MatchTaskKeys(nil, "MDX-3 and", "MOB-1"))
}

func TestValidProjectKey(t *testing.T) {
	for key, want := range map[string]bool{
		"ST":     true,
		"MDX":    true,
		"A1":     true,
		"ABCDE":  true,
		"ABCDEF": false,
		"1AB":    false,
		"st":     false,
		"":       false,
		"S-T":    false,
	} {
		assert.Equal(t, want, ValidProjectKey(key), key)
	}
}
