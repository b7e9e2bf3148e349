package queryfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `{
  "tokens": ["main", "st"],
  "results": [
    {
      "idx": 0,
      "nmask": 0,
      "bmask": 0,
      "phrasematches": [
        {"idx": 0, "mask": 1, "weight": 0.8, "score_factor": 1.0, "zoom": 14}
      ]
    }
  ],
  "options": {
    "proximity": {"lon": -122.4, "lat": 37.7},
    "allowed_idx": [0]
  },
  "grid_refs": {"0": 42}
}`

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.json")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))
	return path
}

func TestLoadParsesFixture(t *testing.T) {
	req, err := Load(writeFixture(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"main", "st"}, req.Tokens)
	require.Len(t, req.Results, 1)
	require.Len(t, req.Results[0].Phrasematches, 1)
	assert.Equal(t, 0.8, req.Results[0].Phrasematches[0].Weight)
}

func TestToPhrasematchResultsConverts(t *testing.T) {
	req, err := Load(writeFixture(t))
	require.NoError(t, err)

	results := req.ToPhrasematchResults()
	require.Len(t, results, 1)
	require.Len(t, results[0].Phrasematches, 1)
	assert.Equal(t, 0, results[0].Phrasematches[0].Idx)
	assert.Equal(t, 14, results[0].Phrasematches[0].Zoom)
}

func TestToOptionsSetsProximityAndAllowedIdx(t *testing.T) {
	req, err := Load(writeFixture(t))
	require.NoError(t, err)

	opts := req.ToOptions()
	require.NotNil(t, opts.Proximity)
	assert.Equal(t, -122.4, opts.Proximity.Lon)
	assert.True(t, opts.AllowedIdx[0])
}

func TestGridRefResolverResolvesByIdx(t *testing.T) {
	req, err := Load(writeFixture(t))
	require.NoError(t, err)

	resolver, err := req.NewGridRefResolver()
	require.NoError(t, err)

	ref, ok := resolver.GridRef(0)
	require.True(t, ok)
	assert.Equal(t, uint64(42), ref)

	_, ok = resolver.GridRef(5)
	assert.False(t, ok)
}
