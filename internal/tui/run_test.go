package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carmenstack/spatialmatch/internal/dedup"
	"github.com/carmenstack/spatialmatch/internal/result"
)

func TestRunExplainPlainRendersResultsAndWaste(t *testing.T) {
	out := dedup.Output{
		Results: []result.Spatialmatch{
			result.NewSpatialmatch(0.9, []result.Cover{{Idx: 0, Zoom: 14, X: 1, Y: 2}}, false, nil),
		},
		Waste: [][]int{{3, 4}},
	}

	var buf bytes.Buffer
	require.NoError(t, RunExplain(out, &buf, true))

	text := buf.String()
	assert.Contains(t, text, "1 results, 1 waste entries")
	assert.Contains(t, text, "relev=0.9000")
	assert.Contains(t, text, "waste: [3 4]")
}

func TestIsTTYFalseForNonFile(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, isTTY(&buf))
}
