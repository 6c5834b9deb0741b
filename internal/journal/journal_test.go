package journal

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/lifequest/internal/quest"
)

func sample() []quest.Quest {
	return []quest.Quest{
		quest.New("read, then slept", quest.Verdict{Rank: "B", XP: 60, Title: "Reader"}, time.UnixMilli(2000)),
		quest.New("ran", quest.Verdict{Rank: "C", XP: 20}, time.UnixMilli(1000)),
		quest.New("meditated", quest.Verdict{Rank: "C", XP: 40}, time.UnixMilli(3000)),
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "id,timestamp,input,title,summary,rank,xp_awarded,aura_color,icon_html", lines[0])
	assert.Contains(t, lines[1], ",1000,ran,")
	assert.Contains(t, lines[2], `"read, then slept"`)
}

func TestCSVRoundTrip(t *testing.T) {
	in := sample()
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, in))

	out, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, in[1], out[0])
	assert.Equal(t, in[0], out[1])
}

func TestSummarize(t *testing.T) {
	s := Summarize(sample())
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 120, s.TotalXP)
	assert.InDelta(t, 40, s.MeanXP, 1e-9)
	assert.InDelta(t, 20, s.StdDev, 1e-9)
	assert.Equal(t, 2, s.ByRank[quest.RankC])
	assert.Equal(t, 1, s.ByRank[quest.RankB])
}

func TestSummarizeEdgeCases(t *testing.T) {
	empty := Summarize(nil)
	assert.Zero(t, empty.Count)
	assert.Zero(t, empty.MeanXP)

	one := Summarize(sample()[:1])
	assert.InDelta(t, 60, one.MeanXP, 1e-9)
	assert.Zero(t, one.StdDev)
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.csv")
	require.NoError(t, WriteCSVFile(path, sample()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := ReadCSV(f)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	assert.Error(t, WriteCSVFile(filepath.Join(t.TempDir(), "missing", "x.csv"), sample()))
}

func TestMerge(t *testing.T) {
	all := sample()
	have := all[:2]
	incoming := []quest.Quest{all[1], all[2], {Input: "no id"}}

	merged, added := Merge(have, incoming)
	require.Len(t, added, 1)
	assert.Equal(t, "meditated", added[0].Input)
	assert.Len(t, merged, 3)
	assert.Len(t, have, 2, "existing history is not modified")
}
