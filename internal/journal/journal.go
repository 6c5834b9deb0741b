// Package journal exports quest history and summarizes it.
package journal

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"

	"github.com/iburimskiy/lifequest/internal/quest"
)

// WriteCSV writes quests as CSV with a header row, oldest first.
func WriteCSV(w io.Writer, quests []quest.Quest) error {
	rows := append([]quest.Quest(nil), quests...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Timestamp < rows[j].Timestamp })
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing journal: %w", err)
	}
	return nil
}

// WriteCSVFile writes quests to path, replacing any existing file.
func WriteCSVFile(path string, quests []quest.Quest) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating journal: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing journal: %w", cerr)
		}
	}()
	return WriteCSV(f, quests)
}

// ReadCSV parses a journal written by WriteCSV.
func ReadCSV(r io.Reader) ([]quest.Quest, error) {
	var rows []quest.Quest
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("reading journal: %w", err)
	}
	return rows, nil
}

// Merge appends the incoming quests whose IDs are not in existing and
// returns the merged history along with the quests it added.
func Merge(existing, incoming []quest.Quest) (merged, added []quest.Quest) {
	seen := make(map[string]bool, len(existing))
	for _, q := range existing {
		seen[q.ID] = true
	}
	merged = append([]quest.Quest(nil), existing...)
	for _, q := range incoming {
		if q.ID == "" || seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		merged = append(merged, q)
		added = append(added, q)
	}
	return merged, added
}

// Summary aggregates XP over a history.
type Summary struct {
	Count   int
	TotalXP int
	MeanXP  float64
	StdDev  float64
	ByRank  map[quest.Rank]int
}

// Summarize computes XP statistics for quests.
func Summarize(quests []quest.Quest) Summary {
	s := Summary{Count: len(quests), ByRank: map[quest.Rank]int{}}
	if len(quests) == 0 {
		return s
	}
	xs := make([]float64, len(quests))
	for i, q := range quests {
		xs[i] = float64(q.XPAwarded)
		s.TotalXP += q.XPAwarded
		s.ByRank[q.Rank]++
	}
	s.MeanXP, s.StdDev = stat.MeanStdDev(xs, nil)
	if len(xs) == 1 {
		s.StdDev = 0
	}
	return s
}
