package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/clearway/internal/journal"
)

var csvHeader = []string{"Date", "Drank", "Amount", "Feeling", "Score"}

func ToCSV(entries []journal.Entry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, e := range entries {
		row := []string{
			e.Date,
			yesNo(e.Drank),
			strconv.Itoa(e.Amount),
			feelingLabel(e.Feeling),
			strconv.Itoa(e.Feeling.Score()),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// feelingLabel leaves an unset feeling blank instead of "Not specified".
func feelingLabel(m journal.Mood) string {
	if m == journal.MoodUnset {
		return ""
	}
	return string(m)
}
