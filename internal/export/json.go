package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/clearway/internal/journal"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Count      int         `json:"count"`
	DaysDrank  int         `json:"days_drank"`
	Drinks     int         `json:"total_drinks"`
	Entries    []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	Date    string `json:"date"`
	Drank   bool   `json:"drank"`
	Amount  int    `json:"amount"`
	Feeling string `json:"feeling,omitempty"`
	Score   int    `json:"score"`
}

func ToJSON(entries []journal.Entry, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(entries),
		Entries:    make([]jsonEntry, 0, len(entries)),
	}

	for _, e := range entries {
		if e.Drank {
			export.DaysDrank++
		}
		export.Drinks += e.Amount
		export.Entries = append(export.Entries, jsonEntry{
			Date:    e.Date,
			Drank:   e.Drank,
			Amount:  e.Amount,
			Feeling: feelingLabel(e.Feeling),
			Score:   e.Feeling.Score(),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
