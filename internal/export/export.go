package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sadopc/clearway/internal/journal"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Write exports entries as "csv" or "json".
func Write(entries []journal.Entry, format, path string) error {
	switch strings.ToLower(format) {
	case "csv":
		return ToCSV(entries, path)
	case "json":
		return ToJSON(entries, path)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
