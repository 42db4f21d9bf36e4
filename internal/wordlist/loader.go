// Package wordlist loads the word corpus from two-column delimited text,
// display,phonetic per line. Bad rows are collected as line-numbered errors
// without aborting the load.
package wordlist

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"kanatype/internal/kana"
	"kanatype/internal/models"
)

// LineError names one rejected corpus row.
type LineError struct {
	Line   int
	Reason string
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// containsLatin reports whether the field holds at least one Latin letter.
func containsLatin(field string) bool {
	for _, r := range field {
		if unicode.In(r, unicode.Latin) {
			return true
		}
	}
	return false
}

// Load parses the corpus. The first line is treated as a header and skipped
// when both of its first two fields contain Latin letters. Rows with fewer
// than two fields, an empty field, or a phonetic field that fails to fully
// tokenize are rejected individually.
func Load(r io.Reader) ([]models.Word, []LineError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var words []models.Word
	var lineErrs []LineError
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			lineErrs = append(lineErrs, LineError{Line: line, Reason: err.Error()})
			continue
		}
		if line == 1 && len(record) >= 2 && containsLatin(record[0]) && containsLatin(record[1]) {
			continue
		}
		if len(record) < 2 {
			lineErrs = append(lineErrs, LineError{Line: line, Reason: "fewer than 2 fields"})
			continue
		}
		display := strings.TrimSpace(record[0])
		phonetic := strings.TrimSpace(record[1])
		if display == "" || phonetic == "" {
			lineErrs = append(lineErrs, LineError{Line: line, Reason: "empty field"})
			continue
		}
		if !kana.WordTypeable(phonetic) {
			lineErrs = append(lineErrs, LineError{Line: line, Reason: fmt.Sprintf("phonetic %q does not tokenize", phonetic)})
			continue
		}
		words = append(words, models.Word{Display: display, Phonetic: phonetic})
	}
	return words, lineErrs, nil
}

// LoadFile loads the corpus from disk.
func LoadFile(path string) ([]models.Word, []LineError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return Load(f)
}
