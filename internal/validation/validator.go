// =============================================================================
// Price Compare - Mapping Validation
// =============================================================================
//
// This module turns user-written source entries into validated, immutable
// SourceMapping values and checks a mapping against the header row that was
// actually read from the file.
//
// VALIDATION STRATEGY:
//   Validation happens at two points:
//   1. Construction: the entry itself is well formed (file set, header row
//      not negative, all three columns named), checked through the
//      `validate` tags on config.SourceEntry. Every problem is reported at
//      once.
//   2. Binding: once the header row is known, every mapped column must be
//      present. A missing column is a ColumnNotFoundError and excludes the
//      whole file from reconciliation.
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/ginjaninja78/price-compare/internal/config"
	"github.com/ginjaninja78/price-compare/internal/types"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// FieldError is a single problem with a source entry.
type FieldError struct {
	// Field is the YAML key that failed validation.
	Field string

	// Message is a human-readable description.
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MappingError collects every problem found in one source entry.
type MappingError struct {
	// Index is the 0-based position of the entry in the sources file.
	Index int

	// File is the entry's file path (may be empty).
	File string

	Problems []FieldError
}

func (e *MappingError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	name := e.File
	if name == "" {
		name = fmt.Sprintf("entry %d", e.Index+1)
	}
	return fmt.Sprintf("invalid mapping for %s: %s", name, strings.Join(msgs, "; "))
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

// entryValidator checks the struct tags on config.SourceEntry. Field names
// in its errors are the YAML keys.
var entryValidator = newEntryValidator()

func newEntryValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	// Mirrors the delimiters csvparser accepts.
	v.RegisterValidation("delimiter", func(fl validator.FieldLevel) bool {
		d := fl.Field().String()
		switch d {
		case "", "\\t", "tab", "TAB":
			return true
		}
		return utf8.RuneCountInString(d) == 1
	})

	return v
}

// NewSourceMapping validates a source entry and returns its mapping.
//
// PARAMETERS:
//   - index: The entry's position in the sources file (for messages).
//   - entry: The entry as read from YAML.
//
// RETURNS:
//   - The immutable SourceMapping.
//   - A *MappingError listing every problem, if any.
func NewSourceMapping(index int, entry config.SourceEntry) (types.SourceMapping, error) {
	entry.File = strings.TrimSpace(entry.File)
	entry.Sheet = strings.TrimSpace(entry.Sheet)
	entry.ItemColumn = strings.TrimSpace(entry.ItemColumn)
	entry.DescriptionColumn = strings.TrimSpace(entry.DescriptionColumn)
	entry.PriceColumn = strings.TrimSpace(entry.PriceColumn)

	if err := entryValidator.Struct(entry); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return types.SourceMapping{}, err
		}

		problems := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			problems = append(problems, FieldError{Field: fe.Field(), Message: problemMessage(fe)})
		}
		return types.SourceMapping{}, &MappingError{Index: index, File: entry.File, Problems: problems}
	}

	return types.SourceMapping{
		FileID:            entry.File,
		Sheet:             entry.Sheet,
		Delimiter:         entry.Delimiter,
		HeaderRow:         entry.HeaderRow,
		ItemColumn:        entry.ItemColumn,
		DescriptionColumn: entry.DescriptionColumn,
		PriceColumn:       entry.PriceColumn,
	}, nil
}

func problemMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must not be negative, got %v", fe.Value())
	case "delimiter":
		return fmt.Sprintf("must be a single character or \"tab\", got %q", fe.Value())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// NewSourceMappings validates every entry of a sources file. Entries that
// fail are reported in errs and left out of the returned slice; the rest keep
// their relative order.
func NewSourceMappings(entries []config.SourceEntry) (mappings []types.SourceMapping, errs []error) {
	for i, entry := range entries {
		m, err := NewSourceMapping(i, entry)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		mappings = append(mappings, m)
	}
	return mappings, errs
}

// =============================================================================
// BINDING
// =============================================================================

// CheckColumns verifies that every mapped column exists in the header row.
//
// RETURNS:
//   - nil when all three columns are present.
//   - A *types.ColumnNotFoundError for the first missing column, checked in
//     item, description, price order.
func CheckColumns(m types.SourceMapping, headers []string) error {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	checks := []struct {
		role   string
		column string
	}{
		{"item", m.ItemColumn},
		{"description", m.DescriptionColumn},
		{"price", m.PriceColumn},
	}
	for _, c := range checks {
		if !present[c.column] {
			return &types.ColumnNotFoundError{
				File:      m.FileID,
				Column:    c.column,
				Role:      c.role,
				Available: append([]string(nil), headers...),
			}
		}
	}

	return nil
}
