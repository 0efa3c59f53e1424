package domain

import (
	"math"
	"strconv"
	"strings"

	"github.com/oklog/ulid/v2"
)

// LookupKind names a resolution strategy.
type LookupKind int

const (
	ByOrdinal LookupKind = iota + 1
	ByID
	ByName
)

func (k LookupKind) String() string {
	switch k {
	case ByOrdinal:
		return "ordinal"
	case ByID:
		return "id"
	case ByName:
		return "name"
	default:
		return "unknown"
	}
}

// Lookup is a single store query derived from a term.
type Lookup struct {
	Kind LookupKind
	No   int
	ID   string
	Name string
}

// Classify turns a caller-supplied term into the lookups to attempt, in
// order. Ordinal and id lookups are only produced when the term has the
// matching shape; the name lookup is always last.
func Classify(term string) []Lookup {
	trimmed := strings.TrimSpace(term)
	lookups := make([]Lookup, 0, 3)

	if no, ok := parseOrdinal(trimmed); ok {
		lookups = append(lookups, Lookup{Kind: ByOrdinal, No: no})
	}
	if IsValidID(trimmed) {
		lookups = append(lookups, Lookup{Kind: ByID, ID: trimmed})
	}
	lookups = append(lookups, Lookup{Kind: ByName, Name: NormalizeName(trimmed)})

	return lookups
}

// IsValidID reports whether s has the shape of a record identifier.
func IsValidID(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}

// NewID returns a fresh record identifier.
func NewID() string {
	return ulid.Make().String()
}

// parseOrdinal accepts any finite number with an integral value, so "25"
// and "25.0" both name ordinal 25. "1.5" is numeric but can never equal an
// integer ordinal, so no lookup is produced for it.
func parseOrdinal(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}
