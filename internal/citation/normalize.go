// Package citation canonicalizes raw citation mentions into a normalized
// field set and a deterministic canonical key.
package citation

import (
	"strconv"
	"strings"

	"github.com/agenthands/caselink/internal/model"
)

// keySeparator joins canonical key parts; keySentinel stands in for absent
// fields so a missing value never collides with legitimately empty data.
const (
	keySeparator = "|"
	keySentinel  = "_"
)

// Normalize converts a mention into its canonical form. It never fails:
// missing fields propagate as absent. When the mention carries no structured
// core fields at all, the raw text is run through the component extractor as
// a fallback. Normalize is idempotent with respect to its own output fields.
func Normalize(m model.CitationMention) model.NormalizedCitation {
	n := model.NormalizedCitation{
		Reporter: NormalizeReporter(m.Reporter),
		Volume:   m.Volume,
		Page:     m.Page,
		Year:     m.Year,
		CaseName: NormalizeCaseName(m.CaseName),
		Court:    strings.TrimSpace(m.Court),
	}

	if n.Reporter == "" && n.Volume == 0 && n.Page == 0 {
		c := ExtractComponents(m.RawText)
		n.Reporter = NormalizeReporter(c.Reporter)
		n.Volume = c.Volume
		n.Page = c.Page
		if n.Year == 0 {
			n.Year = c.Year
		}
		if n.CaseName == "" {
			n.CaseName = NormalizeCaseName(c.CaseName)
		}
	}

	n.Key = Key(n)
	return n
}

// Key builds the canonical key reporter|volume|page|year. Two citations with
// the same present (reporter, volume, page) produce comparable keys
// regardless of case name or a missing year.
func Key(n model.NormalizedCitation) string {
	parts := []string{
		orSentinel(n.Reporter),
		orSentinelInt(n.Volume),
		orSentinelInt(n.Page),
		orSentinelInt(n.Year),
	}
	return strings.Join(parts, keySeparator)
}

// NormalizeReporter collapses internal whitespace and trims the reporter
// abbreviation. Periods and case are preserved: "Cal." and "F.2d" are
// conventional forms, and both sides of a match pass through this function.
func NormalizeReporter(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeCaseName lower-cases and strips punctuation, collapsing runs of
// whitespace, so "Smith v. Jones Corp." and "smith v jones corp" compare
// equal at similarity time.
func NormalizeCaseName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func orSentinel(s string) string {
	if s == "" {
		return keySentinel
	}
	return s
}

func orSentinelInt(v int) string {
	if v == 0 {
		return keySentinel
	}
	return strconv.Itoa(v)
}
