package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/caselink/internal/model"
)

func TestNormalizeBuildsCanonicalKey(t *testing.T) {
	n := Normalize(model.CitationMention{
		Reporter: "Cal.",
		Volume:   123,
		Page:     456,
		Year:     1998,
	})

	assert.Equal(t, "Cal.|123|456|1998", n.Key)
}

func TestCanonicalKeyUsesSentinelForAbsentFields(t *testing.T) {
	// An absent year must use the sentinel, never an empty string, so keys
	// with and without a year stay comparable but distinguishable.
	withYear := Normalize(model.CitationMention{Reporter: "U.S.", Volume: 410, Page: 113, Year: 1973})
	withoutYear := Normalize(model.CitationMention{Reporter: "U.S.", Volume: 410, Page: 113})

	assert.Equal(t, "U.S.|410|113|1973", withYear.Key)
	assert.Equal(t, "U.S.|410|113|_", withoutYear.Key)
	assert.NotContains(t, withoutYear.Key, "||")
}

func TestNormalizeIsIdempotent(t *testing.T) {
	first := Normalize(model.CitationMention{
		RawText:  "Smith v. Jones, 123 Cal. 456 (1998)",
		Reporter: " Cal. ",
		Volume:   123,
		Page:     456,
		Year:     1998,
		CaseName: "Smith v. Jones",
	})

	// Re-applying normalization to its own output fields is a fixed point.
	second := Normalize(model.CitationMention{
		Reporter: first.Reporter,
		Volume:   first.Volume,
		Page:     first.Page,
		Year:     first.Year,
		CaseName: first.CaseName,
		Court:    first.Court,
	})

	assert.Equal(t, first, second)
}

func TestNormalizeLowInformationMention(t *testing.T) {
	// A parse failure upstream arrives as a mention with no structured
	// fields and unhelpful raw text. It normalizes without error into a
	// key made entirely of sentinels.
	n := Normalize(model.CitationMention{RawText: "see id. at 12"})

	assert.Equal(t, "_|_|_|_", n.Key)
	assert.Empty(t, n.Reporter)
}

func TestNormalizeFallsBackToComponentExtraction(t *testing.T) {
	n := Normalize(model.CitationMention{
		RawText: "Roe v. Wade, 410 U.S. 113 (1973)",
	})

	assert.Equal(t, "U.S.", n.Reporter)
	assert.Equal(t, 410, n.Volume)
	assert.Equal(t, 113, n.Page)
	assert.Equal(t, 1973, n.Year)
	assert.Equal(t, "roe v wade", n.CaseName)
}

func TestNormalizeCaseName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Smith v. Jones Corp.", "smith v jones corp"},
		{"UNITED STATES v. NIXON", "united states v nixon"},
		{"  In re   Gault ", "in re gault"},
		{"", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeCaseName(tc.in), "input: %q", tc.in)
	}
}

func TestExtractComponents(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		reporter string
		volume   int
		page     int
		year     int
	}{
		{"supreme court", "410 U.S. 113", "U.S.", 410, 113, 0},
		{"federal second", "123 F.2d 456", "F.2d", 123, 456, 0},
		{"federal third with year", "999 F.3d 1 (2005)", "F.3d", 999, 1, 2005},
		{"state reporter", "55 Cal. 2d 211", "Cal. 2d", 55, 211, 0},
		{"generic", "12 Wheat. 19", "Wheat.", 12, 19, 0},
		{"no citation", "the court held otherwise", "", 0, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := ExtractComponents(tc.raw)
			assert.Equal(t, tc.reporter, c.Reporter)
			assert.Equal(t, tc.volume, c.Volume)
			assert.Equal(t, tc.page, c.Page)
			assert.Equal(t, tc.year, c.Year)
		})
	}
}
