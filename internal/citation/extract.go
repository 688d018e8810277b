package citation

import (
	"regexp"
	"strconv"
)

// Components are the structured fields recovered from a raw citation span
// when the upstream parser supplied none.
type Components struct {
	Reporter string
	Volume   int
	Page     int
	Year     int
	CaseName string
}

// Reporter patterns, most specific first. A low-information span that matches
// none of them yields empty Components, which downstream treats as a mention
// with no opinion on the core fields.
var (
	usReporterRe      = regexp.MustCompile(`(\d+)\s+(U\.S\.)\s+(\d+)`)
	federalReporterRe = regexp.MustCompile(`(\d+)\s+(F\.(?:2d|3d|4th)?)\s+(\d+)`)
	stateReporterRe   = regexp.MustCompile(`(\d+)\s+([A-Z][A-Za-z]*\.(?:\s?(?:2d|3d))?)\s+(\d+)`)
	genericReporterRe = regexp.MustCompile(`(\d+)\s+([A-Za-z.]+)\s+(\d+)`)
	yearRe            = regexp.MustCompile(`\((\d{4})\)`)
	caseNameRe        = regexp.MustCompile(`\b([A-Z][\w&.,'’\- ]+?\s+v\.\s+[A-Z][\w&.,'’\- ]+?)(?:,|\s+\d)`)
)

// ExtractComponents pulls citation components out of raw text. It mirrors
// the degradation order used at ingestion: U.S. Reports, Federal Reporter,
// state reporters, then a generic "volume Reporter page" shape.
func ExtractComponents(raw string) Components {
	var c Components

	for _, re := range []*regexp.Regexp{usReporterRe, federalReporterRe, stateReporterRe, genericReporterRe} {
		m := re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		c.Volume = atoi(m[1])
		c.Reporter = m[2]
		c.Page = atoi(m[3])
		break
	}

	if m := yearRe.FindStringSubmatch(raw); m != nil {
		c.Year = atoi(m[1])
	}
	if m := caseNameRe.FindStringSubmatch(raw); m != nil {
		c.CaseName = m[1]
	}

	return c
}

func atoi(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
