package devapi

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"pricedash/domain/housing"
	"pricedash/internal/geo"
)

var (
	areaPattern      = regexp.MustCompile(`(\d[\d,]*)\s*(?:sq\.?\s*ft|square\s+feet|sqft|sf)\b`)
	lotPattern       = regexp.MustCompile(`(\d[\d,]*)\s*(?:sq\.?\s*ft|square\s+feet|sqft|sf)\s+lot\b`)
	bedPattern       = regexp.MustCompile(`(\d+)\s*(?:-\s*)?(?:bed(?:room)?s?|br)\b`)
	bathPattern      = regexp.MustCompile(`(\d+(?:\.5)?)\s*(?:-\s*)?(?:bath(?:room)?s?|ba)\b`)
	yearPattern      = regexp.MustCompile(`(?:built\s+(?:in\s+)?|constructed\s+(?:in\s+)?)(\d{4})\b`)
	garagePattern    = regexp.MustCompile(`(\d)\s*(?:-\s*)?car\s+garage`)
	fireplacePattern = regexp.MustCompile(`(\d+)\s+fireplaces?`)
)

var qualityWords = []struct {
	word  string
	score int64
}{
	{"luxury", 9}, {"excellent", 9}, {"renovated", 8}, {"good", 7},
	{"average", 5}, {"fixer", 3}, {"poor", 3},
}

// ParseDescription extracts prediction features from free text such as
// "2 story 1,800 sq ft home built in 2005 in NridgHt with 3 bedrooms".
func ParseDescription(text string) housing.Features {
	lower := strings.ToLower(text)
	out := housing.Features{}

	if m := lotPattern.FindStringSubmatch(lower); m != nil {
		setInt(out, "LotArea", m[1])
		lower = strings.Replace(lower, m[0], " ", 1)
	}
	if m := areaPattern.FindStringSubmatch(lower); m != nil {
		setInt(out, "GrLivArea", m[1])
	}
	if m := bedPattern.FindStringSubmatch(lower); m != nil {
		setInt(out, "BedroomAbvGr", m[1])
	}
	if m := bathPattern.FindStringSubmatch(lower); m != nil {
		whole, half, _ := strings.Cut(m[1], ".")
		setInt(out, "FullBath", whole)
		if half != "" {
			out["HalfBath"] = int64(1)
		}
	}
	if m := yearPattern.FindStringSubmatch(lower); m != nil {
		setInt(out, "YearBuilt", m[1])
	}
	if m := garagePattern.FindStringSubmatch(lower); m != nil {
		setInt(out, "GarageCars", m[1])
	}
	if m := fireplacePattern.FindStringSubmatch(lower); m != nil {
		setInt(out, "Fireplaces", m[1])
	} else if strings.Contains(lower, "fireplace") {
		out["Fireplaces"] = int64(1)
	}
	switch {
	case strings.Contains(lower, "two story"), strings.Contains(lower, "2 story"), strings.Contains(lower, "2-story"):
		out["HouseStyle"] = "2Story"
	case strings.Contains(lower, "ranch"), strings.Contains(lower, "one story"), strings.Contains(lower, "1 story"), strings.Contains(lower, "1-story"):
		out["HouseStyle"] = "1Story"
	}
	for _, q := range qualityWords {
		if containsWord(lower, q.word) {
			out["OverallQual"] = q.score
			break
		}
	}
	names := make([]string, 0, len(geo.Centroids))
	for name := range geo.Centroids {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if containsWord(lower, strings.ToLower(name)) {
			out["Neighborhood"] = name
			break
		}
	}
	return out
}

func setInt(out housing.Features, key, digits string) {
	if v, err := strconv.ParseInt(strings.ReplaceAll(digits, ",", ""), 10, 64); err == nil {
		out[key] = v
	}
}

func containsWord(text, word string) bool {
	for _, tok := range strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		if tok == word {
			return true
		}
	}
	return false
}
