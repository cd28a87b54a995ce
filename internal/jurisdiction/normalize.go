package jurisdiction

import "strings"

// Formal prefixes reverse geocoders attach to state names. Stripped repeatedly
// so concatenated variants ("state of nct of delhi") also reduce.
var strippedPrefixes = []string{
	"state of ",
	"national capital territory of ",
	"nct of ",
}

// Aliases that always denote the Delhi capital region.
var delhiAliases = []string{
	"new delhi",
	"delhi",
	"ncr",
	"nct",
}

// Satellite cities of the capital region. These names exist elsewhere in the
// country, so they only map to Delhi when the surrounding region context also
// points at the capital belt.
var delhiSatellites = []string{
	"noida",
	"greater noida",
	"gurgaon",
	"gurugram",
	"faridabad",
	"ghaziabad",
}

// Regions whose presence as a secondary signal activates the satellite-city
// aliases: the capital belt spans Delhi, Haryana, and Uttar Pradesh.
var capitalBeltRegions = []string{
	"delhi",
	"haryana",
	"uttar pradesh",
}

// aliasTable maps cleaned place names to canonical codes. The canonical code
// strings themselves are present so Normalize is idempotent. New
// jurisdictions and spellings are added here, not as new code paths.
var aliasTable = map[string]Code{
	"andhra pradesh":   AndhraPradesh,
	"assam":            Assam,
	"bihar":            Bihar,
	"chhattisgarh":     Chhattisgarh,
	"chattisgarh":      Chhattisgarh,
	"goa":              Goa,
	"gujarat":          Gujarat,
	"haryana":          Haryana,
	"himachal pradesh": HimachalPradesh,
	"jharkhand":        Jharkhand,
	"karnataka":        Karnataka,
	"kerala":           Kerala,
	"madhya pradesh":   MadhyaPradesh,
	"maharashtra":      Maharashtra,
	"odisha":           Odisha,
	"orissa":           Odisha,
	"punjab":           Punjab,
	"rajasthan":        Rajasthan,
	"tamil nadu":       TamilNadu,
	"tamilnadu":        TamilNadu,
	"telangana":        Telangana,
	"uttar pradesh":    UttarPradesh,
	"uttarakhand":      Uttarakhand,
	"uttaranchal":      Uttarakhand,
	"west bengal":      WestBengal,
}

func init() {
	for _, c := range All() {
		aliasTable[string(c)] = c
	}
}

// Normalize canonicalizes a free-text place name into a jurisdiction code,
// or Unknown when the name matches nothing in the closed set.
func Normalize(raw string) Code {
	return NormalizeIn(raw, "")
}

// NormalizeIn canonicalizes a place name with a secondary region context.
// The region is free text from an independent signal (for example the
// geolocated region accompanying a city name) and is only consulted to decide
// whether a capital-belt satellite city should resolve to Delhi.
func NormalizeIn(raw, region string) Code {
	cleaned := clean(raw)
	if cleaned == "" {
		return Unknown
	}

	for _, alias := range delhiAliases {
		if strings.Contains(cleaned, alias) {
			return Delhi
		}
	}

	if inCapitalBelt(region) {
		for _, satellite := range delhiSatellites {
			if strings.Contains(cleaned, satellite) {
				return Delhi
			}
		}
	}

	if code, ok := aliasTable[cleaned]; ok {
		return code
	}
	return Unknown
}

func clean(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	for stripped := true; stripped; {
		stripped = false
		for _, prefix := range strippedPrefixes {
			if strings.HasPrefix(s, prefix) {
				s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
				stripped = true
			}
		}
	}
	return s
}

func inCapitalBelt(region string) bool {
	cleaned := clean(region)
	if cleaned == "" {
		return false
	}
	for _, belt := range capitalBeltRegions {
		if strings.Contains(cleaned, belt) {
			return true
		}
	}
	return false
}
