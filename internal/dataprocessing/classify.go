package dataprocessing

import (
	"strings"

	"rmspulse/pkg/contracts/domain"
)

// regionPatterns maps each scanning region to the station-name substring
// that identifies it. The vocabulary is disjoint by construction, so the
// independent containment tests behave as mutually exclusive categories.
var regionPatterns = map[domain.Region]string{
	domain.RegionLoadingDockTube:    "Button Pallet Position Tube",
	domain.RegionLoadingDockNonTube: "Button Pallet Position Non-Tube",
	domain.RegionScanningRMSTube:    "Pallet GR Position Tube",
	domain.RegionScanningRMSNonTube: "Pallet GR Position Non-Tube",
	domain.RegionRMSSupermarketTube: "RMS A",
	domain.RegionRMSSupermarketNT:   "RMS C",
}

// RegionPattern returns the matching substring for a region.
func RegionPattern(r domain.Region) string {
	return regionPatterns[r]
}

// MatchesRegion reports whether a record belongs to a scanning region. All
// region tests run against the Fetch Station field, case-insensitively. A
// record matching no region is simply excluded from region counts.
func MatchesRegion(rec domain.ActivityRecord, r domain.Region) bool {
	return containsFold(rec.FetchStation, regionPatterns[r])
}

// RegionsOf returns every region whose pattern the record's fetch station
// contains. In practice at most one, since tube and non-tube station names
// never share a pattern; adversarial text could match several.
func RegionsOf(rec domain.ActivityRecord) []domain.Region {
	var out []domain.Region
	for _, r := range domain.Regions {
		if MatchesRegion(rec, r) {
			out = append(out, r)
		}
	}
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
