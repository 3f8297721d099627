package services

import (
	"regexp"
	"strings"
)

// Sector tags used to narrow knowledge search.
const (
	SectorWarehouse = "WAREHOUSE"
	SectorOwner     = "OWNER"
)

// Operational/logistics vocabulary. Checked before the owner vocabulary, so
// it wins ties.
var warehouseKeywords = []string{
	"stok", "sisa", "habis", "gudang", "bahan baku", "expired",
	"pengiriman", "ekspedisi", "resi", "packing", "bikin", "proses",
	"antri", "slot", "jadwal", "booking", "penuh", "unit", "available",
}

// Commercial/policy vocabulary.
var ownerKeywords = []string{
	"harga", "diskon", "discount", "promo", "voucher", "cod",
	"bayar", "transfer", "policy", "kebijakan", "refund", "retur",
	"komplain", "owner", "bos", "cicilan", "kpr", "dp", "nego",
}

type sectorMatcher struct {
	keyword string
	re      *regexp.Regexp // nil for multi-word keywords (plain containment)
}

var (
	warehouseMatchers = compileMatchers(warehouseKeywords)
	ownerMatchers     = compileMatchers(ownerKeywords)
)

func compileMatchers(keywords []string) []sectorMatcher {
	out := make([]sectorMatcher, 0, len(keywords))
	for _, kw := range keywords {
		m := sectorMatcher{keyword: kw}
		if !strings.Contains(kw, " ") {
			// Word-boundary match so "dp" does not fire on "pendapat".
			m.re = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
		}
		out = append(out, m)
	}
	return out
}

func (m sectorMatcher) matches(lower string) bool {
	if m.re != nil {
		return m.re.MatchString(lower)
	}
	return strings.Contains(lower, m.keyword)
}

// DetectSector maps message text to a sector tag, or "" when no keyword
// matches.
func DetectSector(text string) string {
	lower := strings.ToLower(text)

	for _, m := range warehouseMatchers {
		if m.matches(lower) {
			return SectorWarehouse
		}
	}
	for _, m := range ownerMatchers {
		if m.matches(lower) {
			return SectorOwner
		}
	}
	return ""
}
