package ingest

import (
	"fmt"
	"math/rand"
	"strings"
)

// Contact synthesis for entities whose source record carries no contact
// data. Emails are derived deterministically from the entity name; phone
// numbers and tax ids are random. Acceptable only because ingested rows are
// seed/demo data, not production identity data.

// SynthesizeEmail builds a stable placeholder address from an entity name.
func SynthesizeEmail(name, prefix string) string {
	var slug strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			slug.WriteRune(r)
		}
	}
	domain := slug.String()
	if len(domain) > 10 {
		domain = domain[:10]
	}
	if domain == "" {
		domain = "example"
	}
	return fmt.Sprintf("%s@%s.de", prefix, domain)
}

func randomPhone(areaCode string) string {
	return fmt.Sprintf("+49-%s-%d", areaCode, rand.Intn(90000000)+10000000)
}

func randomTaxID(countryCode string) string {
	return fmt.Sprintf("%s%d", countryCode, rand.Intn(900000000)+100000000)
}
