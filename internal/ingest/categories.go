package ingest

import "strings"

// categoryRule maps a set of keywords to a spend category. Rules are
// evaluated in order; the first rule with a matching keyword wins. Keywords
// are bilingual because the source corpus mixes English and German documents.
type categoryRule struct {
	keywords []string
	category string
}

// documentRules classify a whole invoice from its source file name.
var documentRules = []categoryRule{
	{[]string{"gutschrift", "credit"}, "Credit Note"},
	{[]string{"template", "vorlage"}, "Template"},
	{[]string{"marketing"}, "Marketing"},
	{[]string{"consulting", "beratung"}, "Consulting"},
	{[]string{"invoice", "rechnung"}, "Standard Invoice"},
}

// documentLineRules classify a whole invoice from its line item
// descriptions, consulted when no file name rule matched.
var documentLineRules = []categoryRule{
	{[]string{"software", "license"}, "Software"},
	{[]string{"hardware", "equipment"}, "Equipment"},
	{[]string{"service", "dienstleistung"}, "Services"},
	{[]string{"material", "supply"}, "Materials"},
}

// lineItemRules classify a single line item from its description.
var lineItemRules = []categoryRule{
	{[]string{"software", "license"}, "Software"},
	{[]string{"hardware", "equipment"}, "Hardware"},
	{[]string{"consulting", "beratung"}, "Consulting"},
	{[]string{"marketing", "werbung"}, "Marketing"},
	{[]string{"service", "dienstleistung"}, "Services"},
	{[]string{"material", "supply"}, "Materials"},
	{[]string{"arbeit", "work", "hour"}, "Labor"},
}

func matchRules(rules []categoryRule, text string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, rule := range rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.category, true
			}
		}
	}
	return "", false
}

// CategorizeDocument infers the invoice-level category from the source file
// name, then from the joined line item descriptions. Falls back to "General".
func CategorizeDocument(fileName string, lineDescriptions []string) string {
	if category, ok := matchRules(documentRules, fileName); ok {
		return category
	}
	if len(lineDescriptions) > 0 {
		joined := strings.Join(lineDescriptions, " ")
		if category, ok := matchRules(documentLineRules, joined); ok {
			return category
		}
	}
	return "General"
}

// CategorizeLineItem infers a line item's category from its description.
// Falls back to "Other".
func CategorizeLineItem(description string) string {
	if category, ok := matchRules(lineItemRules, description); ok {
		return category
	}
	return "Other"
}
