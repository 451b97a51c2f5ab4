package entity

var serviceLabels = map[string]string{
	"structured-cabling":     "Structured Cabling",
	"fiber-optic":            "Fiber Optic Installation",
	"data-center":            "Data Center Cabling",
	"security-systems":       "Security Systems",
	"voice-telephony":        "Voice & Telephony",
	"network-infrastructure": "Network Infrastructure",
	"starlink-installation":  "Starlink Installation",
	"consultation":           "General Consultation",
}

var projectTypeLabels = map[string]string{
	"new-installation": "New Installation",
	"upgrade":          "Upgrade/Expansion",
	"maintenance":      "Maintenance/Repair",
	"emergency":        "Emergency Service",
}

var timelineLabels = map[string]string{
	"immediate":     "Immediate (1-2 weeks)",
	"1-3-months":    "1-3 months",
	"3-6-months":    "3-6 months",
	"6-plus-months": "6+ months",
	"planning":      "Still planning",
}

var budgetLabels = map[string]string{
	"under-5k":  "Under $5,000",
	"5k-15k":    "$5,000 - $15,000",
	"15k-50k":   "$15,000 - $50,000",
	"50k-100k":  "$50,000 - $100,000",
	"100k-plus": "$100,000+",
	"not-sure":  "Not sure yet",
}

// IsKnownService reports whether slug belongs to the service catalog.
func IsKnownService(slug string) bool {
	_, ok := serviceLabels[slug]
	return ok
}

// Unknown slugs are returned unchanged by the label helpers.

func ServiceLabel(slug string) string     { return labelOr(serviceLabels, slug) }
func ProjectTypeLabel(slug string) string { return labelOr(projectTypeLabels, slug) }
func TimelineLabel(slug string) string    { return labelOr(timelineLabels, slug) }
func BudgetLabel(slug string) string      { return labelOr(budgetLabels, slug) }

func labelOr(m map[string]string, slug string) string {
	if v, ok := m[slug]; ok {
		return v
	}
	return slug
}
