package domain

// Categories submitters may choose from. The set is closed and matched
// case-sensitively; anything else is rejected rather than coerced.
var Categories = []string{
	"Government Oppression",
	"Police Brutality",
	"Unjust Court Verdicts",
	"Media Censorship",
	"Suppression of Protests",
	"Human Rights Violations",
	"Other",
}

var categoryKeys = map[string]string{
	"Government Oppression":   "GOVT_OPPRESSION",
	"Police Brutality":        "POLICE_BRUTALITY",
	"Unjust Court Verdicts":   "UNJUST_VERDICTS",
	"Media Censorship":        "MEDIA_CENSORSHIP",
	"Suppression of Protests": "PROTEST_SUPPRESSION",
	"Human Rights Violations": "HUMAN_RIGHTS",
	"Other":                   "OTHER",
}

// ValidCategory reports whether the category is part of the closed set.
func ValidCategory(category string) bool {
	_, ok := categoryKeys[category]
	return ok
}

// AssociationKey maps a category to its stable association key. Unmapped
// categories fall back to OTHER; validation rejects them before this matters.
func AssociationKey(category string) string {
	if key, ok := categoryKeys[category]; ok {
		return key
	}
	return "OTHER"
}
