package check

// Rules bundles the parameters of every check in the catalog.
type Rules struct {
	DedupKeys []string
	Dates     DateRules
	Bounds    []Bound
	Required  []string
	Phone     PhoneRules
}

// DefaultRules returns the built-in catalog parameters.
func DefaultRules() Rules {
	return Rules{
		DedupKeys: DefaultDedupKeys(),
		Dates:     DefaultDateRules(),
		Bounds:    DefaultBounds(),
		Required:  DefaultRequiredFields(),
		Phone:     DefaultPhoneRules(),
	}
}
