package repository

// Indicator identifies one macro indicator pipeline.
type Indicator string

const (
	IndGDP      Indicator = "gdp"
	IndCPI      Indicator = "cpi"
	IndPPI      Indicator = "ppi"
	IndNFP      Indicator = "nfp"
	IndFedFunds Indicator = "fedfunds"
)

// AllIndicators returns every supported indicator in a stable order.
func AllIndicators() []Indicator {
	return []Indicator{IndGDP, IndCPI, IndPPI, IndNFP, IndFedFunds}
}

// IsValidIndicator returns true if ind is a supported indicator.
func IsValidIndicator(ind Indicator) bool {
	switch ind {
	case IndGDP, IndCPI, IndPPI, IndNFP, IndFedFunds:
		return true
	default:
		return false
	}
}

// NormalizeIndicator converts a raw string to a valid indicator, ok=false if unknown.
func NormalizeIndicator(s string) (Indicator, bool) {
	ind := Indicator(s)
	if IsValidIndicator(ind) {
		return ind, true
	}
	return "", false
}
