package core

// ThemeCodes is the closed set of sustainability theme categories an
// evidence record may carry. Records with any other theme are rejected
// at write time.
var ThemeCodes = []string{
	"assurance",
	"biodiversity",
	"board_oversight",
	"climate_risk",
	"energy_transition",
	"ghg_emissions",
	"supply_chain_dd",
	"waste_circularity",
	"water_stewardship",
	"workforce_safety",
}

var themeSet = func() map[string]bool {
	m := make(map[string]bool, len(ThemeCodes))
	for _, code := range ThemeCodes {
		m[code] = true
	}
	return m
}()

// IsValidTheme reports whether code is a member of the closed theme set.
func IsValidTheme(code string) bool {
	return themeSet[code]
}
