package config

// Profile is the static description of an agency: who it is and the lookup tables used to
// derive route identifiers and colors.
type Profile struct {
	Agency AgencyConfig `yaml:"agency" validate:"required"`
	Routes RoutesConfig `yaml:"routes"`
}

// AgencyConfig corresponds to the agency.txt record published for the agency.
type AgencyConfig struct {
	ID        string `yaml:"id" validate:"required"`
	Name      string `yaml:"name" validate:"required"`
	URL       string `yaml:"url" validate:"omitempty,url"`
	Timezone  string `yaml:"timezone" validate:"required"`
	Language  string `yaml:"language" validate:"omitempty,len=2"`
	Color     string `yaml:"color" validate:"required,hexadecimal,len=6"`
	RouteType int32  `yaml:"routeType" validate:"gte=0"`
}

// ColorRange gives a color to every route whose short name is a number in [Min, Max].
type ColorRange struct {
	Min   int    `yaml:"min" validate:"gte=0"`
	Max   int    `yaml:"max" validate:"gtefield=Min"`
	Color string `yaml:"color" validate:"required,hexadecimal,len=6"`
}

// RoutesConfig contains the route lookup tables.
type RoutesConfig struct {
	// Fixed IDs for short names that are not numbers. Keys match exactly.
	IDOverrides map[string]int64 `yaml:"idOverrides" validate:"dive,keys,required,endkeys,gt=0"`
	// Checked in order before ColorCodes.
	ColorRanges []ColorRange `yaml:"colorRanges" validate:"dive"`
	// Colors for specific short names. Keys match case-insensitively.
	ColorCodes map[string]string `yaml:"colorCodes" validate:"dive,keys,required,endkeys,hexadecimal,len=6"`
}
