package loam

// TourMetadata is the frontmatter of a tour document.
// It uses "mapstructure" tags to match standard frontmatter/YAML keys.
type TourMetadata struct {
	ID    string   `json:"id" mapstructure:"id"`
	Title string   `json:"title" mapstructure:"title"`
	Roles []string `json:"roles" mapstructure:"roles"`

	// Steps holds either selector strings (shorthand) or LoaderStep maps.
	Steps []any `json:"steps" mapstructure:"steps"`
}

// LoaderStep is the long form of a step entry.
// Title and Body may be given flat or nested under content.
type LoaderStep struct {
	Target    string         `mapstructure:"target"`
	Title     string         `mapstructure:"title"`
	Body      string         `mapstructure:"body"`
	Content   *LoaderContent `mapstructure:"content"`
	Placement string         `mapstructure:"placement"`
	FirstStep bool           `mapstructure:"first_step"`
}

type LoaderContent struct {
	Title string `mapstructure:"title"`
	Body  string `mapstructure:"body"`
}
