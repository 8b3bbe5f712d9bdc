package assets

// AssetLoader defines the contract for loading CSS styles and HTML templates.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	LoadStyle(name string) (string, error)

	// LoadTemplate loads an HTML template by name (without .html extension).
	LoadTemplate(name string) (string, error)
}

// Built-in asset names.
const (
	PreciseStyleName  = "precise"
	StandardStyleName = "standard"
	DocumentTemplate  = "document"
)

// DefaultStyleName is the variant used by the export pipeline.
const DefaultStyleName = PreciseStyleName
