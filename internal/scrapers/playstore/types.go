package playstore

// AppRecord is one app discovered on a developer page.
type AppRecord struct {
	// DisplayName is a best effort human readable name, it is never empty
	// and falls back to Identifier.
	DisplayName string `json:"display_name"`
	// Identifier is the package name of the app (ex. "com.example.app"),
	// it is unique within a catalog.
	Identifier string `json:"identifier"`
	// IconUrl falls back to the configured default icon when the page has none.
	IconUrl string `json:"icon_url"`
}

const (
	DefaultCallbackName     = "AF_initDataCallback"
	DefaultMarker           = "ds:3"
	DefaultIdentifierPrefix = "com."
	DefaultIconPrefix       = "https://"
	DefaultNameIndex        = 3
	DefaultMaxNameLength    = 50
	DefaultIconUrl          = "https://www.gstatic.com/android/market_images/web/play_prism_hlock_2x.png"
)
