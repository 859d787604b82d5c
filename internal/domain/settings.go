package domain

// Settings store keys
const (
	SettingAPIKey = "api_key"
	SettingModel  = "model"
	SettingTheme  = "theme"
)

// Reader themes
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
	ThemeSepia = "sepia"
)

// Settings holds the user-editable application settings. The chat path reads
// the credential and model from the store on every call rather than caching
// them here.
type Settings struct {
	APIKey string `json:"api_key"`
	Model  string `json:"model"`
	Theme  string `json:"theme"`
}

// SaveSettingsRequest replaces the stored settings wholesale
type SaveSettingsRequest struct {
	APIKey string `json:"api_key"`
	Model  string `json:"model"`
	Theme  string `json:"theme"`
}
