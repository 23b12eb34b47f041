package models

// Render log kinds.
const (
	FailureSource    = "source"            // the export command failed
	FailureMalformed = "malformed_payload" // the payload could not be formatted
)

// RenderLog is the metadata of a failed render kept for later inspection.
// The payload that failed to render is stored as the log body.
type RenderLog struct {
	LogID     string `yaml:"log_id"`
	RenderID  string `yaml:"render_id"`
	Command   string `yaml:"command"`
	Kind      string `yaml:"kind"` // "malformed_payload" | "source"
	Error     string `yaml:"error"`
	CreatedAt string `yaml:"created_at"`
}
