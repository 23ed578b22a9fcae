// Package sym defines canonical symbols for foreman subsystems.
// These symbols are stable across logs, CLI output and documentation.
package sym

// Subsystem glyphs.
const (
	AM       = "≡" // am: configuration and system settings
	Pulse    = "꩜" // pulse: the frame-driven control loop
	Guard    = "⛨" // repeat-job protection and recovery
	Workflow = "⚒" // constraint-driven suspend/resume
	Limit    = "≤" // production constraints
	DB       = "⊔" // database/storage layer
)

// Lifecycle glyphs.
const (
	PulseOpen  = "✿" // session start, tracked jobs restored
	PulseClose = "❀" // session end, tracked jobs released
)

// entry binds a glyph to its command and description.
type entry struct {
	glyph       string
	command     string
	description string
}

var registry = []entry{
	{AM, "am", "Configuration and system settings"},
	{Pulse, "run", "Frame-driven control loop"},
	{Guard, "jobs", "Repeat-job protection and recovery"},
	{Workflow, "workflow", "Constraint-driven suspend/resume"},
	{Limit, "list", "Production constraints"},
	{DB, "", "Database/storage layer"},
	{PulseOpen, "", "Session start"},
	{PulseClose, "", "Session end"},
}

// CommandToSymbol maps CLI command names to their glyphs.
var CommandToSymbol = func() map[string]string {
	m := make(map[string]string, len(registry))
	for _, e := range registry {
		if e.command != "" {
			m[e.command] = e.glyph
		}
	}
	return m
}()

// Describe returns the description for a glyph, or "" if unknown.
func Describe(glyph string) string {
	for _, e := range registry {
		if e.glyph == glyph {
			return e.description
		}
	}
	return ""
}
