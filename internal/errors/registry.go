package errors

import (
	"maps"
	"slices"
)

// Template defines a registered error.
type Template struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

var registry = map[string]Template{
	// Configuration (V001-V019)
	"V001": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration file",
		Detail:     "The configuration file could not be parsed.",
		Suggestion: "Run `vtree config` to print a valid configuration with every default filled in.",
	},
	"V002": {
		Category: CategoryConfig,
		Message:  "Unsupported configuration format",
		Detail:   "Configuration files must end in .json, .yaml or .yml.",
	},
	"V003": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},
	"V004": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
	},

	// Command line (V020-V039)
	"V020": {
		Category:   CategoryCLI,
		Message:    "Interactive mode needs a terminal",
		Detail:     "Standard input or output is not a terminal, so the interactive demo cannot take over the screen.",
		Suggestion: "Use `vtree headless` to drive the demo without a terminal.",
	},
	"V021": {
		Category: CategoryCLI,
		Message:  "Invalid argument",
	},

	// Rendering (V040-V059)
	"V040": {
		Category: CategoryRender,
		Message:  "Render function failed",
		Detail:   "A render function panicked or returned an invalid tree. The previous host tree was kept.",
	},
	"V041": {
		Category:   CategoryRender,
		Message:    "Duplicate key among siblings",
		Detail:     "Two children of the same parent carry the same key, so they cannot be told apart across renders.",
		Suggestion: "Derive keys from stable item identities, not from display text.",
	},
	"V042": {
		Category: CategoryRender,
		Message:  "Component failed to start",
	},

	// Host (V060-V079)
	"V060": {
		Category: CategoryHost,
		Message:  "Host operation failed",
		Detail:   "The host adapter rejected an operation. The reconciler logged it and continued with the next node.",
	},
	"V061": {
		Category: CategoryHost,
		Message:  "Host node not found",
	},

	// Inspector (V080-V099)
	"V080": {
		Category:   CategoryProtocol,
		Message:    "Inspector failed to listen",
		Suggestion: "Pick another address with --inspect or inspect.addr.",
	},
	"V081": {
		Category: CategoryProtocol,
		Message:  "WebSocket upgrade failed",
	},
}

// Codes returns all registered codes in order.
func Codes() []string {
	return slices.Sorted(maps.Keys(registry))
}

// Lookup returns the template for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds or replaces a template.
func Register(code string, t Template) {
	registry[code] = t
}
