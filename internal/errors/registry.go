package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://plop.dev/docs/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Runtime (E100-E109)

	"E100": {
		Category: CategoryRuntime,
		Message:  "Runtime started outside an interactive surface",
		Detail:   "Start needs a document to render into and a scheduler to run effects and frames on.",
		DocURL:   docBase + "E100",
	},
	"E101": {
		Category: CategoryRuntime,
		Message:  "Mount element not found",
		Detail:   "The selector passed to Start did not match any node in the document.",
		DocURL:   docBase + "E101",
	},

	// Events (E110-E119)

	"E110": {
		Category: CategoryEvent,
		Message:  "Event payload could not be decoded",
		Detail:   "The handler's decoder rejected the payload, so no message was produced.",
		DocURL:   docBase + "E110",
	},
	"E111": {
		Category: CategoryEvent,
		Message:  "Event produced a message of the wrong type",
		Detail:   "A decoder returned a value the application's update function does not accept.",
		DocURL:   docBase + "E111",
	},

	// Configuration (E120-E129)

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		DocURL:   docBase + "E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Configuration file could not be read",
		DocURL:   docBase + "E121",
	},

	// Codec (E130-E139)

	"E130": {
		Category: CategoryCodec,
		Message:  "Malformed encoded data",
		Detail:   "The input ended early or held a value out of range.",
		DocURL:   docBase + "E130",
	},
	"E131": {
		Category: CategoryCodec,
		Message:  "Value cannot be encoded",
		Detail:   "Only strings, booleans, numbers, nil, slices and maps of these are supported.",
		DocURL:   docBase + "E131",
	},

	// CLI (E140-E149)

	"E140": {
		Category: CategoryCLI,
		Message:  "Unknown demo action",
		DocURL:   docBase + "E140",
	},

	// Session state (E150-E159)

	"E150": {
		Category: CategoryState,
		Message:  "Session snapshot could not be stored",
		DocURL:   docBase + "E150",
	},
	"E151": {
		Category: CategoryState,
		Message:  "Session snapshot is invalid",
		Detail:   "The stored snapshot was written by an unknown version or names an item twice.",
		DocURL:   docBase + "E151",
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds or replaces an error template.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
