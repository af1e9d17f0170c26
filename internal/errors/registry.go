package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://github.com/vango-dev/urlkit/blob/main/docs/errors.md#"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Usage Errors (U001-U019)
	// ============================================

	"U001": {
		Category: CategoryUsage,
		Message:  "Unsupported input type",
		Detail:   "Only query strings and key/value maps can be parsed or serialized. Numbers, booleans, arrays and nested objects are rejected.",
		DocURL:   docBase + "u001",
	},
	"U002": {
		Category: CategoryUsage,
		Message:  "Invalid parameter value",
		Detail:   "A query parameter value must be a string or a list of strings.",
		DocURL:   docBase + "u002",
	},
	"U003": {
		Category: CategoryUsage,
		Message:  "Invalid path",
		Detail:   "The path contains a backslash, a NUL byte, a malformed percent escape or escapes the root via '..'.",
		DocURL:   docBase + "u003",
	},
	"U004": {
		Category: CategoryUsage,
		Message:  "No history entry",
		Detail:   "There is no entry in that direction of the session history.",
		DocURL:   docBase + "u004",
	},

	// ============================================
	// Config Errors (U020-U039)
	// ============================================

	"U020": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "Neither urlkit.json nor urlkit.yaml exists in the project directory.",
		DocURL:   docBase + "u020",
	},
	"U021": {
		Category: CategoryConfig,
		Message:  "Config file is malformed",
		Detail:   "The configuration file could not be decoded.",
		DocURL:   docBase + "u021",
	},
	"U022": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		Detail:   "A configuration value is out of range or inconsistent with another value.",
		DocURL:   docBase + "u022",
	},

	// ============================================
	// Transport Errors (U040-U059)
	// ============================================

	"U040": {
		Category: CategoryTransport,
		Message:  "Server failed to start",
		Detail:   "The HTTP listener could not be opened. The port may already be in use.",
		DocURL:   docBase + "u040",
	},
	"U041": {
		Category: CategoryTransport,
		Message:  "Invalid request body",
		Detail:   "The request body is not valid JSON or does not match the expected shape.",
		DocURL:   docBase + "u041",
	},
	"U042": {
		Category: CategoryTransport,
		Message:  "WebSocket message rejected",
		Detail:   "The location channel received a message it does not understand.",
		DocURL:   docBase + "u042",
	},
	"U043": {
		Category: CategoryTransport,
		Message:  "Certificate unavailable",
		Detail:   "The development certificate could not be generated or loaded.",
		DocURL:   docBase + "u043",
	},

	// ============================================
	// Storage Errors (U060-U079)
	// ============================================

	"U060": {
		Category: CategoryStorage,
		Message:  "Object not found",
		Detail:   "The requested key does not exist in the store.",
		DocURL:   docBase + "u060",
	},
	"U061": {
		Category: CategoryStorage,
		Message:  "Store read failed",
		Detail:   "The object exists but could not be read.",
		DocURL:   docBase + "u061",
	},
	"U062": {
		Category: CategoryStorage,
		Message:  "Store write failed",
		Detail:   "The object could not be written.",
		DocURL:   docBase + "u062",
	},

	// ============================================
	// CLI Errors (U080-U099)
	// ============================================

	"U080": {
		Category: CategoryCLI,
		Message:  "Invalid argument",
		Detail:   "A command argument has the wrong form. Query pairs are written key=value.",
		DocURL:   docBase + "u080",
	},
	"U081": {
		Category: CategoryCLI,
		Message:  "Missing argument",
		Detail:   "The command needs an argument that was not given.",
		DocURL:   docBase + "u081",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
