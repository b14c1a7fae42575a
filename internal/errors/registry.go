package errors

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Structural Errors (R001-R019)
	// ============================================

	"R001": {
		Category: CategoryStructural,
		Message:  "Invalid view node type",
		Detail:   "A view node type must be a tag name, the fragment marker, the host marker or a component reference.",
	},
	"R002": {
		Category: CategoryStructural,
		Message:  "Invalid render root",
		Detail:   "The render root must be an element or a document of a supported document environment.",
	},
	"R003": {
		Category: CategoryStructural,
		Message:  "Element is not a component host",
		Detail:   "Only elements carrying the q:host marker attribute can be scheduled for re-render.",
	},
	"R004": {
		Category: CategoryRender,
		Message:  "Component not found",
		Detail:   "The component loader could not resolve the component reference.",
	},
	"R005": {
		Category: CategoryStructural,
		Message:  "Invalid child",
		Detail:   "View node children must be nodes, node slices, strings, attributes or event handlers.",
	},
	"R006": {
		Category: CategoryStructural,
		Message:  "Container closed",
		Detail:   "The container's loop has been stopped; no more passes can run.",
	},
	"R007": {
		Category: CategoryStructural,
		Message:  "Missing capability",
		Detail:   "The object does not implement a capability required by the engine.",
	},

	// ============================================
	// Render Errors (R020-R039)
	// ============================================

	"R020": {
		Category: CategoryRender,
		Message:  "Component render failed",
		Detail:   "The component's render function returned an error or panicked. The host subtree was left unchanged.",
	},
	"R021": {
		Category: CategoryRender,
		Message:  "Async subtree rejected",
		Detail:   "A pending subtree or a lazily loaded component failed to resolve.",
	},
	"R022": {
		Category: CategoryRender,
		Message:  "Render pass cancelled",
		Detail:   "The pass was cancelled while waiting for pending subtrees.",
	},

	// ============================================
	// Validation Errors (R040-R059)
	// ============================================

	"R040": {
		Category: CategoryValidation,
		Message:  "Invalid attribute",
		Detail:   "The attribute name or value was rejected by the document.",
	},
	"R041": {
		Category: CategoryValidation,
		Message:  "Invalid style declaration",
		Detail:   "The style property name or value was rejected.",
	},

	// ============================================
	// Commit Errors (R060-R079)
	// ============================================

	"R060": {
		Category: CategoryCommit,
		Message:  "Document write failed",
		Detail:   "An operation could not be applied to the document and was skipped.",
	},

	// ============================================
	// Config Errors (C001-C019)
	// ============================================

	"C001": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
	},
	"C002": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
	},
	"C003": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},

	// ============================================
	// CLI Errors (X001-X019)
	// ============================================

	"X001": {
		Category: CategoryCLI,
		Message:  "Invalid flag value",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns all registered error codes.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}
