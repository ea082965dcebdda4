package errors

import "sort"

// Registered error codes.
const (
	CodeReadOnly         = "E101"
	CodeNoInverse        = "E102"
	CodeTransformSubpath = "E103"
	CodeNotObservable    = "E104"
	CodeInvalidPath      = "E105"

	CodeControllerClaimed = "E110"
	CodeDestroyed         = "E111"
	CodeNoRuntime         = "E112"
	CodeHost              = "E113"
	CodeDecorator         = "E114"

	CodeConfigInvalid = "E120"
	CodeConfigRead    = "E121"

	CodeSnapshotWrite = "E130"
)

// Template defines a registered error type.
type Template struct {
	Category   Category
	Message    string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Observable Errors (E100-E109)
	// ============================================

	CodeReadOnly: {
		Category:   CategoryObservable,
		Message:    "Cannot set a read-only observable",
		Suggestion: "Set the source observable instead, or derive a writable Prop from it.",
	},
	CodeNoInverse: {
		Category:   CategoryObservable,
		Message:    "Transform has no inverse",
		Suggestion: "Pass a Set function in the Transformer to make it two-way.",
	},
	CodeTransformSubpath: {
		Category: CategoryObservable,
		Message:  "Transforms cannot set a sub-path",
	},
	CodeNotObservable: {
		Category: CategoryObservable,
		Message:  "Value is not an observable of the requested type",
	},
	CodeInvalidPath: {
		Category:   CategoryObservable,
		Message:    "Cannot set value at path",
		Suggestion: "Paths traverse string-keyed maps, slices by index and exported struct fields.",
	},

	// ============================================
	// Lifecycle Errors (E110-E119)
	// ============================================

	CodeControllerClaimed: {
		Category:   CategoryController,
		Message:    "Controller is already attached to a node",
		Suggestion: "Create a new controller for every node it is added to.",
	},
	CodeDestroyed: {
		Category: CategoryLifecycle,
		Message:  "Node has been destroyed",
	},
	CodeNoRuntime: {
		Category:   CategoryLifecycle,
		Message:    "Node has no runtime",
		Suggestion: "Mount root nodes with Runtime.Mount so that descendants inherit it.",
	},
	CodeHost: {
		Category: CategoryLifecycle,
		Message:  "Host DOM operation failed",
	},
	CodeDecorator: {
		Category:   CategoryController,
		Message:    "Unsupported decorator",
		Suggestion: "Use a Decorator, func(*Node) *Node, func(*Node) or a Controller.",
	},

	// ============================================
	// Config Errors (E120-E129)
	// ============================================

	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	CodeConfigRead: {
		Category: CategoryConfig,
		Message:  "Cannot read configuration file",
	},

	// ============================================
	// Snapshot Errors (E130-E139)
	// ============================================

	CodeSnapshotWrite: {
		Category: CategorySnapshot,
		Message:  "Cannot write snapshot",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
