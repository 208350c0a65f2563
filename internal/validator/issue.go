package validator

// Issue codes. Limit violations reuse the limits package codes.
const (
	CodeRequired               = "required"
	CodeDuplicateID            = "duplicate_id"
	CodeOutOfRange             = "out_of_range"
	CodeNotFinite              = "not_finite"
	CodeUnknownType            = "unknown_hotspot_type"
	CodeInvalidURL             = "invalid_url"
	CodeUnresolvedTarget       = "unresolved_target"
	CodeUnresolvedInitialScene = "unresolved_initial_scene"
	CodeEmptyTour              = "empty_tour"
	CodeMissingTitle           = "missing_title"
	CodeMissingImage           = "missing_image"
	CodeEmptyInfo              = "empty_info"
	CodeSelfTarget             = "self_target"
	CodeDefaulted              = "defaulted"
)

// Issue is a single finding. Path points at the offending field using the
// canonical JSON names, e.g. "scenes[2].hotspots[0].yaw".
type Issue struct {
	Code    string `json:"code"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Result separates blocking errors from non-blocking warnings.
type Result struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// Valid reports whether the document has no blocking errors.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// HasCode reports whether any error or warning carries code.
func (r Result) HasCode(code string) bool {
	for _, is := range r.Errors {
		if is.Code == code {
			return true
		}
	}
	for _, is := range r.Warnings {
		if is.Code == code {
			return true
		}
	}
	return false
}

type collector struct {
	res Result
}

func newCollector() *collector {
	return &collector{res: Result{Errors: []Issue{}, Warnings: []Issue{}}}
}

func (c *collector) fail(code, path, msg string) {
	c.res.Errors = append(c.res.Errors, Issue{Code: code, Path: path, Message: msg})
}

func (c *collector) warn(code, path, msg string) {
	c.res.Warnings = append(c.res.Warnings, Issue{Code: code, Path: path, Message: msg})
}
