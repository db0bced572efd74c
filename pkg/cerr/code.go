package cerr

//go:generate go tool stringer -type=Code -output=code_string.go code.go
type Code int

const (
	OK               = Code(0)
	Unknown          = Code(1)
	NotFound         = Code(2)
	PermissionDenied = Code(3)
	MalformedPath    = Code(4)
	LockUnavailable  = Code(5)
	IOFailure        = Code(6)
	Busy             = Code(7)
	Internal         = Code(8)
)

// Severe reports whether errors created with this code capture a stack trace.
// Caller mistakes (bad paths, missing files, contended locks) do not.
func (c Code) Severe() bool {
	switch c {
	case Unknown, IOFailure, Internal:
		return true
	default:
		return false
	}
}
