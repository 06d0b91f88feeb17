package service

// Entry represents a markdown file and its rendered HTML.
type Entry struct {
	Path    string
	HTML    string
	Links   []string
	Targets []string

	FailReason func()
}

// EnhancedError is an error that knows how to print its details.
type EnhancedError interface {
	error
	PrettyPrint()
}
