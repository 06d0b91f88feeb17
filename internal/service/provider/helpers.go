package provider

// FileHelpers contains the Helpers for the file provider
type FileHelpers interface {
	mkdirAll(string) error
	writeFile(string, []byte) error
}
