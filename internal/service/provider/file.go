package provider

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"nitro/markdown-render/internal/service"
)

// fileHelpersC contain the implemenation of helpers for providers
type fileHelpersC struct{}

func (h fileHelpersC) mkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

func (h fileHelpersC) writeFile(path string, payload []byte) error {
	return ioutil.WriteFile(path, payload, 0o644)
}

// File provider is responsible for writing the rendered HTML to the filesystem. The output goes next to the markdown
// file unless Directory is set, in which case the layout below Root is mirrored into Directory.
type File struct {
	Root      string
	Directory string
	Extension string
	Helpers   FileHelpers

	schemaRegex regexp.Regexp
}

// Init internal state.
func (f *File) Init() error {
	// If not Helpers assigned: use default
	if f.Helpers == nil {
		f.Helpers = fileHelpersC{}
	}

	if f.Directory != "" && f.Root == "" {
		return errors.New("missing 'root'")
	}

	if f.Extension == "" {
		f.Extension = ".html"
	}
	if !strings.HasPrefix(f.Extension, ".") || f.Extension == ".md" {
		return fmt.Errorf("invalid extension '%s'", f.Extension)
	}

	expr := `\.md$`
	schema, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("fail to compile the expression '%s': %w", expr, err)
	}
	f.schemaRegex = *schema
	return nil
}

// Authority checks if the file provider is responsible to process the entry.
func (f File) Authority(path string) bool {
	return f.schemaRegex.MatchString(path)
}

// Deliver writes the entry HTML and returns the path of the written file.
func (f File) Deliver(ctx context.Context, entry service.Entry) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target, err := f.target(entry.Path)
	if err != nil {
		return "", fmt.Errorf("fail to resolve the output path: %w", err)
	}

	if err := f.Helpers.mkdirAll(filepath.Dir(target)); err != nil {
		return "", fmt.Errorf("fail to create the directory '%s': %w", filepath.Dir(target), err)
	}
	if err := f.Helpers.writeFile(target, []byte(entry.HTML)); err != nil {
		return "", fmt.Errorf("fail to write the file '%s': %w", target, err)
	}
	return target, nil
}

func (f File) target(path string) (string, error) {
	target := strings.TrimSuffix(path, filepath.Ext(path)) + f.Extension
	if f.Directory == "" {
		return target, nil
	}

	relative, err := filepath.Rel(f.Root, target)
	if err != nil {
		return "", err
	}
	if relative == ".." || strings.HasPrefix(relative, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("'%s' is outside of '%s'", path, f.Root)
	}
	return filepath.Join(f.Directory, relative), nil
}
