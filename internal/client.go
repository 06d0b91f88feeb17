package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/logrusorgru/aurora"

	"nitro/markdown-render/internal/service"
	"nitro/markdown-render/internal/service/parser"
	"nitro/markdown-render/internal/service/provider"
	"nitro/markdown-render/internal/service/scan"
	"nitro/markdown-render/internal/service/watch"
	"nitro/markdown-render/internal/service/worker"
)

// ClientRender holds the rendering options.
type ClientRender struct {
	Engine  string
	Policy  string
	Anchors bool
}

// ClientIgnore holds the ignore list for links and files.
type ClientIgnore struct {
	Link []string
	File []string
}

// ClientOutput holds the configuration of the rendered files.
type ClientOutput struct {
	Directory string
	Extension string
}

// ClientProviderWeb holds the configuration for the web provider.
type ClientProviderWeb struct {
	Endpoints       []string
	Config          http.Header
	ConfigOverwrite map[string]http.Header
}

// ClientProvider holds the configuration for the providers.
type ClientProvider struct {
	Web ClientProviderWeb
}

// ClientWatcher holds the configuration of the watch mode.
type ClientWatcher struct {
	Debounce time.Duration
}

// Client is responsible to bootstrap the application.
type Client struct {
	Path     string
	Render   ClientRender
	Ignore   ClientIgnore
	Output   ClientOutput
	Provider ClientProvider
	Watcher  ClientWatcher
	Writer   io.Writer

	scan      scan.Scan
	providers []worker.Provider
}

// Run renders every markdown file once. It reports if any delivery failed.
func (c *Client) Run(ctx context.Context) (bool, error) {
	if err := c.init(); err != nil {
		return false, fmt.Errorf("fail during init: %w", err)
	}

	entries, err := c.scan.Process(c.Path)
	if err != nil {
		return false, fmt.Errorf("fail to scan the files: %w", err)
	}
	return c.process(ctx, entries)
}

// Watch renders every markdown file and then renders them again as they change, until the context is done.
func (c *Client) Watch(ctx context.Context) error {
	if _, err := c.Run(ctx); err != nil {
		return err
	}

	w := watch.Watch{
		Path:     c.Path,
		Debounce: c.Watcher.Debounce,
		OnChange: func(ctx context.Context, paths []string) error {
			entries, err := c.scan.ProcessFiles(paths)
			if err != nil {
				return fmt.Errorf("fail to scan the files: %w", err)
			}
			_, err = c.process(ctx, entries)
			return err
		},
		OnError: func(err error) {
			fmt.Fprintf(c.Writer, "%s %s\n", aurora.Red("error:"), err.Error())
		},
	}
	if err := w.Init(); err != nil {
		return fmt.Errorf("fail to initialize the watch service: %w", err)
	}

	fmt.Fprintf(c.Writer, "watching %s\n", aurora.Bold(c.Path))
	if err := w.Run(ctx); err != nil {
		return fmt.Errorf("fail to watch the files: %w", err)
	}
	return nil
}

func (c *Client) process(ctx context.Context, entries []service.Entry) (bool, error) {
	w := worker.Worker{Providers: c.providers, Output: c.Writer}
	entries, err := w.Process(ctx, entries)
	if err != nil {
		return false, fmt.Errorf("fail to deliver the HTML: %w", err)
	}
	return c.output(entries), nil
}

func (c *Client) init() error {
	if c.Writer == nil {
		c.Writer = os.Stdout
	}
	if c.scan.Parser != nil {
		return nil
	}

	if c.Path == "" {
		return errors.New("missing 'path'")
	}

	stat, err := os.Stat(c.Path)
	if os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if err != nil {
		return fmt.Errorf("fail to check the path stat: %w", err)
	}
	root := c.Path
	if !stat.IsDir() {
		root = filepath.Dir(c.Path)
	}

	p := parser.Markdown{Engine: c.Render.Engine, Policy: c.Render.Policy, Anchors: c.Render.Anchors}
	if err := p.Init(); err != nil {
		return fmt.Errorf("fail to initialize the parser: %w", err)
	}

	s := scan.Scan{IgnoreFile: c.Ignore.File, IgnoreLink: c.Ignore.Link, Parser: p}
	if err := s.Init(); err != nil {
		return fmt.Errorf("fail to initialize the scan service: %w", err)
	}

	f := provider.File{Root: root, Directory: c.Output.Directory, Extension: c.Output.Extension}
	if err := f.Init(); err != nil {
		return fmt.Errorf("fail to initialize the file provider: %w", err)
	}
	providers := []worker.Provider{f}

	for _, endpoint := range c.Provider.Web.Endpoints {
		header := make(http.Header)
		for key, values := range c.Provider.Web.Config {
			header[http.CanonicalHeaderKey(key)] = values
		}
		for key, values := range c.Provider.Web.ConfigOverwrite[endpoint] {
			header[http.CanonicalHeaderKey(key)] = values
		}

		w := provider.Web{Endpoint: endpoint, Config: provider.WebConfig{Header: header}}
		if err := w.Init(); err != nil {
			return fmt.Errorf("fail to initialize the web provider: %w", err)
		}
		providers = append(providers, w)
	}

	c.scan = s
	c.providers = providers
	return nil
}

func (c Client) output(entries []service.Entry) bool {
	entries = append([]service.Entry(nil), entries...)
	sort.Sort(serviceEntrySort(entries))

	var failed bool
	for _, entry := range entries {
		fmt.Fprint(c.Writer, aurora.Bold(c.relativePath(entry.Path)))
		for _, target := range entry.Targets {
			fmt.Fprintf(c.Writer, "\n%s %s", aurora.Bold(aurora.Gray(24, "-")), target)
		}
		if len(entry.Links) > 0 {
			fmt.Fprintf(c.Writer, "\n%s %d links", aurora.Bold(aurora.Gray(24, "-")), len(entry.Links))
		}
		fmt.Fprintf(c.Writer, "\n\n")

		if entry.FailReason != nil {
			failed = true
		}
	}

	// Printing the details of the failure.
	for _, entry := range entries {
		if entry.FailReason == nil {
			continue
		}
		fmt.Fprintf(c.Writer, "The delivery of '%s' failed because of:\n", aurora.Bold(c.relativePath(entry.Path)))
		entry.FailReason()
		fmt.Fprintf(c.Writer, "\n\n")
	}

	return failed
}

func (c Client) relativePath(path string) string {
	dirPath := c.Path
	if !strings.HasSuffix(dirPath, string(filepath.Separator)) {
		dirPath += string(filepath.Separator)
	}
	return strings.TrimPrefix(path, dirPath)
}

type serviceEntrySort []service.Entry

func (s serviceEntrySort) Len() int {
	return len(s)
}

func (s serviceEntrySort) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
}

func (s serviceEntrySort) Less(i, j int) bool {
	return s[i].Path < s[j].Path
}
