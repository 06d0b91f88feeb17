package scan

import (
	"bytes"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/PuerkitoBio/goquery"

	"nitro/markdown-render/internal/service"
)

type scanParser interface {
	Do(payload []byte) []byte
}

// Scan is responsible for reading and rendering the markdown files and extracting the links of the result.
type Scan struct {
	IgnoreFile []string
	IgnoreLink []string
	Parser     scanParser

	regexFile []regexp.Regexp
	regexLink []regexp.Regexp
}

// Init the internal state.
func (s *Scan) Init() error {
	if s.Parser == nil {
		return errors.New("missing 'parser'")
	}

	var err error
	if s.regexFile, err = s.compile(s.IgnoreFile); err != nil {
		return fmt.Errorf("fail to compile the file ignore list: %w", err)
	}
	if s.regexLink, err = s.compile(s.IgnoreLink); err != nil {
		return fmt.Errorf("fail to compile the link ignore list: %w", err)
	}
	return nil
}

// Process the file or directory.
func (s Scan) Process(path string) ([]service.Entry, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("fail to check the path stat: %w", err)
	}

	files := []string{path}
	if stat.IsDir() {
		if files, err = s.listFiles(path); err != nil {
			return nil, fmt.Errorf("fail to fetch the markdown file: %w", err)
		}
	}
	return s.ProcessFiles(files)
}

// ProcessFiles renders the given markdown files. Ignored files are skipped.
func (s Scan) ProcessFiles(files []string) ([]service.Entry, error) {
	files = append([]string(nil), files...)
	sort.Strings(files)

	var result []service.Entry
	for _, file := range files {
		if s.ignored(s.regexFile, file) {
			continue
		}

		entry, err := s.processFile(file)
		if err != nil {
			return nil, fmt.Errorf("fail to process the file '%s': %w", file, err)
		}
		result = append(result, entry)
	}
	return result, nil
}

func (Scan) listFiles(path string) ([]string, error) {
	var paths []string

	walkFn := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || filepath.Ext(path) != ".md" {
			return nil
		}

		paths = append(paths, path)
		return nil
	}
	if err := filepath.Walk(path, walkFn); err != nil {
		return nil, fmt.Errorf("fail to fetch the files paths: %w", err)
	}

	return paths, nil
}

func (s Scan) processFile(path string) (service.Entry, error) {
	payload, err := ioutil.ReadFile(path)
	if err != nil {
		return service.Entry{}, fmt.Errorf("fail to read the file: %w", err)
	}

	html := s.Parser.Do(payload)
	links, err := s.extractLinks(html)
	if err != nil {
		return service.Entry{}, fmt.Errorf("fail to extract links: %w", err)
	}

	return service.Entry{Path: path, HTML: string(html), Links: s.removeDuplicates(links)}, nil
}

func (s Scan) extractLinks(payload []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("fail to parse the HTML: %w", err)
	}

	var links []string
	doc.Find("a").Each(func(i int, selection *goquery.Selection) {
		href, ok := selection.Attr("href")
		if !ok || s.ignored(s.regexLink, href) {
			return
		}
		links = append(links, href)
	})
	return links, nil
}

func (Scan) ignored(list []regexp.Regexp, value string) bool {
	for _, regex := range list {
		if regex.MatchString(value) {
			return true
		}
	}
	return false
}

func (Scan) compile(exprs []string) ([]regexp.Regexp, error) {
	result := make([]regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		regex, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("fail to compile regex '%s': %w", expr, err)
		}
		result = append(result, *regex)
	}
	return result, nil
}

// removeDuplicates keeps the first occurrence of every element, in order.
func (Scan) removeDuplicates(elements []string) []string {
	index := make(map[string]struct{}, len(elements))
	result := make([]string, 0, len(elements))
	for _, element := range elements {
		if _, ok := index[element]; ok {
			continue
		}
		index[element] = struct{}{}
		result = append(result, element)
	}
	return result
}
