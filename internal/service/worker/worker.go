package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/logrusorgru/aurora"

	"nitro/markdown-render/internal/service"
)

// Provider represents the providers resonsible to deliver the entries.
type Provider interface {
	Authority(path string) bool
	Deliver(ctx context.Context, entry service.Entry) (string, error)
} // nolint: golint

type workerError struct {
	units []workerErrorUnit
}

func (w workerError) Error() string {
	if len(w.units) == 1 {
		return w.units[0].err.Error()
	}

	errors := make([]string, 0, len(w.units))
	for _, unit := range w.units {
		errors = append(errors, unit.err.Error())
	}
	return fmt.Sprintf("multiple errors detected ('%s')", strings.Join(errors, "', '"))
}

type workerErrorUnit struct {
	err   error
	entry service.Entry
}

// Worker delivers the rendered entries. Every provider with authority over an entry receives it, in order.
type Worker struct {
	Providers []Provider
	Output    io.Writer
}

// Process the entries.
func (w Worker) Process(ctx context.Context, entries []service.Entry) ([]service.Entry, error) {
	if len(w.Providers) == 0 {
		return nil, errors.New("missing 'providers'")
	}
	if w.Output == nil {
		w.Output = os.Stdout
	}

	var (
		errors    []workerErrorUnit
		result    []service.Entry
		processed int
		total     = len(entries)
	)

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, provider := range w.Providers {
			if !provider.Authority(entry.Path) {
				continue
			}

			target, err := provider.Deliver(ctx, entry)
			if e, ok := err.(service.EnhancedError); err != nil && !ok {
				errors = append(errors, workerErrorUnit{err: err, entry: entry})
			} else if ok {
				entry.FailReason = e.PrettyPrint
			} else {
				entry.Targets = append(entry.Targets, target)
			}
		}
		result = append(result, entry)
		processed++
		fmt.Fprintf(w.Output, "%d of %d entries processed\n", aurora.Bold(processed), aurora.Bold(total))
	}

	if len(errors) == 0 {
		return result, nil
	}
	return nil, workerError{units: errors}
}
