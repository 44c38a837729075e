// Package selection decides which files may be queued for an upload.
//
// A State is the ordered list of files the user has picked so far. New
// batches go through Evaluate, which never touches the network or the disk,
// and only the accepted part of a batch is appended.
package selection

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	MaxFileSize  int64 = 500 * 1024 * 1024
	MaxFiles           = 50
	MaxTotalSize int64 = 2 * 1024 * 1024 * 1024
)

// SelectableFile is one file picked by the user. Handle is whatever the
// caller needs to open the content later (a path, a multipart header).
type SelectableFile struct {
	Name     string
	Size     int64
	MimeType string
	Handle   any
}

// Limits bounds a selection.
type Limits struct {
	MaxFileSize  int64
	MaxFiles     int
	MaxTotalSize int64
	AllowedTypes []string
}

// DefaultLimits returns the limits the sharing backend is provisioned for.
func DefaultLimits() Limits {
	return Limits{
		MaxFileSize:  MaxFileSize,
		MaxFiles:     MaxFiles,
		MaxTotalSize: MaxTotalSize,
		AllowedTypes: AllowedTypes(),
	}
}

func (l Limits) allows(mimeType string) bool {
	for _, t := range l.AllowedTypes {
		if t == mimeType {
			return true
		}
	}
	return false
}

// Result is the outcome of evaluating an incoming batch.
type Result struct {
	Accepted []SelectableFile
	Errors   []string
}

// Err returns the collected messages as a *ValidationError, or nil.
func (r Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return &ValidationError{Messages: r.Errors}
}

// ValidationError carries every message of a rejected batch.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "\n")
}

// Evaluate checks incoming against the per-file rules and the aggregate
// limits of current. Aggregate messages come first, then per-file messages in
// input order. When an aggregate limit would be exceeded nothing is accepted,
// so a State built only from Evaluate results never exceeds its limits.
func (l Limits) Evaluate(current *State, incoming []SelectableFile) Result {
	var (
		errs      []string
		accepted  []SelectableFile
		aggregate bool
	)

	currentCount, currentBytes := 0, int64(0)
	if current != nil {
		currentCount, currentBytes = current.Count(), current.TotalBytes()
	}

	if currentCount+len(incoming) > l.MaxFiles {
		errs = append(errs, fmt.Sprintf("Maximum %d files allowed", l.MaxFiles))
		aggregate = true
	}

	if currentBytes+totalSize(incoming) > l.MaxTotalSize {
		errs = append(errs, fmt.Sprintf("Total size exceeds %s limit", FormatSize(l.MaxTotalSize)))
		aggregate = true
	}

	for _, f := range incoming {
		fileErrs := l.checkFile(f)
		if len(fileErrs) > 0 {
			errs = append(errs, fileErrs...)
			continue
		}
		accepted = append(accepted, f)
	}

	if aggregate {
		accepted = nil
	}

	return Result{Accepted: accepted, Errors: errs}
}

func (l Limits) checkFile(f SelectableFile) []string {
	var errs []string
	if f.Size > l.MaxFileSize {
		errs = append(errs, fmt.Sprintf("%s: File size exceeds %s limit", f.Name, FormatSize(l.MaxFileSize)))
	}
	if !l.allows(f.MimeType) {
		errs = append(errs, fmt.Sprintf("%s: File type not supported", f.Name))
	}
	return errs
}

// Evaluate runs DefaultLimits().Evaluate.
func Evaluate(current *State, incoming []SelectableFile) Result {
	return DefaultLimits().Evaluate(current, incoming)
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count in 1024 steps with at most two decimals,
// e.g. "500 MB", "1.5 KB" or "0 Bytes".
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	value, unit := float64(bytes), 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}
	return humanize.FtoaWithDigits(value, 2) + " " + sizeUnits[unit]
}

func totalSize(files []SelectableFile) int64 {
	var total int64
	for _, f := range files {
		total += f.Size
	}
	return total
}
