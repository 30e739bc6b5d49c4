package types

import (
	"fmt"
	"time"
)

// Category identifies one selectable group of backend tests.
type Category string

const (
	CategoryAPI         Category = "api"
	CategoryDatabase    Category = "database"
	CategoryUnit        Category = "unit"
	CategoryIntegration Category = "integration"
	CategorySecurity    Category = "security"
	CategoryAll         Category = "all"
)

// Categories returns all selectable categories in declaration order.
func Categories() []Category {
	return []Category{
		CategoryAPI,
		CategoryDatabase,
		CategoryUnit,
		CategoryIntegration,
		CategorySecurity,
		CategoryAll,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory converts a string into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category: %q", s)
	}
	return c, nil
}

// Command is a single external invocation: an argument vector plus a
// human-readable description used for logging and banners.
type Command struct {
	Args        []string
	Description string
}

// Name returns the executable portion of the argument vector.
func (c Command) Name() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[0]
}

// RunResult captures the outcome of one external test invocation.
// It lives only for the duration of the process; nothing is persisted.
type RunResult struct {
	Category Category
	Success  bool
	Duration time.Duration
	ExitCode int
}

// ReportEntry names one expected report artifact under the reports
// directory. Entries are static and ordered; they are never mutated.
type ReportEntry struct {
	Filename string
	Label    string
}

// CheckResult is the outcome of a single verification check.
type CheckResult struct {
	Name   string
	Passed bool
	Detail string
}
