package model

import (
	"sort"
	"strings"
)

type Category string

const (
	CategorySolo  Category = "solo"
	CategoryGroup Category = "group"
)

func (c Category) IsValid() bool {
	return c == CategorySolo || c == CategoryGroup
}

func (c Category) String() string {
	return string(c)
}

// NormalizeName returns the form used to compare people by name:
// upper-cased, with surrounding whitespace removed and inner runs collapsed to one space
func NormalizeName(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}

// Worker represents an instructor and the hours they work
type Worker struct {
	ID     string
	Weight float64 // Hours available, 0 excludes the worker from allocation
}

// Item represents a single submission to be graded
type Item struct {
	SubmissionID string
	Members      []string // Student names, one for solo submissions
}

// Category derives the item's category from its member count
func (i Item) Category() Category {
	if len(i.Members) == 1 {
		return CategorySolo
	}
	return CategoryGroup
}

// Label joins the member names for display
func (i Item) Label() string {
	return strings.Join(i.Members, ", ")
}

// Assignment maps a worker ID to the items assigned to them
type Assignment map[string][]Item

// Count returns how many items of the given category are assigned to worker
func (a Assignment) Count(worker string, category Category) int {
	count := 0
	for _, item := range a[worker] {
		if item.Category() == category {
			count++
		}
	}
	return count
}

// Total returns the number of items across all workers
func (a Assignment) Total() int {
	total := 0
	for _, items := range a {
		total += len(items)
	}
	return total
}

// SortedWorkers returns the worker IDs in lexical order
func (a Assignment) SortedWorkers() []string {
	workers := make([]string, 0, len(a))
	for worker := range a {
		workers = append(workers, worker)
	}
	sort.Strings(workers)
	return workers
}
