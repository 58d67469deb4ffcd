// Package roster implements the administrative list edits on the staff,
// service, title and question lists. Lists are plain ordered sequences edited
// by index; how duplicates are treated is a deployment setting.
package roster

import (
	"fmt"
	"strings"

	"github.com/feedbackdesk/feedback-backend/errors"
	"github.com/feedbackdesk/feedback-backend/types"
)

// DuplicatePolicy decides what happens to repeated entries in a list.
type DuplicatePolicy string

const (
	// DuplicatesAllow keeps repeated entries as submitted.
	DuplicatesAllow DuplicatePolicy = "allow"
	// DuplicatesReject fails the edit when an entry repeats.
	DuplicatesReject DuplicatePolicy = "reject"
	// DuplicatesDedupe silently keeps only the first occurrence.
	DuplicatesDedupe DuplicatePolicy = "dedupe"
)

// ParsePolicy maps a config value to a policy. Empty means allow.
func ParsePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DuplicatesAllow, nil
	case DuplicatesAllow, DuplicatesReject, DuplicatesDedupe:
		return p, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q (want allow, reject or dedupe)", s)
	}
}

// Add appends v.
func Add[T any](list []T, v T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, list...)
	return append(out, v)
}

// Update replaces the element at index.
func Update[T any](list []T, index int, v T) ([]T, error) {
	if index < 0 || index >= len(list) {
		return nil, indexError(index, len(list))
	}
	out := make([]T, len(list))
	copy(out, list)
	out[index] = v
	return out, nil
}

// Delete removes the element at index.
func Delete[T any](list []T, index int) ([]T, error) {
	if index < 0 || index >= len(list) {
		return nil, indexError(index, len(list))
	}
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:index]...)
	return append(out, list[index+1:]...), nil
}

func indexError(index, length int) error {
	return errors.ValidationFailed("invalid_index", fmt.Sprintf("index %d is out of range for a list of %d entries", index, length))
}

// NormalizeStrings trims entries, drops blank ones and applies the duplicate policy.
func NormalizeStrings(list []string, policy DuplicatePolicy) ([]string, error) {
	out := make([]string, 0, len(list))
	seen := map[string]struct{}{}
	for _, item := range list {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			switch policy {
			case DuplicatesReject:
				return nil, duplicateError(item)
			case DuplicatesDedupe:
				continue
			}
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out, nil
}

// NormalizeIndividuals is NormalizeStrings for staff entries. Two entries are
// duplicates when their selection labels are equal.
func NormalizeIndividuals(list []types.Individual, policy DuplicatePolicy) ([]types.Individual, error) {
	out := make([]types.Individual, 0, len(list))
	seen := map[string]struct{}{}
	for _, ind := range list {
		ind.Name = strings.TrimSpace(ind.Name)
		ind.Designation = strings.TrimSpace(ind.Designation)
		if ind.Name == "" {
			continue
		}
		label := ind.Label()
		if _, dup := seen[label]; dup {
			switch policy {
			case DuplicatesReject:
				return nil, duplicateError(label)
			case DuplicatesDedupe:
				continue
			}
		}
		seen[label] = struct{}{}
		out = append(out, ind)
	}
	return out, nil
}

func duplicateError(item string) error {
	return errors.NewConflictError("Duplicate list entry", fmt.Sprintf("%q appears more than once", item))
}
