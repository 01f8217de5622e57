package models

import (
	"encoding/json"
	"fmt"
)

// Record is one row of an upstream resource. The console is schema-driven, so
// rows stay dynamic; field access goes through typed helpers.
type Record map[string]interface{}

// ID returns the record identifier rendered as a string. Upstream registries
// use both numeric and string ids.
func (r Record) ID() string {
	return r.String("id")
}

// String renders the named field as a string, empty when absent.
func (r Record) String(field string) string {
	value, ok := r[field]
	if !ok || value == nil {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return typed
	case json.Number:
		return typed.String()
	case float64:
		// JSON numbers decode as float64; ids are integral in practice.
		if typed == float64(int64(typed)) {
			return fmt.Sprintf("%d", int64(typed))
		}
		return fmt.Sprintf("%v", typed)
	default:
		return fmt.Sprintf("%v", typed)
	}
}

// Page is the uniform paginated result shape returned by upstream list
// endpoints. Unpaginated taxonomy endpoints are normalised into a single
// page with TotalPages == 1.
type Page struct {
	Items       []Record `json:"items"`
	TotalPages  int      `json:"totalPages"`
	CurrentPage int      `json:"currentPageIndex"`
}

// Pagination contains pagination metadata returned in console list responses.
type Pagination struct {
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	PageSize   int `json:"pageSize,omitempty"`
}
