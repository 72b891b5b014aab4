package domain

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	defaultPageSize = 5
	maxPageSize     = 100
)

// ListQuery encapsulates the paging, sorting, and filtering state a list view
// sends to the collection backend.
type ListQuery struct {
	Page      int
	PageSize  int
	SortField string
	Filters   map[string]string
}

// Normalize returns a sanitized copy applying defaults and bounds.
func (q ListQuery) Normalize() ListQuery {
	normalized := q
	if normalized.Page <= 0 {
		normalized.Page = 1
	}
	if normalized.PageSize <= 0 {
		normalized.PageSize = defaultPageSize
	}
	if normalized.PageSize > maxPageSize {
		normalized.PageSize = maxPageSize
	}

	normalized.SortField = strings.TrimSpace(normalized.SortField)

	if len(normalized.Filters) > 0 {
		normalized.Filters = sanitizeFilters(normalized.Filters)
	}

	return normalized
}

// WithPage returns a copy of the query positioned on the given page.
func (q ListQuery) WithPage(page int) ListQuery {
	copied := q
	copied.Page = page
	return copied
}

// ToURLValues converts the query into backend query parameters. Page and page
// size are always present; the sort field and each filter appear only when
// set, so the backend sees a stable query shape and never an empty parameter.
func (q ListQuery) ToURLValues() url.Values {
	normalized := q.Normalize()
	values := url.Values{}
	values.Set("_page", strconv.Itoa(normalized.Page))
	values.Set("_per_page", strconv.Itoa(normalized.PageSize))
	if normalized.SortField != "" {
		values.Set("_sort", normalized.SortField)
	}
	for key, value := range normalized.Filters {
		values.Set(key, value)
	}
	return values
}

// CanonicalKey builds a stable key for the combination of paging parameters.
func (q ListQuery) CanonicalKey() string {
	normalized := q.Normalize()
	sortField := strings.ToLower(normalized.SortField)
	filtersKey := canonicalFiltersKey(normalized.Filters)

	var builder strings.Builder
	builder.Grow(len(sortField) + len(filtersKey) + 32)
	builder.WriteString("page=")
	builder.WriteString(strconv.Itoa(normalized.Page))
	builder.WriteString("&pageSize=")
	builder.WriteString(strconv.Itoa(normalized.PageSize))
	builder.WriteString("&sort=")
	builder.WriteString(sortField)
	if filtersKey != "" {
		builder.WriteString("&filters=")
		builder.WriteString(filtersKey)
	}

	return builder.String()
}

func sanitizeFilters(filters map[string]string) map[string]string {
	if len(filters) == 0 {
		return nil
	}
	sanitized := make(map[string]string, len(filters))
	for key, value := range filters {
		trimmedKey := strings.TrimSpace(key)
		trimmedValue := strings.TrimSpace(value)
		if trimmedKey == "" || trimmedValue == "" {
			continue
		}
		sanitized[trimmedKey] = trimmedValue
	}
	if len(sanitized) == 0 {
		return nil
	}
	return sanitized
}

func canonicalFiltersKey(filters map[string]string) string {
	if len(filters) == 0 {
		return ""
	}
	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var builder strings.Builder
	for index, key := range keys {
		if index > 0 {
			builder.WriteString(";")
		}
		builder.WriteString(key)
		builder.WriteString("=")
		builder.WriteString(filters[key])
	}
	return builder.String()
}
