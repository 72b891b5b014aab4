package domain

import "testing"

func TestListQueryToURLValues(t *testing.T) {
	query := ListQuery{
		Page:      3,
		PageSize:  20,
		SortField: "createdAt",
		Filters: map[string]string{
			"category": "fiction",
			"name":     "go",
		},
	}

	values := query.ToURLValues()

	if got := values.Get("_page"); got != "3" {
		t.Fatalf("expected _page=3, got %s", got)
	}
	if got := values.Get("_per_page"); got != "20" {
		t.Fatalf("expected _per_page=20, got %s", got)
	}
	if got := values.Get("_sort"); got != "createdAt" {
		t.Fatalf("expected _sort=createdAt, got %s", got)
	}
	if got := values.Get("category"); got != "fiction" {
		t.Fatalf("expected category filter, got %s", got)
	}
	if got := values.Get("name"); got != "go" {
		t.Fatalf("expected name filter, got %s", got)
	}
}

func TestListQueryOmitsUnsetParameters(t *testing.T) {
	query := ListQuery{
		Page:     1,
		PageSize: 5,
		Filters: map[string]string{
			"category": "",
			"  ":       "x",
		},
	}

	values := query.ToURLValues()

	if _, present := values["_sort"]; present {
		t.Fatalf("unset sort field must be omitted, got %v", values)
	}
	if _, present := values["category"]; present {
		t.Fatalf("empty filter value must be omitted, not sent blank")
	}
	if len(values) != 2 {
		t.Fatalf("expected only _page and _per_page, got %v", values)
	}
}

func TestListQueryNormalizeDefaults(t *testing.T) {
	normalized := ListQuery{Page: 0, PageSize: -1}.Normalize()
	if normalized.Page != 1 {
		t.Fatalf("expected default page 1, got %d", normalized.Page)
	}
	if normalized.PageSize != defaultPageSize {
		t.Fatalf("expected default page size %d, got %d", defaultPageSize, normalized.PageSize)
	}

	capped := ListQuery{Page: 1, PageSize: 1000}.Normalize()
	if capped.PageSize != maxPageSize {
		t.Fatalf("expected page size capped at %d, got %d", maxPageSize, capped.PageSize)
	}
}

func TestListQueryCanonicalKeyStable(t *testing.T) {
	a := ListQuery{Page: 1, PageSize: 10, Filters: map[string]string{"a": "1", "b": "2"}}
	b := ListQuery{Page: 1, PageSize: 10, Filters: map[string]string{"b": "2", "a": "1"}}
	if a.CanonicalKey() != b.CanonicalKey() {
		t.Fatalf("filter map order must not change the canonical key")
	}
	c := a.WithPage(2)
	if a.CanonicalKey() == c.CanonicalKey() {
		t.Fatalf("different pages must produce different keys")
	}
}
