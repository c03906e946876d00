package handlers

import (
	"net/url"
	"testing"
)

func TestPageFromQueryDefaults(t *testing.T) {
	page := pageFromQuery(url.Values{})

	if page.Number != 1 || page.Limit != 10 {
		t.Fatalf("expected page 1 limit 10, got %d/%d", page.Number, page.Limit)
	}
	if page.SortBy != "createdAt" || page.SortDesc {
		t.Fatalf("expected createdAt ascending, got %q desc=%v", page.SortBy, page.SortDesc)
	}
	if page.Offset() != 0 {
		t.Fatalf("expected zero offset, got %d", page.Offset())
	}
}

func TestPageFromQueryParsing(t *testing.T) {
	q := url.Values{}
	q.Set("page", "2")
	q.Set("limit", "25")
	q.Set("sortBy", "views")
	q.Set("sortType", "desc")

	page := pageFromQuery(q)

	if page.Number != 2 || page.Limit != 25 {
		t.Fatalf("expected page 2 limit 25, got %d/%d", page.Number, page.Limit)
	}
	if page.SortBy != "views" || !page.SortDesc {
		t.Fatalf("expected views descending, got %q desc=%v", page.SortBy, page.SortDesc)
	}
	if page.Offset() != 25 {
		t.Fatalf("expected offset 25, got %d", page.Offset())
	}
}

func TestPageFromQueryRejectsBadValues(t *testing.T) {
	q := url.Values{}
	q.Set("page", "-3")
	q.Set("limit", "9000")
	q.Set("sortType", "sideways")

	page := pageFromQuery(q)

	if page.Number != 1 {
		t.Fatalf("expected negative page to fall back to 1, got %d", page.Number)
	}
	if page.Limit != 100 {
		t.Fatalf("expected limit capped at 100, got %d", page.Limit)
	}
	if page.SortDesc {
		t.Fatal("expected unknown sortType to mean ascending")
	}
}
