package handlers

import (
	"net/url"
	"strconv"

	"github.com/vidtube/backend/internal/models"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// pageFromQuery parses page/limit/sortBy/sortType query parameters, applying
// the defaults shared by every list endpoint: page 1, limit 10, createdAt
// ascending. Sort columns are validated downstream against a whitelist.
func pageFromQuery(q url.Values) models.Page {
	page := models.Page{
		Number: 1,
		Limit:  defaultPageLimit,
		SortBy: "createdAt",
	}

	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		page.Number = n
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		page.Limit = min(n, maxPageLimit)
	}
	if sortBy := q.Get("sortBy"); sortBy != "" {
		page.SortBy = sortBy
	}
	page.SortDesc = q.Get("sortType") == "desc"

	return page
}
