package shared

import (
	"net/http"
	"strconv"
)

const TotalCountHeader = "X-Total-Count"

// Page is a limit/offset window over a listing.
type Page struct {
	Limit  int
	Offset int
}

// ParsePagination reads limit/offset, or page/page_size when offset is
// absent. Invalid values fall back to the defaults; limit is capped at max.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Page {
	q := r.URL.Query()
	page := Page{Limit: defaultLimit}

	if v, ok := positiveInt(q.Get("limit")); ok {
		page.Limit = v
	} else if v, ok := positiveInt(q.Get("page_size")); ok {
		page.Limit = v
	}
	if maxLimit > 0 && page.Limit > maxLimit {
		page.Limit = maxLimit
	}

	if raw := q.Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			page.Offset = v
		}
	} else if n, ok := positiveInt(q.Get("page")); ok {
		page.Offset = (n - 1) * page.Limit
	}
	return page
}

func positiveInt(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func SetTotal(w http.ResponseWriter, total int) {
	w.Header().Set(TotalCountHeader, strconv.Itoa(total))
}
