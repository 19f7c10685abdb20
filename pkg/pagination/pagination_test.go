package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextWithQuery(q string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+q, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestFromContext(t *testing.T) {
	cases := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", DefaultLimit, 0},
		{"limit=10&offset=30", 10, 30},
		{"limit=500", MaxLimit, 0},
		{"limit=-5&offset=-2", DefaultLimit, 0},
		{"limit=abc&offset=xyz", DefaultLimit, 0},
	}
	for _, tc := range cases {
		p := FromContext(contextWithQuery(tc.query))
		if p.Limit != tc.wantLimit || p.Offset != tc.wantOffset {
			t.Errorf("query %q: got %+v, want limit=%d offset=%d", tc.query, p, tc.wantLimit, tc.wantOffset)
		}
	}
}

func TestPageHasMore(t *testing.T) {
	p := Params{Limit: 20, Offset: 0}
	page := NewPage([]int{1, 2, 3}, 50, p)
	if !page.HasMore {
		t.Error("expected HasMore=true with 50 total and first page of 20")
	}
	last := NewPage([]int{1}, 50, Params{Limit: 20, Offset: 40})
	if last.HasMore {
		t.Error("expected HasMore=false on final page")
	}
}

func TestParamsSQL(t *testing.T) {
	p := Params{Limit: 25, Offset: 50}
	if got := p.SQL(); got != "LIMIT 25 OFFSET 50" {
		t.Errorf("SQL() = %q", got)
	}
	if p.NextOffset() != 75 {
		t.Errorf("NextOffset() = %d", p.NextOffset())
	}
	if !p.HasNext(100) || p.HasNext(75) {
		t.Error("HasNext boundary wrong")
	}
}
