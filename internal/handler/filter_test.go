package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ReqFilter/internal/filter"
	"ReqFilter/internal/model"
	"ReqFilter/internal/resolver"
	"ReqFilter/internal/sortable"
	"ReqFilter/internal/store"
)

func newResolver() *resolver.Resolver {
	reg := model.NewRegistry().
		AddModel(&model.Model{Name: "User", Table: "users"}).
		AddResource(&model.Resource{
			Name: "posts",
			Filters: []filter.Field{
				{Name: "status", Spec: filter.Grammar("type:int")},
				{Name: "owner", Spec: filter.Grammar("alias:ownerId,User")},
			},
			Sortables: []sortable.Column{{Key: "title", Title: "Title"}},
		})
	return resolver.New(reg, store.NewMemory().Add("User", store.Record{"id": 1, "name": "Ann"}))
}

func TestFilterHandler_Post(t *testing.T) {
	body := `{"resource":"posts","params":{"status":"3","owner":1},"sorts":["title desc"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/filter", strings.NewReader(body))
	w := httptest.NewRecorder()
	FilterHandler(newResolver())(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	got := w.Body.String()
	if !strings.Contains(got, `"filters":{"status":3,"ownerId":{"id":1,"name":"Ann"}}`) {
		t.Fatalf("unexpected filters: %s", got)
	}
	if !strings.Contains(got, `"sort":"title desc"`) {
		t.Fatalf("unexpected sort: %s", got)
	}
}

func TestFilterHandler_Get(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/filter?resource=posts&status=4&sort=-title", nil)
	w := httptest.NewRecorder()
	FilterHandler(newResolver())(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := w.Body.String(); !strings.Contains(got, `"filters":{"status":4}`) || !strings.Contains(got, `"sort":"title desc"`) {
		t.Fatalf("unexpected body: %s", got)
	}
}

func TestFilterHandler_ErrorStatuses(t *testing.T) {
	cases := []struct {
		method, target, body string
		want                 int
	}{
		{http.MethodPost, "/api/filter", `{bad`, http.StatusBadRequest},
		{http.MethodPost, "/api/filter", `{"resource":"nope"}`, http.StatusNotFound},
		{http.MethodPost, "/api/filter", `{"resource":"posts","params":{"owner":9}}`, http.StatusNotFound},
		{http.MethodDelete, "/api/filter", ``, http.StatusMethodNotAllowed},
	}
	for _, c := range cases {
		req := httptest.NewRequest(c.method, c.target, strings.NewReader(c.body))
		w := httptest.NewRecorder()
		FilterHandler(newResolver())(w, req)
		if w.Code != c.want {
			t.Errorf("%s %s %s: status = %d, want %d", c.method, c.target, c.body, w.Code, c.want)
		}
	}
}

type fakeFlusher struct {
	n   int
	err error
}

func (f fakeFlusher) Flush(context.Context) (int, error) { return f.n, f.err }

func TestFlushHandler(t *testing.T) {
	w := httptest.NewRecorder()
	FlushHandler(fakeFlusher{n: 3})(w, httptest.NewRequest(http.MethodPost, "/api/cache/flush", nil))
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"flushed":3}` {
		t.Fatalf("flush: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	FlushHandler(fakeFlusher{err: errors.New("boom")})(w, httptest.NewRequest(http.MethodPost, "/api/cache/flush", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("failing flush: %d", w.Code)
	}

	w = httptest.NewRecorder()
	FlushHandler(nil)(w, httptest.NewRequest(http.MethodPost, "/api/cache/flush", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("disabled cache: %d", w.Code)
	}
}
