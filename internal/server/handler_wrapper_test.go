package server

import (
	"net/http/httptest"
	"testing"
)

func TestPopulateParams(t *testing.T) {
	type request struct {
		ID       string `path:"id"`
		Identity int64  `path:"identity"`
		Filter   string `query:"filter"`
		Limit    int    `query:"limit"`
		Ignored  string
	}

	t.Run("ok", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/x?filter=a%3E1&limit=5", nil)
		r.SetPathValue("id", "abc")
		r.SetPathValue("identity", "12")
		var req request
		if err := populateParams(r, &req); err != nil {
			t.Fatalf("populateParams failed: %v", err)
		}
		want := request{ID: "abc", Identity: 12, Filter: "a>1", Limit: 5}
		if req != want {
			t.Errorf("got %+v, want %+v", req, want)
		}
	})

	t.Run("bad integer", func(t *testing.T) {
		for _, q := range []string{"/x?limit=ten", "/x?limit=1.5"} {
			var req request
			if err := populateParams(httptest.NewRequest("GET", q, nil), &req); err == nil {
				t.Errorf("populateParams(%s) succeeded", q)
			}
		}
		r := httptest.NewRequest("GET", "/x", nil)
		r.SetPathValue("identity", "-")
		var req request
		if err := populateParams(r, &req); err == nil {
			t.Error("populateParams succeeded with identity \"-\"")
		}
	})

	t.Run("not a struct", func(t *testing.T) {
		var s string
		if err := populateParams(httptest.NewRequest("GET", "/x", nil), &s); err != nil {
			t.Error(err)
		}
	})
}
