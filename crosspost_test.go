package postsite

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCrosspost(t *testing.T) {
	var created int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/u1/posts" {
			http.NotFound(w, r)
			return
		}
		created++
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{
			"id": "abc", "url": "https://medium.com/@dev/spring-profiles-abc",
		}})
	}))
	defer srv.Close()

	cfg := loadTestConfig(t, defaultSite(t))
	cfg.Medium.APIURL = srv.URL
	cfg.Medium.AuthorID = "u1"
	ctx := context.Background()
	log := NewLogger("test")

	if _, err := Crosspost(ctx, cfg, log, false); err == nil {
		t.Fatal("expected an error without MEDIUM_TOKEN")
	}

	res, err := Crosspost(ctx, cfg, log, true)
	if err != nil || res.WouldPost != 1 || res.Posted != 0 || created != 0 {
		t.Fatalf("dry run: %+v, %v, %d requests", res, err, created)
	}

	cfg.Medium.Token = "tok"
	res, err = Crosspost(ctx, cfg, log, false)
	if err != nil || res.Posted != 1 || created != 1 {
		t.Fatalf("first run: %+v, %v, %d requests", res, err, created)
	}
	res, err = Crosspost(ctx, cfg, log, false)
	if err != nil || res.Skipped != 1 || created != 1 {
		t.Fatalf("second run should skip: %+v, %v, %d requests", res, err, created)
	}
}
