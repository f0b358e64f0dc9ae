package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/seantiz/benchtop/internal/model"
)

func TestGetRun(t *testing.T) {
	srv := newTestServer(t)
	r := seedRun(t, srv)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/runs/" + r.ID)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got model.Run
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != r.ID {
		t.Errorf("id = %q, want %q", got.ID, r.ID)
	}
	if got.Group != "sorting" {
		t.Errorf("group = %q, want %q", got.Group, "sorting")
	}
	if got.Status != model.StatusPending {
		t.Errorf("status = %q, want %q", got.Status, model.StatusPending)
	}
}

func TestGetRunNotFound(t *testing.T) {
	srv := newTestServer(t)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/runs/nonexistent")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected an error message in the response body")
	}
}

func TestListRunsEmpty(t *testing.T) {
	srv := newTestServer(t)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/runs")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body listRunsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Total != 0 {
		t.Errorf("total = %d, want 0", body.Total)
	}
	if body.Runs == nil {
		t.Error("runs is null, want empty array")
	}
}

func TestListRunsPagination(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		r := &model.Run{
			ID:          model.NewID(),
			Status:      model.StatusPending,
			Group:       "sorting",
			Title:       "quick sort",
			Description: "sorts a random slice",
			N:           1,
			Rounds:      1,
			CreatedAt:   time.Now().UTC().Add(time.Duration(i) * time.Second),
		}
		if err := srv.store.CreateRun(ctx, r); err != nil {
			t.Fatalf("CreateRun[%d]: %v", i, err)
		}
	}

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/runs?limit=2&offset=1")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var body listRunsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Total != 5 {
		t.Errorf("total = %d, want 5", body.Total)
	}
	if len(body.Runs) != 2 {
		t.Errorf("len(runs) = %d, want 2", len(body.Runs))
	}
	if body.Limit != 2 || body.Offset != 1 {
		t.Errorf("limit/offset = %d/%d, want 2/1", body.Limit, body.Offset)
	}
}

func TestListRunsClampsBadParams(t *testing.T) {
	srv := newTestServer(t)
	seedRun(t, srv)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/runs?limit=-5&offset=-3")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var body listRunsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Limit != defaultListLimit {
		t.Errorf("limit = %d, want default %d", body.Limit, defaultListLimit)
	}
	if body.Offset != 0 {
		t.Errorf("offset = %d, want 0", body.Offset)
	}
}
