package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.HTTPRequestsTotal == nil || r.BuildsTotal == nil || r.NavigationsTotal == nil {
		t.Fatal("metrics not initialized")
	}
	if r.GetPrometheusRegistry() == nil {
		t.Fatal("Prometheus registry not initialized")
	}
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordBuild(t *testing.T) {
	r := NewRegistry()

	r.RecordBuild(GraphSize{Nodes: 40, Edges: 70, InterFloorEdges: 3, Components: 1, Floors: 2, FailedFloors: []string{"C"}}, time.Second)

	if got := testutil.ToFloat64(r.BuildsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("builds{success} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.GraphNodes); got != 40 {
		t.Errorf("graph nodes = %v, want 40", got)
	}
	if got := testutil.ToFloat64(r.FloorFailuresTotal.WithLabelValues("C")); got != 1 {
		t.Errorf("floor failures{C} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.GraphReady); got != 1 {
		t.Errorf("graph ready = %v, want 1", got)
	}

	r.RecordBuildFailure(time.Second, false)
	if got := testutil.ToFloat64(r.GraphReady); got != 0 {
		t.Errorf("graph ready after failure = %v, want 0", got)
	}
	if got := testutil.ToFloat64(r.BuildsTotal.WithLabelValues("failure")); got != 1 {
		t.Errorf("builds{failure} = %v, want 1", got)
	}
}

func TestRecordNavigation(t *testing.T) {
	r := NewRegistry()
	r.RecordNavigation(OutcomeSuccess, time.Millisecond, 12, 4)
	r.RecordNavigation(OutcomeSuccess, time.Millisecond, 30, 6)
	r.RecordNavigation(OutcomeNotFound, time.Microsecond, 0, 0)

	if got := testutil.ToFloat64(r.NavigationsTotal.WithLabelValues(OutcomeSuccess)); got != 2 {
		t.Errorf("navigations{success} = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(r.NavigationsTotal); got != 2 {
		t.Errorf("navigation series = %d, want 2", got)
	}
}

func TestRecordDirectory(t *testing.T) {
	r := NewRegistry()
	r.RecordDirectory(12, nil)
	r.RecordDirectory(0, errors.New("bad yaml"))

	if got := testutil.ToFloat64(r.DirectoryRooms); got != 12 {
		t.Errorf("rooms = %v, want 12 (failed reload keeps the old count)", got)
	}
	if got := testutil.ToFloat64(r.DirectoryReloadsTotal.WithLabelValues("failure")); got != 1 {
		t.Errorf("reloads{failure} = %v, want 1", got)
	}
}

func TestNilRegistry(t *testing.T) {
	var r *Registry
	r.RecordHTTPRequest("GET", "/", "200", time.Millisecond)
	r.RecordRateLimited()
	r.RecordBuild(GraphSize{}, time.Second)
	r.RecordBuildFailure(time.Second, false)
	r.RecordNavigation(OutcomeSuccess, time.Millisecond, 1, 1)
	r.RecordDirectory(1, nil)
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.RecordHTTPRequest("POST", "/api/navigate", "200", 5*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `campus_nav_http_requests_total{method="POST",route="/api/navigate",status="200"} 1`) {
		t.Errorf("metrics output missing request counter:\n%s", body)
	}
}
