package webui

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeData(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "combined_cleaned_data.csv")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

/*
TestTimeDayCounts verifies null TimeDays (empty, <NA>, text) are dropped and
the remaining values are counted and sorted numerically.
*/
func TestTimeDayCounts(t *testing.T) {
	p := writeData(t, "StudyID,TimeDays,Log10VL\n"+
		"a,10,1\n"+
		"a,-2,1\n"+
		"a,,1\n"+
		"b,<NA>,2\n"+
		"b,2,\n"+
		"b,10,3\n"+
		"b,x,3\n")

	got, err := TimeDayCounts(p)
	if err != nil {
		t.Fatalf("TimeDayCounts: %v", err)
	}
	want := []DayCount{{Day: -2, Count: 1}, {Day: 2, Count: 1}, {Day: 10, Count: 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("counts (-want +got):\n%s", diff)
	}
	if got[0].Label() != "-2" {
		t.Fatalf("label=%q", got[0].Label())
	}
}

func TestTimeDayCounts_HeaderOnly(t *testing.T) {
	p := writeData(t, "StudyID,TimeDays,Log10VL\n")
	got, err := TimeDayCounts(p)
	if err != nil || len(got) != 0 {
		t.Fatalf("got=%v err=%v; want no counts and no error", got, err)
	}
}

func TestTimeDayCounts_NoColumn(t *testing.T) {
	p := writeData(t, "StudyID\na\n")
	if _, err := TimeDayCounts(p); err == nil || !strings.Contains(err.Error(), "TimeDays") {
		t.Fatalf("err=%v; want missing column error", err)
	}
}

func TestHome(t *testing.T) {
	s := NewServer(Config{DataFile: "unused"})
	rec := get(t, s, "/")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/time_days/") {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
	if rec := get(t, s, "/nope"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown path code=%d; want 404", rec.Code)
	}
}

func TestTimeDaysPage(t *testing.T) {
	cases := []struct {
		name     string
		dataFile func(t *testing.T) string
		wantCode int
		wantBody []string
	}{
		{
			name: "chart",
			dataFile: func(t *testing.T) string {
				return writeData(t, "TimeDays\n0\n0\n1.5\n\n")
			},
			wantCode: http.StatusOK,
			wantBody: []string{"Count of Samples by Time Day", ">1.5<", "width: 100.0%", "width: 50.0%"},
		},
		{
			name: "missing file",
			dataFile: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.csv")
			},
			wantCode: http.StatusNotFound,
			wantBody: []string{"Data file not found at:", "absent.csv"},
		},
		{
			name: "bad file",
			dataFile: func(t *testing.T) string {
				return writeData(t, "StudyID\na\n")
			},
			wantCode: http.StatusInternalServerError,
			wantBody: []string{"An error occurred during data processing"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewServer(Config{DataFile: tc.dataFile(t)})
			rec := get(t, s, "/time_days/")
			if rec.Code != tc.wantCode {
				t.Fatalf("code=%d; want %d", rec.Code, tc.wantCode)
			}
			body := rec.Body.String()
			for _, w := range tc.wantBody {
				if !strings.Contains(body, w) {
					t.Fatalf("body missing %q:\n%s", w, body)
				}
			}
		})
	}
}
