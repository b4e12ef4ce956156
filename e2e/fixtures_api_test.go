//go:build e2e && unix

package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
)

const summaryJSON = `{"message": {
  "Coverage": {
    "Journal articles": [
      {"name": "References", "percentage": 90, "info": "Reference lists deposited."},
      {"name": "Abstracts", "percentage": 40}
    ],
    "Books": [
      {"name": "References", "percentage": 10},
      {"name": "Funder IDs", "percentage": 5}
    ]
  },
  "totals": {"Journal articles": 12000, "Books": 4}
}}`

const currentJSON = `{"message": {
  "Coverage": {"Journal articles": [{"name": "References", "percentage": 70}]},
  "totals": {"Journal articles": 800}
}}`

const titleJSON = `{"message": {"Coverage": [{"name": "Abstracts", "percentage": 55}], "totals": {}}}`

const publicationsJSON = `{"message": [
  {"title": "Journal of Chemistry", "pissn": "1111-1111"},
  {"title": "Nature Physics", "eissn": "2222-2222"},
  {"title": "Cell Reports", "pissn": "3333-3333"}
]}`

// newFakeAPI serves the report and registry endpoints partrep calls
func newFakeAPI() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/prep/data", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("op") == "publications":
			_, _ = w.Write([]byte(publicationsJSON))
		case q.Get("pubid") != "":
			_, _ = w.Write([]byte(titleJSON))
		case q.Get("pubyear") == "current":
			_, _ = w.Write([]byte(currentJSON))
		case q.Get("pubyear") != "":
			_, _ = w.Write([]byte(`{"message": {"Coverage": {}, "totals": {}}}`))
		default:
			_, _ = w.Write([]byte(summaryJSON))
		}
	})
	registry := func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message": {}}`))
	}
	mux.HandleFunc("/members/", registry)
	mux.HandleFunc("/journals/", registry)
	return httptest.NewServer(mux)
}

// CreateTestWorkspace creates a temporary home directory holding a config
// that points partrep at a fake API
func (tf *TUITestFramework) CreateTestWorkspace() (string, error) {
	tmpDir := tf.t.TempDir()
	tf.workspace = tmpDir

	srv := newFakeAPI()
	tf.t.Cleanup(srv.Close)

	path := filepath.Join(tmpDir, "partrep.toml")
	content := fmt.Sprintf(`[api]
base_url = %q
registry_url = %q

[member]
id = "78"
name = "Example Press"

[filters]
loading_delay_ms = 200

[logging]
level = "debug"
file = %q
`, srv.URL+"/prep/data", srv.URL, filepath.Join(tmpDir, "partrep.log"))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	tf.config = path
	return tmpDir, nil
}
