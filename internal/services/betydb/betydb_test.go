package betydb_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"hyperspectral/internal/config"
	"hyperspectral/internal/services"
	"hyperspectral/internal/services/betydb"
)

func TestWriteCSV(t *testing.T) {
	cfg := config.Default()
	row := betydb.NewTraitRow(cfg.Traits, "2017-04-27__10-03-21-123", 0.42)

	var buf bytes.Buffer
	if err := betydb.WriteCSV(&buf, []betydb.TraitRow{row}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "local_datetime,NDVI705,access_level,species,site,citation_author,citation_year,citation_title,method\n" +
		"2017-04-27__10-03-21-123,0.42,2,Sorghum bicolor,Full Field,\"Butowsky, Henry\",2016,Maricopa Field Station Data and Metadata,Hyperspectral NDVI705 Indices\n"
	if buf.String() != want {
		t.Fatalf("csv mismatch\n got: %q\nwant: %q", buf.String(), want)
	}
}

func TestNewConfiguredSubmitter(t *testing.T) {
	cfg := config.Default()
	if _, ok := betydb.NewConfiguredSubmitter(&cfg).(betydb.Disabled); !ok {
		t.Fatal("expected Disabled by default")
	}
	cfg.BETYdb.Enabled = true
	cfg.BETYdb.Key = "k"
	if _, ok := betydb.NewConfiguredSubmitter(&cfg).(*betydb.Client); !ok {
		t.Fatal("expected Client when enabled")
	}
}

func TestSubmitPostsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traits.csv")
	if err := os.WriteFile(path, []byte("local_datetime,NDVI705\nx,0.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/bety/api/beta/traits.csv" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("key") != "secret" {
			t.Errorf("missing key in %s", r.URL.RawQuery)
		}
		if r.Header.Get("Content-Type") != "text/csv" {
			t.Errorf("content type %q", r.Header.Get("Content-Type"))
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "local_datetime,NDVI705\nx,0.5\n" {
			t.Errorf("body %q", body)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := betydb.NewClient(server.URL+"/bety/api/beta/traits.csv", "secret", server.Client())
	if err := client.Submit(context.Background(), path); err != nil {
		t.Fatalf("Submit: %v", err)
	}
}

func TestSubmitRejectedStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traits.csv")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := betydb.NewClient(server.URL, "bad", server.Client())
	if err := client.Submit(context.Background(), path); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestSubmitMissingFile(t *testing.T) {
	client := betydb.NewClient("http://unused", "k", nil)
	if err := client.Submit(context.Background(), filepath.Join(t.TempDir(), "missing.csv")); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}
