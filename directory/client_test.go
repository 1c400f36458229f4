package directory

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestInitialize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{
			"assets": {"MOBI-GAISSUER": {"code": "MOBI", "issuer": "GAISSUER", "domain": "mobius.network"}},
			"anchors": {"mobius.network": {"website": "https://mobius.network"}},
			"pairs": {"MOBI/XLM": {"base": "MOBI-GAISSUER", "counter": "XLM-native"}},
			"buildId": "build-7"
		}`)
	}))
	defer srv.Close()

	dir, err := NewClient(srv.URL).Initialize(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir.BuildID != "build-7" {
		t.Fatalf("build id: got %q", dir.BuildID)
	}
	if dir.Assets["MOBI-GAISSUER"].Code != "MOBI" {
		t.Fatalf("asset not decoded: %+v", dir.Assets)
	}
	if dir.Pairs["MOBI/XLM"].Counter != "XLM-native" {
		t.Fatalf("pair not decoded: %+v", dir.Pairs)
	}
}

func TestInitializeEmptyUniverseIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"assets": {}, "pairs": {}}`)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).Initialize(context.Background()); err == nil {
		t.Fatal("expected error for an empty asset universe")
	}
}

func TestInitializeServerErrorIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).Initialize(context.Background()); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}
