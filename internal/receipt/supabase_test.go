package receipt

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewSupabaseUploader_RequiresFullConfig(t *testing.T) {
	if _, err := NewSupabaseUploader("", "key", "bucket"); err == nil {
		t.Fatal("expected an error with no base url")
	}
	if _, err := NewSupabaseUploader("https://x.supabase.co", "", "bucket"); err == nil {
		t.Fatal("expected an error with no service key")
	}
	if _, err := NewSupabaseUploader("https://x.supabase.co", "key", ""); err == nil {
		t.Fatal("expected an error with no bucket")
	}
}

func TestSupabaseUpload_SendsObjectPut(t *testing.T) {
	var gotMethod, gotPath, gotAuth, gotAPIKey, gotUpsert, gotContentType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotAPIKey = r.Header.Get("apikey")
		gotUpsert = r.Header.Get("x-upsert")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	uploader, err := NewSupabaseUploader(srv.URL, "service-key", "receipts-bucket")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	uploader.client = srv.Client()

	url, err := uploader.Upload(context.Background(), "receipts/abc.png", []byte("png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if gotMethod != http.MethodPut {
		t.Fatalf("expected PUT, got %s", gotMethod)
	}
	if !strings.HasPrefix(gotPath, "/storage/v1/object/receipts-bucket/") {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer service-key" || gotAPIKey != "service-key" {
		t.Fatalf("credentials not sent: auth=%q apikey=%q", gotAuth, gotAPIKey)
	}
	if gotUpsert != "true" {
		t.Fatal("expected x-upsert so retries overwrite")
	}
	if gotContentType != "image/png" {
		t.Fatalf("expected image/png, got %q", gotContentType)
	}
	if string(gotBody) != "png-bytes" {
		t.Fatalf("body not forwarded: %q", gotBody)
	}
	if !strings.Contains(url, "/storage/v1/object/public/receipts-bucket/") {
		t.Fatalf("expected a public object url, got %q", url)
	}
}

func TestSupabaseUpload_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bucket not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	uploader, err := NewSupabaseUploader(srv.URL, "service-key", "missing-bucket")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	uploader.client = srv.Client()

	if _, err := uploader.Upload(context.Background(), "receipts/x.png", []byte("data"), "image/png"); err == nil {
		t.Fatal("expected an error for a non-2xx response")
	}
}
