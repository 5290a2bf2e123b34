package receipt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SupabaseUploader writes blobs to a Supabase Storage bucket over its
// REST API: PUT /storage/v1/object/{bucket}/{path}, apikey + bearer
// headers. The returned URL is the public object URL.
type SupabaseUploader struct {
	BaseURL    string
	ServiceKey string
	Bucket     string
	client     *http.Client
}

func NewSupabaseUploader(baseURL, serviceKey, bucket string) (*SupabaseUploader, error) {
	if baseURL == "" || serviceKey == "" || bucket == "" {
		return nil, fmt.Errorf("supabase configuration missing; set SUPABASE_URL, SUPABASE_SERVICE_ROLE_KEY and SUPABASE_BUCKET")
	}
	return &SupabaseUploader{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		ServiceKey: serviceKey,
		Bucket:     bucket,
		client:     &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (u *SupabaseUploader) Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", u.BaseURL, u.Bucket, url.PathEscape(objectPath))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+u.ServiceKey)
	req.Header.Set("apikey", u.ServiceKey)
	req.Header.Set("Content-Type", contentType)
	// PUT upserts, so retrying the same object path is safe.
	req.Header.Set("x-upsert", "true")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("supabase upload failed: %d %s", resp.StatusCode, string(b))
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", u.BaseURL, u.Bucket, url.PathEscape(objectPath)), nil
}
