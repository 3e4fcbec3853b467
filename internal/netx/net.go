// Package netx holds the HTTP side of the launcher client: crash report
// upload to the server's web API for clients that cannot speak gRPC.
package netx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/launchserver/internal/common"
)

const crashReportPath = "/webapi/crashreport"

type CrashReport struct {
	Username string `json:"username,omitempty"`
	FileName string `json:"fileName"`
	Content  string `json:"content"`
}

type crashReportResponse struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// UploadCrashReport posts r to baseURL and returns the stored path. An
// empty accessToken uploads anonymously. Server rejections come back as
// the matching common error.
func UploadCrashReport(ctx context.Context, client *http.Client, baseURL, accessToken string, r CrashReport) (string, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+crashReportPath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if json.Unmarshal(data, &e) == nil && e.Code != "" {
			return "", common.FromCode(e.Code)
		}
		return "", fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(data))
	}

	var out crashReportResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	return out.Path, nil
}
