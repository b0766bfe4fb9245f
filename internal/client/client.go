package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/detection"
)

// Client talks to the analysis service's request/response endpoints.
// The live streaming endpoint is handled separately by internal/stream.
type Client struct {
	baseURL       string
	authToken     string
	maxUploadSize int64
	httpClient    *http.Client
}

func NewClient(baseURL, authToken string, maxUploadSize int64) *Client {
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		authToken:     authToken,
		maxUploadSize: maxUploadSize,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// DetectResponse is the immediate reply to a detect upload.
type DetectResponse struct {
	Status      string                 `json:"status"`
	MediaType   string                 `json:"mediaType"`
	TrustScore  float64                `json:"trustScore"`
	Label       string                 `json:"label"`
	Anomalies   []detection.RawAnomaly `json:"anomalies"`
	HeatmapURL  string                 `json:"heatmapUrl,omitempty"`
	FileURL     string                 `json:"fileUrl,omitempty"`
	ReportID    string                 `json:"reportId,omitempty"`
	DetectionID string                 `json:"detectionId"`
}

// ReportDescriptor describes a generated report and its downloadable
// artifact.
type ReportDescriptor struct {
	ID          string `json:"id"`
	DetectionID string `json:"detectionId"`
	CaseID      string `json:"caseId"`
	PDFURL      string `json:"pdfUrl"`
	CreatedAt   string `json:"createdAt"`
}

// DetectFile validates and uploads a media file for analysis.
// Validation failures surface synchronously before any network call.
func (c *Client) DetectFile(ctx context.Context, path string, mediaType detection.MediaType) (*DetectResponse, error) {
	if err := ValidateUpload(path, mediaType, c.maxUploadSize); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(path)))
	header.Set("Content-Type", ContentTypeFor(path, mediaType))
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing multipart body: %w", err)
	}

	url := fmt.Sprintf("%s/api/detect/%s", c.baseURL, mediaType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	var result DetectResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetDetection fetches the full raw analysis payload for a completed
// detection. The caller normalizes it.
func (c *Client) GetDetection(ctx context.Context, id string) (*detection.AnalysisPayload, error) {
	url := fmt.Sprintf("%s/api/detect/%s", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.authorize(req)

	var payload detection.AnalysisPayload
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// RequestReport asks the service to generate a report for a detection.
func (c *Client) RequestReport(ctx context.Context, detectionID string) (*ReportDescriptor, error) {
	url := fmt.Sprintf("%s/api/report/%s", c.baseURL, detectionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.authorize(req)

	var report ReportDescriptor
	if err := c.do(req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
