package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/takei-shg/word-anki/internal/logger"
	"github.com/takei-shg/word-anki/internal/models"
)

type httpClient struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// New creates an HTTP Client against the given backend base URL.
func New(baseURL string) Client {
	return &httpClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        logger.Default().WithPrefix("backend"),
	}
}

func (c *httpClient) UploadTextSource(ctx context.Context, src models.TextSource) (*models.TextSource, error) {
	log := logger.FromContext(ctx).WithPrefix("backend").WithField("source_id", src.ID)
	log.Debug("uploading text source")

	var out models.TextSource
	if err := c.doJSON(ctx, http.MethodPost, "/api/sources", src, &out); err != nil {
		log.Error("failed to upload text source: %v", err)
		return nil, err
	}
	log.Info("text source uploaded: id=%s", out.ID)
	return &out, nil
}

func (c *httpClient) FetchWordTests(ctx context.Context, sourceID, difficulty string) ([]models.WordTest, error) {
	log := logger.FromContext(ctx).WithPrefix("backend").WithField("source_id", sourceID)

	path := fmt.Sprintf("/api/sources/%s/words", url.PathEscape(sourceID))
	if difficulty != "" {
		path += "?difficulty=" + url.QueryEscape(difficulty)
	}

	log.Debug("fetching word tests: %s", path)
	start := time.Now()

	var payload struct {
		Words []models.WordTest `json:"words"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &payload); err != nil {
		log.Error("failed to fetch word tests: %v", err)
		return nil, err
	}

	log.Info("fetched %d word tests in %v", len(payload.Words), time.Since(start))
	return payload.Words, nil
}

func (c *httpClient) SyncProgress(ctx context.Context, records []models.LearningRecord) error {
	log := logger.FromContext(ctx).WithPrefix("backend")
	log.Debug("syncing %d progress records", len(records))

	body := struct {
		Records []models.LearningRecord `json:"records"`
	}{Records: records}

	if err := c.doJSON(ctx, http.MethodPost, "/api/progress/sync", body, nil); err != nil {
		log.Error("failed to sync progress: %v", err)
		return err
	}
	log.Info("synced %d progress records", len(records))
	return nil
}

func (c *httpClient) DeleteTextSource(ctx context.Context, sourceID string) error {
	log := logger.FromContext(ctx).WithPrefix("backend").WithField("source_id", sourceID)
	log.Debug("deleting text source")

	path := fmt.Sprintf("/api/sources/%s", url.PathEscape(sourceID))
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		log.Error("failed to delete text source: %v", err)
		return err
	}
	log.Info("text source deleted")
	return nil
}

func (c *httpClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(msg))
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
