// Package lbry implements a thin JSON-RPC client for the LBRY daemon,
// the external resolver that turns a content locator into a file on
// local disk.
package lbry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cadstack/cadhoard/internal/common"
)

// DefaultEndpoint is the daemon's standard local RPC address.
const DefaultEndpoint = "http://localhost:5279"

// Client talks to the LBRY daemon over its local JSON-RPC endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client

	// maxWait bounds a single resolution attempt end to end.
	maxWait time.Duration
	// pollInterval and stallThreshold drive the download monitor; both
	// are overridable for tests.
	pollInterval   time.Duration
	stallThreshold time.Duration
}

// NewClient creates a daemon client. An empty endpoint selects the
// default local address; maxWait <= 0 selects five minutes.
func NewClient(endpoint string, maxWait time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if maxWait <= 0 {
		maxWait = 5 * time.Minute
	}
	return &Client{
		endpoint:       endpoint,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		maxWait:        maxWait,
		pollInterval:   2 * time.Second,
		stallThreshold: 30 * time.Second,
	}
}

type rpcRequest struct {
	Method string `json:"method"`
	Params any    `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Message string `json:"message"`
}

type getResult struct {
	DownloadPath string `json:"download_path"`
	ClaimName    string `json:"claim_name"`
	Status       string `json:"status"`
}

type fileListResult struct {
	Items []fileItem `json:"items"`
}

type fileItem struct {
	Status       string `json:"status"`
	DownloadPath string `json:"download_path"`
	WrittenBytes int64  `json:"written_bytes"`
	TotalBytes   int64  `json:"total_bytes"`
}

// call performs one JSON-RPC round trip. Transport failures surface as
// common.ErrDaemonUnreachable so callers can tell an absent daemon from
// a failed resolution.
func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	payload, err := json.Marshal(rpcRequest{Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrDaemonUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: daemon returned status %d", common.ErrDaemonUnreachable, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%w: %s: %s", common.ErrResolveFailed, method, rpcResp.Error.Message)
	}

	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}

// Status reports whether the daemon is reachable.
func (c *Client) Status(ctx context.Context) error {
	return c.call(ctx, "status", map[string]any{}, nil)
}

// Resolve asks the daemon to fetch the locator and returns the local
// staging path of the completed download. The whole attempt is bounded
// by the client's max wait; a download making no byte progress for the
// stall threshold is abandoned with common.ErrResolveStalled.
func (c *Client) Resolve(ctx context.Context, locator string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.maxWait)
	defer cancel()

	var result getResult
	err := c.call(ctx, "get", map[string]any{"uri": locator, "save_file": true}, &result)
	if err != nil {
		return "", err
	}

	slog.Debug("Resolver accepted request",
		"locator", locator,
		"status", result.Status,
		"claim_name", result.ClaimName)

	switch result.Status {
	case "completed", "finished", "stopped":
		if path, ok := usableFile(result.DownloadPath); ok {
			return path, nil
		}
		if result.Status != "stopped" {
			return "", fmt.Errorf("%w: daemon reported %s but no file at %q", common.ErrResolveFailed, result.Status, result.DownloadPath)
		}
	}

	return c.waitForCompletion(ctx, locator, result.ClaimName)
}

// waitForCompletion polls file_list until the download finishes,
// stalls, or the attempt deadline passes.
func (c *Client) waitForCompletion(ctx context.Context, locator, claimName string) (string, error) {
	var (
		lastWritten int64 = -1
		stallSince  time.Time
		lastPath    string
	)

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: gave up on %s: %v", common.ErrResolveStalled, locator, ctx.Err())
		case <-ticker.C:
		}

		var list fileListResult
		if err := c.call(ctx, "file_list", map[string]any{"claim_name": claimName}, &list); err != nil {
			return "", err
		}
		if len(list.Items) == 0 {
			continue
		}

		item := list.Items[0]
		if item.DownloadPath != "" {
			lastPath = item.DownloadPath
		}

		if item.WrittenBytes > lastWritten {
			lastWritten = item.WrittenBytes
			stallSince = time.Time{}
		} else {
			if stallSince.IsZero() {
				stallSince = time.Now()
			} else if time.Since(stallSince) > c.stallThreshold {
				// A stalled transfer can still have completed the file.
				if path, ok := usableFile(lastPath); ok {
					return path, nil
				}
				return "", fmt.Errorf("%w: no progress on %s for %s", common.ErrResolveStalled, locator, c.stallThreshold)
			}
		}

		switch item.Status {
		case "completed", "finished":
			if path, ok := usableFile(item.DownloadPath); ok {
				return path, nil
			}
			return "", fmt.Errorf("%w: completed download missing at %q", common.ErrResolveFailed, item.DownloadPath)
		case "stopped":
			if path, ok := usableFile(item.DownloadPath); ok {
				return path, nil
			}
			return "", fmt.Errorf("%w: daemon stopped %s without a file", common.ErrResolveFailed, locator)
		}
	}
}

// usableFile reports whether path names an existing, non-empty file.
func usableFile(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return "", false
	}
	return path, true
}
