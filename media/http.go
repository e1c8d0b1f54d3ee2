package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

const maxResponseBytes = 1 << 20

// NewHTTPClient 返回 Provider 使用的 HTTP 客户端。超时由级联的 context 控制，这里只做兜底。
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 2 * DefaultProviderTimeout
	}
	return &http.Client{Timeout: timeout}
}

// getJSON 发起 GET 请求并解码 JSON。网络错误、非 2xx 与无法解析的响应都归为 ErrProviderUnavailable。
func getJSON(ctx context.Context, client *http.Client, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %w", ErrProviderUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %w", ErrProviderUnavailable, err)
	}
	return nil
}

func errNotConfigured(name string) error {
	return fmt.Errorf("%w: %s api key missing", ErrNotConfigured, name)
}
