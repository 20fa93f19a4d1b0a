package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"instacord/internal/constants"
	apperrors "instacord/internal/errors"
	"instacord/internal/models"

	"github.com/google/uuid"
)

const defaultBaseURL = "https://i.instagram.com/api/v1"

// Client is the source-inbox surface the bridge consumes: enumerate
// threads per category, fetch a thread's items, approve a pending
// thread, and an inexpensive authenticated read for keep-alive probes.
type Client interface {
	Login(ctx context.Context) error
	Inbox(ctx context.Context) ([]models.Thread, error)
	Pending(ctx context.Context) ([]models.Thread, error)
	ThreadItems(ctx context.Context, threadID string) ([]models.RawItem, error)
	ApproveThread(ctx context.Context, threadID string) error
	Timeline(ctx context.Context) error
}

// ClientConfig configures an InstagramClient.
type ClientConfig struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

type InstagramClient struct {
	baseURL  string
	username string
	password string
	deviceID string
	client   *http.Client

	mu       sync.Mutex
	loggedIn bool
}

// NewClient creates an Instagram client. The device identity is
// derived deterministically from the username so re-logins present
// the same device to the platform.
func NewClient(cfg ClientConfig) *InstagramClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = time.Duration(constants.DefaultHTTPTimeoutSec) * time.Second
	}

	jar, _ := cookiejar.New(nil)
	return &InstagramClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		deviceID: "android-" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(cfg.Username)).String(),
		client: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}
}

// Login authenticates the session. Safe to call again after expiry;
// the cookie jar and device identity are reused.
func (c *InstagramClient) Login(ctx context.Context) error {
	if c.username == "" || c.password == "" {
		return fmt.Errorf("instagram credentials are required")
	}

	form := url.Values{}
	form.Set("username", c.username)
	form.Set("password", c.password)
	form.Set("device_id", c.deviceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/accounts/login/", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	var result loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || result.Status != "ok" {
		return apperrors.NewAuthError(fmt.Sprintf("login rejected with status %d: %s", resp.StatusCode, result.Message))
	}

	c.mu.Lock()
	c.loggedIn = true
	c.mu.Unlock()
	return nil
}

// Inbox lists threads in the accepted inbox.
func (c *InstagramClient) Inbox(ctx context.Context) ([]models.Thread, error) {
	return c.fetchThreads(ctx, "/direct_v2/inbox/", false)
}

// Pending lists threads in the pending-request inbox.
func (c *InstagramClient) Pending(ctx context.Context) ([]models.Thread, error) {
	return c.fetchThreads(ctx, "/direct_v2/pending_inbox/", true)
}

func (c *InstagramClient) fetchThreads(ctx context.Context, endpoint string, pending bool) ([]models.Thread, error) {
	var result inboxResponse
	if err := c.get(ctx, endpoint, &result); err != nil {
		return nil, err
	}
	if result.Status != "ok" {
		return nil, fmt.Errorf("inbox fetch returned status %q", result.Status)
	}

	threads := result.Inbox.Threads
	for i := range threads {
		threads[i].Pending = pending
	}
	return threads, nil
}

// ThreadItems fetches the items of one thread. Calling it also nudges
// the platform into materializing lazy media content, which is why the
// processor issues it twice per thread.
func (c *InstagramClient) ThreadItems(ctx context.Context, threadID string) ([]models.RawItem, error) {
	var result threadResponse
	if err := c.get(ctx, "/direct_v2/threads/"+url.PathEscape(threadID)+"/", &result); err != nil {
		return nil, err
	}
	if result.Status != "ok" {
		return nil, fmt.Errorf("thread fetch returned status %q", result.Status)
	}
	return result.Thread.Items, nil
}

// ApproveThread accepts a pending thread. Approving an already
// accepted thread is a no-op upstream, so the call is idempotent.
func (c *InstagramClient) ApproveThread(ctx context.Context, threadID string) error {
	endpoint := "/direct_v2/threads/" + url.PathEscape(threadID) + "/approve/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create approve request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("approve request failed: %w", err)
	}
	defer resp.Body.Close()

	var result statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode approve response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || result.Status != "ok" {
		return fmt.Errorf("approve rejected with status %d: %s", resp.StatusCode, result.Message)
	}
	return nil
}

// Timeline performs a cheap authenticated read, used as the keep-alive
// probe. The body is discarded; only the session validity matters.
func (c *InstagramClient) Timeline(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/feed/timeline/", nil)
	if err != nil {
		return fmt.Errorf("failed to create timeline request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("timeline request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.mu.Lock()
		c.loggedIn = false
		c.mu.Unlock()
		return apperrors.NewAuthError(fmt.Sprintf("session expired with status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return apperrors.NewAPIError("instagram", "/feed/timeline/", resp.StatusCode, nil)
	}
	return nil
}

// IsLoggedIn reports whether the last login or probe left a session.
func (c *InstagramClient) IsLoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loggedIn
}

func (c *InstagramClient) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.mu.Lock()
		c.loggedIn = false
		c.mu.Unlock()
		return apperrors.NewAuthError(fmt.Sprintf("session expired with status %d on %s", resp.StatusCode, endpoint))
	}
	if resp.StatusCode != http.StatusOK {
		return apperrors.NewAPIError("instagram", endpoint, resp.StatusCode, nil)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
