// Package client talks to the Mwalimu API the way the portal and the chat page do.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core/chat"
	"github.com/trezcool/mwalimu/core/course"
	"github.com/trezcool/mwalimu/core/slide"
)

const defaultTimeout = 2 * time.Minute

// APIError is a non 2xx answer of the API.
type APIError struct {
	Status  int               `json:"-"`
	Message string            `json:"message"`
	Code    string            `json:"error,omitempty"`
	Fields  map[string]string `json:"errors,omitempty"`
}

func (err *APIError) Error() string {
	msg := fmt.Sprintf("api error (%d): %s", err.Status, err.Message)
	if err.Code != "" {
		msg += " [" + err.Code + "]"
	}
	for fld, fErr := range err.Fields {
		msg += fmt.Sprintf("; %s: %s", fld, fErr)
	}
	return msg
}

// IsUnauthorized reports whether err is a 401 answer.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

var _ chat.Sender = (*Client)(nil) // interface compliance check

// New returns a Client for the API at baseURL. httpClient may be nil.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) Token() string        { return c.token }
func (c *Client) SetToken(token string) { c.token = token }

type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	auth        bool
}

func jsonBody(v interface{}) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling request")
	}
	return bytes.NewReader(data), nil
}

func (c *Client) do(ctx context.Context, r request) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.auth && c.token != "" {
		req.Header.Set("token", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", r.method, r.path)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		apiErr := &APIError{Status: resp.StatusCode}
		data, _ := io.ReadAll(resp.Body)
		if err = json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return nil, apiErr
	}
	return resp, nil
}

// doJSON performs r and decodes the JSON answer into a T.
func doJSON[T any](ctx context.Context, c *Client, r request) (*T, error) {
	resp, err := c.do(ctx, r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result T
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrapf(err, "decoding %s answer", r.path)
	}
	return &result, nil
}

type loginResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login exchanges password for a token, which is kept for the gated calls.
func (c *Client) Login(ctx context.Context, password string) (string, error) {
	body, err := jsonBody(map[string]string{"password": password})
	if err != nil {
		return "", err
	}
	resp, err := doJSON[loginResponse](ctx, c, request{
		method: http.MethodPost, path: "/login", body: body, contentType: "application/json",
	})
	if err != nil {
		return "", err
	}
	c.token = resp.Token
	return resp.Token, nil
}

// Send implements chat.Sender.
func (c *Client) Send(ctx context.Context, prompt string) (string, error) {
	body, err := jsonBody(map[string]string{"prompt": prompt})
	if err != nil {
		return "", err
	}
	resp, err := doJSON[chat.Reply](ctx, c, request{
		method: http.MethodPost, path: "/chat", body: body, contentType: "application/json",
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (c *Client) CourseData(ctx context.Context) (course.Snapshot, error) {
	resp, err := doJSON[course.Snapshot](ctx, c, request{method: http.MethodGet, path: "/courseData"})
	if err != nil {
		return course.Snapshot{}, err
	}
	return *resp, nil
}

// SaveCourseData cleans content and stores it as the current course document.
func (c *Client) SaveCourseData(ctx context.Context, content course.Content) (course.Content, error) {
	content = CleanContent(content)
	body, err := jsonBody(content)
	if err != nil {
		return course.Content{}, err
	}
	_, err = doJSON[map[string]interface{}](ctx, c, request{
		method: http.MethodPost, path: "/courseData", body: body, contentType: "application/json", auth: true,
	})
	if err != nil {
		return course.Content{}, err
	}
	return content, nil
}

type uploadResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	Message  string `json:"message"`
}

// UploadSlides sends the deck read from r and returns its stored filename.
func (c *Client) UploadSlides(ctx context.Context, name string, r io.Reader) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return "", errors.Wrap(err, "creating form file")
	}
	if _, err = io.Copy(part, r); err != nil {
		return "", errors.Wrap(err, "reading slides")
	}
	if err = w.Close(); err != nil {
		return "", errors.Wrap(err, "closing form")
	}

	resp, err := doJSON[uploadResponse](ctx, c, request{
		method: http.MethodPost, path: "/uploadSlides", body: &body, contentType: w.FormDataContentType(), auth: true,
	})
	if err != nil {
		return "", err
	}
	return resp.Filename, nil
}

// SlidesInfo describes the current deck.
type SlidesInfo struct {
	Message string `json:"message"`
	slide.Info
}

func (c *Client) SlidesInfo(ctx context.Context) (SlidesInfo, error) {
	resp, err := doJSON[SlidesInfo](ctx, c, request{method: http.MethodGet, path: "/slides/current/info"})
	if err != nil {
		return SlidesInfo{}, err
	}
	return *resp, nil
}

// DownloadSlides copies the current deck into w.
func (c *Client) DownloadSlides(ctx context.Context, w io.Writer) (int64, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: "/slides/current"})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	return n, errors.Wrap(err, "downloading slides")
}
