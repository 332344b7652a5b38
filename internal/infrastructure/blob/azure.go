// Package blob uploads the JSON artifacts to Azure Blob Storage over the
// REST API with SharedKey authorization. Every upload is verified by reading
// the blob's properties back; an upload that cannot be verified is failed.
package blob

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"IncidentIngest/internal/domain"
	"IncidentIngest/internal/ports"
)

const (
	apiVersion   = "2021-08-06"
	contentType  = "application/json"
	cacheControl = "public, max-age=300"
)

// Client talks to one storage account and container.
type Client struct {
	account   string
	key       []byte
	container string
	// Endpoint may be overridden before first use (tests point it at a local
	// server). Defaults to the account's public blob endpoint.
	Endpoint string

	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.BlobUploader = (*Client)(nil)

// New builds a client from credentials. The account key is the base64 string
// issued by Azure.
func New(account, key, container string, log *slog.Logger) (*Client, error) {
	if account == "" || key == "" {
		return nil, fmt.Errorf("blob storage credentials not provided")
	}
	decoded, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("decode storage key: %w", err)
	}
	return &Client{
		account:    account,
		key:        decoded,
		container:  container,
		Endpoint:   fmt.Sprintf("https://%s.blob.core.windows.net", account),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log,
	}, nil
}

// UploadBatch ensures the container exists, uploads every file, and verifies
// each blob's size. Any failure fails the whole batch; the caller retries
// the batch, not individual files.
func (c *Client) UploadBatch(ctx context.Context, files map[string][]byte) error {
	if err := c.ensureContainer(ctx); err != nil {
		return err
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := c.putBlob(ctx, name, files[name]); err != nil {
			return err
		}
	}

	for _, name := range names {
		size, err := c.blobSize(ctx, name)
		if err != nil {
			return fmt.Errorf("verify %s: %w", name, err)
		}
		if size != int64(len(files[name])) {
			return fmt.Errorf("verify %s: %w: uploaded %d bytes, stored %d", name, domain.ErrTransport, len(files[name]), size)
		}
		if c.logger != nil {
			c.logger.Debug("blob verified", "name", name, "size", size)
		}
	}

	return nil
}

func (c *Client) ensureContainer(ctx context.Context) error {
	query := url.Values{"restype": {"container"}}

	resp, err := c.do(ctx, http.MethodHead, "", query, nil, nil)
	if err != nil {
		return fmt.Errorf("check container: %w: %v", domain.ErrTransport, err)
	}
	drain(resp)
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	if resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("check container: %w: unexpected status %s", domain.ErrTransport, resp.Status)
	}

	headers := map[string]string{"x-ms-blob-public-access": "blob"}
	resp, err = c.do(ctx, http.MethodPut, "", query, headers, nil)
	if err != nil {
		return fmt.Errorf("create container: %w: %v", domain.ErrTransport, err)
	}
	drain(resp)
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("create container: %w: unexpected status %s", domain.ErrTransport, resp.Status)
	}

	if c.logger != nil {
		c.logger.Info("container created", "container", c.container)
	}
	return nil
}

func (c *Client) putBlob(ctx context.Context, name string, data []byte) error {
	headers := map[string]string{
		"x-ms-blob-type":          "BlockBlob",
		"x-ms-blob-content-type":  contentType,
		"x-ms-blob-cache-control": cacheControl,
		"x-ms-meta-uploadedat":    time.Now().UTC().Format(time.RFC3339),
		"x-ms-meta-source":        "incident-pipeline",
	}

	resp, err := c.do(ctx, http.MethodPut, name, nil, headers, data)
	if err != nil {
		return fmt.Errorf("upload %s: %w: %v", name, domain.ErrTransport, err)
	}
	drain(resp)
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("upload %s: %w: unexpected status %s", name, domain.ErrTransport, resp.Status)
	}

	if c.logger != nil {
		c.logger.Info("blob uploaded", "name", name, "bytes", len(data))
	}
	return nil
}

func (c *Client) blobSize(ctx context.Context, name string) (int64, error) {
	resp, err := c.do(ctx, http.MethodHead, name, nil, nil, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	drain(resp)
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: unexpected status %s", domain.ErrTransport, resp.Status)
	}
	return strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
}

func (c *Client) do(ctx context.Context, method, blobName string, query url.Values, extra map[string]string, body []byte) (*http.Response, error) {
	path := "/" + c.container
	if blobName != "" {
		path += "/" + blobName
	}

	target := c.Endpoint + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("x-ms-version", apiVersion)
	req.Header.Set("x-ms-date", time.Now().UTC().Format(http.TimeFormat))
	for k, v := range extra {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
		req.ContentLength = int64(len(body))
	}

	req.Header.Set("Authorization", c.authorize(req, path, query, len(body)))
	return c.httpClient.Do(req)
}

// authorize builds the SharedKey signature for a request. See the Azure
// "Authorize with Shared Key" docs for the string-to-sign layout.
func (c *Client) authorize(req *http.Request, path string, query url.Values, contentLength int) string {
	lengthHeader := ""
	if contentLength > 0 {
		lengthHeader = strconv.Itoa(contentLength)
	}
	contentTypeHeader := req.Header.Get("Content-Type")

	var msHeaders []string
	for name, values := range req.Header {
		lower := strings.ToLower(name)
		if strings.HasPrefix(lower, "x-ms-") {
			msHeaders = append(msHeaders, lower+":"+strings.Join(values, ","))
		}
	}
	sort.Strings(msHeaders)

	resource := "/" + c.account + path
	var queryKeys []string
	for key := range query {
		queryKeys = append(queryKeys, strings.ToLower(key))
	}
	sort.Strings(queryKeys)
	for _, key := range queryKeys {
		resource += "\n" + key + ":" + strings.Join(query[key], ",")
	}

	stringToSign := strings.Join([]string{
		req.Method,
		"", // Content-Encoding
		"", // Content-Language
		lengthHeader,
		"", // Content-MD5
		contentTypeHeader,
		"", // Date (x-ms-date is signed instead)
		"", // If-Modified-Since
		"", // If-Match
		"", // If-None-Match
		"", // If-Unmodified-Since
		"", // Range
		strings.Join(msHeaders, "\n"),
		resource,
	}, "\n")

	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(stringToSign))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return fmt.Sprintf("SharedKey %s:%s", c.account, signature)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
