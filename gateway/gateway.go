// Package gateway is a small client for an Appwrite-compatible document and
// file store. Every call is fallible: unreachable or misconfigured services
// surface as ErrServiceUnavailable, missing documents or files as
// ErrNotFound. Callers are expected to fall back to bundled data.
package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	fastshot "github.com/opus-domini/fast-shot"
)

var (
	ErrServiceUnavailable = errors.New("content service unavailable")
	ErrNotFound           = errors.New("content not found")
)

// Config locates the remote project, database and bucket.
type Config struct {
	Endpoint   string // e.g. https://fra.cloud.appwrite.io/v1
	ProjectID  string
	APIKey     string // optional; required for writes
	DatabaseID string
	BucketID   string
	Timeout    time.Duration
}

// Document is a raw document. System fields keep their "$" prefix.
type Document map[string]any

// ID returns the document's "$id".
func (d Document) ID() string {
	s, _ := d["$id"].(string)
	return s
}

// String returns field k as a string, or "" when absent or not a string.
func (d Document) String(k string) string {
	s, _ := d[k].(string)
	return s
}

type documentList struct {
	Total     int        `json:"total"`
	Documents []Document `json:"documents"`
}

// Client talks to the remote store. A zero Config yields a client whose
// every call fails with ErrServiceUnavailable.
type Client struct {
	cfg    Config
	prefix string // path part of Endpoint, e.g. "/v1"
	http   fastshot.ClientHttpMethods
}

// New builds a Client for cfg.
func New(cfg Config) *Client {
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	c := &Client{cfg: cfg}
	if !c.configured() {
		return c
	}
	origin := cfg.Endpoint
	if u, err := url.Parse(cfg.Endpoint); err == nil && u.Host != "" {
		c.prefix = strings.TrimRight(u.Path, "/")
		u.Path, u.RawPath = "", ""
		origin = u.String()
	}
	b := fastshot.NewClient(origin)
	b.Header().Add("X-Appwrite-Project", cfg.ProjectID)
	if cfg.APIKey != "" {
		b.Header().Add("X-Appwrite-Key", cfg.APIKey)
	}
	c.http = b.Config().SetTimeout(cfg.Timeout).
		Config().SetFollowRedirects(true).
		Header().Add("Accept", "application/json").
		Build()
	return c
}

func (c *Client) configured() bool {
	return c.cfg.Endpoint != "" && c.cfg.ProjectID != ""
}

// origin is Endpoint without its path.
func (c *Client) origin() string {
	return strings.TrimSuffix(c.cfg.Endpoint, c.prefix)
}

func (c *Client) ready() error {
	if !c.configured() {
		return fmt.Errorf("%w: endpoint or project not configured", ErrServiceUnavailable)
	}
	return nil
}

func (c *Client) documentsPath(collection string) string {
	return c.prefix + "/databases/" + url.PathEscape(c.cfg.DatabaseID) +
		"/collections/" + url.PathEscape(collection) + "/documents"
}

func (c *Client) documentPath(collection, id string) string {
	return c.documentsPath(collection) + "/" + url.PathEscape(id)
}

func (c *Client) filesPath() string {
	return c.prefix + "/storage/buckets/" + url.PathEscape(c.cfg.BucketID) + "/files"
}

// ListDocuments returns every document of collection.
func (c *Client) ListDocuments(ctx context.Context, collection string) ([]Document, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	resp, err := c.http.GET(c.documentsPath(collection)).
		Context().Set(ctx).
		Send()
	var list documentList
	if err := decode(resp, err, &list); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return list.Documents, nil
}

// GetDocument returns one document by id.
func (c *Client) GetDocument(ctx context.Context, collection, id string) (Document, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	resp, err := c.http.GET(c.documentPath(collection, id)).
		Context().Set(ctx).
		Send()
	var doc Document
	if err := decode(resp, err, &doc); err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

// CreateDocument stores data as a new document with a server-assigned id.
func (c *Client) CreateDocument(ctx context.Context, collection string, data map[string]any) (Document, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	resp, err := c.http.POST(c.documentsPath(collection)).
		Context().Set(ctx).
		Header().Add("Content-Type", "application/json").
		Body().AsJSON(map[string]any{"documentId": "unique()", "data": data}).
		Send()
	var doc Document
	if err := decode(resp, err, &doc); err != nil {
		return nil, fmt.Errorf("create in %s: %w", collection, err)
	}
	return doc, nil
}

// UpdateDocument patches the given fields of document id.
func (c *Client) UpdateDocument(ctx context.Context, collection, id string, data map[string]any) (Document, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	resp, err := c.http.PATCH(c.documentPath(collection, id)).
		Context().Set(ctx).
		Header().Add("Content-Type", "application/json").
		Body().AsJSON(map[string]any{"data": data}).
		Send()
	var doc Document
	if err := decode(resp, err, &doc); err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

// DeleteDocument removes document id.
func (c *Client) DeleteDocument(ctx context.Context, collection, id string) error {
	if err := c.ready(); err != nil {
		return err
	}
	resp, err := c.http.DELETE(c.documentPath(collection, id)).
		Context().Set(ctx).
		Send()
	if err := decode(resp, err, nil); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// UploadFile stores data in the bucket and returns the new file id.
func (c *Client) UploadFile(ctx context.Context, name string, data []byte) (string, error) {
	if err := c.ready(); err != nil {
		return "", err
	}
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("fileId", "unique()"); err != nil {
		return "", err
	}
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	resp, err := c.http.POST(c.filesPath()).
		Context().Set(ctx).
		Header().Add("Content-Type", w.FormDataContentType()).
		Body().AsString(body.String()).
		Send()
	var doc Document
	if err := decode(resp, err, &doc); err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return doc.ID(), nil
}

// FileViewURL checks that fileID exists and returns its public view URL.
func (c *Client) FileViewURL(ctx context.Context, fileID string) (string, error) {
	if err := c.ready(); err != nil {
		return "", err
	}
	path := c.filesPath() + "/" + url.PathEscape(fileID)
	resp, err := c.http.GET(path).
		Context().Set(ctx).
		Send()
	if err := decode(resp, err, nil); err != nil {
		return "", fmt.Errorf("file %s: %w", fileID, err)
	}
	return c.origin() + path + "/view?project=" + url.QueryEscape(c.cfg.ProjectID), nil
}

// DeleteFile removes fileID from the bucket.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	if err := c.ready(); err != nil {
		return err
	}
	path := c.filesPath() + "/" + url.PathEscape(fileID)
	resp, err := c.http.DELETE(path).
		Context().Set(ctx).
		Send()
	if err := decode(resp, err, nil); err != nil {
		return fmt.Errorf("delete file %s: %w", fileID, err)
	}
	return nil
}

// decode maps a fast-shot result onto the gateway's error taxonomy and, for
// successful responses, decodes the JSON body into out when out is non-nil.
func decode(resp *fastshot.Response, sendErr error, out any) error {
	if sendErr != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, sendErr)
	}
	defer resp.Body().Close()

	code := resp.Status().Code()
	switch {
	case code == http.StatusNotFound:
		return ErrNotFound
	case resp.Status().IsError():
		msg, _ := resp.Body().AsString()
		return fmt.Errorf("%w: status %d: %s", ErrServiceUnavailable, code, strings.TrimSpace(msg))
	}
	if out == nil || code == http.StatusNoContent {
		return nil
	}
	if err := resp.Body().AsJSON(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrServiceUnavailable, err)
	}
	return nil
}
