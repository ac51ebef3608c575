// Package catalogclient is a Go client for the catalog HTTP API. Besides
// plain calls it carries SearchBox, the storefront's debounced search state.
package catalogclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vitalcosmeticos/catalog/pkg/httpclient"
)

const service = "catalog-api"

type Product struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Code        string           `json:"code"`
	Reference   string           `json:"reference"`
	Stock       string           `json:"stock"`
	Images      []string         `json:"images"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Views       int64            `json:"views"`
	CreatedAt   time.Time        `json:"created_at"`
}

type ProductPage struct {
	Products   []Product `json:"data"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
	HasMore    bool      `json:"has_more"`
	Filtered   bool      `json:"filtered"`
}

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Color string `json:"color"`
}

// Query mirrors the product listing parameters. Zero values are omitted.
type Query struct {
	Page     int
	Limit    int
	Category string
	Search   string
	Stock    string
}

func (q Query) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	if q.Stock != "" {
		v.Set("stock", q.Stock)
	}
	return v
}

type ContactRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Message     string `json:"message,omitempty"`
	ProductID   string `json:"product_id,omitempty"`
	ProductName string `json:"product_name,omitempty"`
}

type Client struct {
	baseURL string
	http    *httpclient.Client
	token   string
}

func New(baseURL string, hc *httpclient.Client) *Client {
	if hc == nil {
		hc = httpclient.New(httpclient.DefaultConfig())
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// WithToken returns a copy of c that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) ListProducts(ctx context.Context, q Query) (*ProductPage, error) {
	var page ProductPage
	// Listings are not wrapped in the data envelope.
	if err := c.do(ctx, http.MethodGet, "/api/v1/products?"+q.values().Encode(), nil, &page, false); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	var p Product
	if err := c.call(ctx, http.MethodGet, "/api/v1/products/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var cats []Category
	if err := c.call(ctx, http.MethodGet, "/api/v1/categories", nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// ToggleFavorite flips the favorite state and returns the new one. Without a
// token the API answers LOGIN_REQUIRED, surfaced as errors.ErrNotLoggedIn.
func (c *Client) ToggleFavorite(ctx context.Context, productID string) (bool, error) {
	var out struct {
		Favorite bool `json:"favorite"`
	}
	if err := c.call(ctx, http.MethodPost, "/api/v1/favorites/"+url.PathEscape(productID)+"/toggle", nil, &out); err != nil {
		return false, err
	}
	return out.Favorite, nil
}

func (c *Client) SendContact(ctx context.Context, req ContactRequest) error {
	return c.call(ctx, http.MethodPost, "/api/v1/contacts", req, nil)
}

func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	return c.do(ctx, method, path, in, out, true)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, enveloped bool) error {
	var body *bytes.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, http.NoBody)
	}
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpclient.ParseResponseError(resp, service)
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		return nil
	}
	target := out
	if enveloped {
		target = &struct {
			Data any `json:"data"`
		}{Data: out}
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
