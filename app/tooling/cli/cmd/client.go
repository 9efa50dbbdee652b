package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// newTx is the request body for submitting a transaction. The node rejects
// any field it doesn't know about.
type newTx struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value int64  `json:"value"`
}

type tx struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Value   int64  `json:"value"`
	Summary string `json:"summary"`
}

type block struct {
	Number        uint64 `json:"number"`
	PrevBlockHash string `json:"prev_block_hash"`
	TimeStamp     uint64 `json:"timestamp"`
	Nonce         uint64 `json:"nonce"`
	Difficulty    uint16 `json:"difficulty"`
	Hash          string `json:"hash"`
	Transactions  []tx   `json:"txs"`
}

type status struct {
	Status     string `json:"status"`
	Height     int    `json:"height"`
	Pending    int    `json:"pending"`
	LatestHash string `json:"latest_hash"`
	Difficulty uint16 `json:"difficulty"`
}

type validation struct {
	Valid  bool   `json:"valid"`
	Height int    `json:"height"`
	Error  string `json:"error,omitempty"`
}

// errorResponse matches the body the node sends back on failures.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// =============================================================================

// client provides access to the node's v1 api.
type client struct {
	url  string
	http *http.Client
}

func newClient(url string, timeout time.Duration) *client {
	return &client{
		url:  strings.TrimSuffix(url, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

func (c *client) get(ctx context.Context, path string, resp any) error {
	return c.do(ctx, http.MethodGet, path, nil, resp)
}

func (c *client) post(ctx context.Context, path string, body any, resp any) error {
	return c.do(ctx, http.MethodPost, path, body, resp)
}

func (c *client) do(ctx context.Context, method string, path string, body any, resp any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url+path, r)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		var er errorResponse
		if err := json.NewDecoder(res.Body).Decode(&er); err != nil {
			return fmt.Errorf("%s %s: status %d", method, path, res.StatusCode)
		}

		if len(er.Fields) > 0 {
			return fmt.Errorf("%s: %v", er.Error, er.Fields)
		}
		return fmt.Errorf("%s", er.Error)
	}

	if resp == nil {
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(resp); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
