package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// Page is the page record of an extract response.
type Page struct {
	PageID  int64   `json:"pageid,omitempty"`
	NS      int     `json:"ns"`
	Title   string  `json:"title"`
	Extract *string `json:"extract,omitempty"`
	Missing *string `json:"missing,omitempty"`
	Invalid *string `json:"invalid,omitempty"`
}

// HasExtract reports whether the record carries non-empty extracted text.
func (p Page) HasExtract() bool {
	return p.Extract != nil && *p.Extract != ""
}

// extractResponse is the formatversion=1 extract document.
type extractResponse struct {
	Query *struct {
		Pages map[string]Page `json:"pages"`
	} `json:"query"`
	Error *APIError `json:"error"`
}

// Extract requests the plain-text extract of one article and returns the
// raw response document. A non-200 answer is returned as *StatusError.
func (c *Client) Extract(ctx context.Context, title string) ([]byte, error) {
	params := url.Values{
		"action":      {"query"},
		"format":      {"json"},
		"titles":      {title},
		"prop":        {"extracts"},
		"explaintext": {"1"},
	}
	return c.get(ctx, params)
}

// DecodeExtract parses an extract response document and returns its single
// page record.
func DecodeExtract(body []byte) (Page, error) {
	var resp extractResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Page{}, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}
	if resp.Error != nil {
		return Page{}, resp.Error
	}
	if resp.Query == nil || len(resp.Query.Pages) != 1 {
		return Page{}, fmt.Errorf("%w: expected exactly one page record", ErrUnexpectedResponse)
	}
	for _, page := range resp.Query.Pages {
		return page, nil
	}
	return Page{}, ErrUnexpectedResponse
}
