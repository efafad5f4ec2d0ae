package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/sznchanda/arcade-ai/core"
)

// PageParams selects a page of a list endpoint. Offset and Cursor are
// mutually exclusive; which one applies depends on the provider's
// pagination style.
type PageParams struct {
	Limit  int
	Offset *int
	Cursor string
}

// Page is one decoded page of list results.
type Page struct {
	Items      []json.RawMessage
	Meta       *Meta
	NextCursor string
	NextOffset *int
}

// HasNext reports whether another page is available.
func (p *Page) HasNext() bool {
	if p == nil {
		return false
	}
	return p.NextCursor != "" || p.NextOffset != nil
}

// NewInvalidPaginationError flags a request mixing cursor and offset
// pagination.
func NewInvalidPaginationError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.RuntimeErrorInvalidPagination)
}

// IsInvalidPagination reports whether err is the mixed-pagination error.
func IsInvalidPagination(err error) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == core.RuntimeErrorInvalidPagination
}

// List fetches one page of a list endpoint, applying the provider's
// pagination style.
func (c *ResilientClient) List(ctx context.Context, path string, params PageParams, query map[string]string) (*Page, error) {
	if c == nil {
		return nil, fmt.Errorf("client: client is nil")
	}
	merged, err := c.paginationQuery(params, query)
	if err != nil {
		return nil, err
	}
	res, err := c.Get(ctx, path, merged)
	if err != nil {
		return nil, err
	}
	return c.decodePage(res, params)
}

// EachPage walks every page of a list endpoint, invoking fn per page until
// fn returns false, the pages run out, or an error occurs.
func (c *ResilientClient) EachPage(
	ctx context.Context,
	path string,
	params PageParams,
	query map[string]string,
	fn func(page *Page) (bool, error),
) error {
	if fn == nil {
		return fmt.Errorf("client: page callback is required")
	}
	current := params
	for {
		page, err := c.List(ctx, path, current, query)
		if err != nil {
			return err
		}
		keepGoing, err := fn(page)
		if err != nil {
			return err
		}
		if !keepGoing || !page.HasNext() {
			return nil
		}
		current = PageParams{Limit: current.Limit}
		switch c.profile.Pagination {
		case core.PaginationCursor:
			current.Cursor = page.NextCursor
		default:
			current.Offset = page.NextOffset
		}
	}
}

func (c *ResilientClient) paginationQuery(params PageParams, query map[string]string) (map[string]string, error) {
	if params.Cursor != "" && params.Offset != nil {
		return nil, NewInvalidPaginationError("client: cursor and offset pagination cannot be combined")
	}
	if params.Offset != nil && *params.Offset < 0 {
		return nil, goerrors.New("client: offset must not be negative", goerrors.CategoryValidation).
			WithTextCode(core.RuntimeErrorBadInput)
	}
	if c.profile.MaxPageSize > 0 && params.Limit > c.profile.MaxPageSize {
		return nil, goerrors.New(
			fmt.Sprintf("client: limit %d exceeds provider maximum %d", params.Limit, c.profile.MaxPageSize),
			goerrors.CategoryValidation,
		).WithTextCode(core.RuntimeErrorBadInput)
	}

	merged := map[string]string{}
	for key, value := range query {
		merged[key] = value
	}
	if params.Limit > 0 {
		merged["limit"] = strconv.Itoa(params.Limit)
	}
	switch c.profile.Pagination {
	case core.PaginationCursor:
		if params.Offset != nil {
			return nil, NewInvalidPaginationError("client: provider uses cursor pagination, offset is not supported")
		}
		if params.Cursor != "" {
			merged["page_token"] = params.Cursor
		}
	default:
		if params.Cursor != "" {
			return nil, NewInvalidPaginationError("client: provider uses offset pagination, cursor is not supported")
		}
		if params.Offset != nil {
			merged["offset"] = strconv.Itoa(*params.Offset)
		}
	}
	return merged, nil
}

func (c *ResilientClient) decodePage(res *Response, params PageParams) (*Page, error) {
	page := &Page{Meta: res.Meta}
	if len(res.Data) > 0 {
		if err := json.Unmarshal(res.Data, &page.Items); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "client: decode list data").
				WithTextCode(core.RuntimeErrorProviderFailure)
		}
	}

	switch c.profile.Pagination {
	case core.PaginationCursor:
		if res.Meta != nil && res.Meta.Paging != nil && res.Meta.Paging.Next != "" {
			page.NextCursor = extractPageToken(res.Meta.Paging.Next)
		}
	default:
		// Offset style: a full page plus a next link means more rows.
		if res.Meta != nil && res.Meta.Paging != nil && res.Meta.Paging.Next != "" {
			offset := 0
			if params.Offset != nil {
				offset = *params.Offset
			}
			next := offset + len(page.Items)
			page.NextOffset = &next
		}
	}
	return page, nil
}

// extractPageToken pulls the page_token parameter from a next link, or
// returns the raw value when it is already a bare token.
func extractPageToken(next string) string {
	parsed, err := url.Parse(next)
	if err != nil || parsed.RawQuery == "" {
		return strings.TrimSpace(next)
	}
	if token := parsed.Query().Get("page_token"); token != "" {
		return token
	}
	return strings.TrimSpace(next)
}
