package api

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// envelope is the wrapper every REST response is expected to use. A few
// list endpoints flatten the page fields to the top level instead of nesting
// them under "pagination"; both variants decode into the same struct and are
// translated to the one canonical ListResult shape here.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`

	Pagination  *pageInfo `json:"pagination"`
	CurrentPage int       `json:"currentPage"`
	TotalPages  int       `json:"totalPages"`
	Limit       int       `json:"limit"`

	// The total count travels under different names per resource.
	TotalItems int `json:"totalItems"`
	TotalLogs  int `json:"totalLogs"`
	TotalUsers int `json:"totalUsers"`
}

type pageInfo struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	Limit       int `json:"limit"`
}

// ListResult is the canonical flattened shape every list operation returns,
// regardless of how the backend nested its pagination fields.
type ListResult[T any] struct {
	Data        []T
	CurrentPage int
	TotalPages  int
	TotalItems  int
	Limit       int
}

// decodeData unwraps a {success, data} envelope and returns data.
func decodeData[T any](resp *Response) (T, error) {
	var env envelope[T]
	var zero T
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if !env.Success {
		if env.Message != "" {
			return zero, fmt.Errorf("%w: %s", ErrInvalidResponse, env.Message)
		}
		return zero, ErrInvalidResponse
	}
	return env.Data, nil
}

// decodeList unwraps a list envelope and flattens its pagination variants.
func decodeList[T any](resp *Response) (ListResult[T], error) {
	data, err := decodeData[[]T](resp)
	if err != nil {
		return ListResult[T]{}, err
	}

	var env envelope[json.RawMessage]
	// Already validated by decodeData; only the page fields matter here.
	_ = json.Unmarshal(resp.Body, &env)

	out := ListResult[T]{Data: data}
	if env.Pagination != nil {
		out.CurrentPage = env.Pagination.CurrentPage
		out.TotalPages = env.Pagination.TotalPages
		out.Limit = env.Pagination.Limit
	} else {
		out.CurrentPage = env.CurrentPage
		out.TotalPages = env.TotalPages
		out.Limit = env.Limit
	}

	switch {
	case env.TotalItems > 0:
		out.TotalItems = env.TotalItems
	case env.TotalLogs > 0:
		out.TotalItems = env.TotalLogs
	case env.TotalUsers > 0:
		out.TotalItems = env.TotalUsers
	default:
		out.TotalItems = len(data)
	}

	if out.CurrentPage == 0 {
		out.CurrentPage = 1
	}
	if out.TotalPages == 0 {
		out.TotalPages = 1
	}
	if out.Limit == 0 {
		out.Limit = len(data)
	}

	return out, nil
}

// ListParams are the common query parameters of list endpoints.
type ListParams struct {
	Page    int
	Limit   int
	Search  string
	SortBy  string
	SortDir string
}

// Values encodes non-zero parameters as a query string.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.SortBy != "" {
		v.Set("sortBy", p.SortBy)
	}
	if p.SortDir != "" {
		v.Set("sortDir", p.SortDir)
	}
	return v
}
