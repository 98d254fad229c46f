package apiclient

import (
	"context"
	"net/http"
	"net/url"
)

// Meta mirrors the upstream paginated envelope metadata.
type Meta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// Page is one page of a listed resource.
type Page[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

type itemEnvelope[T any] struct {
	Data T `json:"data"`
}

// Resource is a generic paginated CRUD client for one upstream resource
// collection.
type Resource[T any] struct {
	client *Client
	path   string
}

// NewResource binds a Resource client to a collection path such as
// "/suppliers".
func NewResource[T any](client *Client, path string) Resource[T] {
	return Resource[T]{client: client, path: path}
}

// List fetches one page of the collection.
func (r Resource[T]) List(ctx context.Context, filters url.Values) (Page[T], error) {
	var page Page[T]
	if err := r.client.get(ctx, r.path, filters, &page); err != nil {
		return Page[T]{}, err
	}
	return page, nil
}

// Get fetches a single record by ID.
func (r Resource[T]) Get(ctx context.Context, id string) (T, error) {
	var env itemEnvelope[T]
	if err := r.client.get(ctx, r.path+"/"+url.PathEscape(id), nil, &env); err != nil {
		var zero T
		return zero, err
	}
	return env.Data, nil
}

// Create inserts a new record.
func (r Resource[T]) Create(ctx context.Context, payload any) (T, error) {
	var env itemEnvelope[T]
	if err := r.client.do(ctx, http.MethodPost, r.path, nil, payload, &env); err != nil {
		var zero T
		return zero, err
	}
	return env.Data, nil
}

// Update modifies an existing record.
func (r Resource[T]) Update(ctx context.Context, id string, payload any) (T, error) {
	var env itemEnvelope[T]
	if err := r.client.do(ctx, http.MethodPut, r.path+"/"+url.PathEscape(id), nil, payload, &env); err != nil {
		var zero T
		return zero, err
	}
	return env.Data, nil
}

// Delete removes a record.
func (r Resource[T]) Delete(ctx context.Context, id string) error {
	return r.client.do(ctx, http.MethodDelete, r.path+"/"+url.PathEscape(id), nil, nil, nil)
}
