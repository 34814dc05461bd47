package upstream

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Resource is the usual REST collection: GET/POST on the path, GET/PATCH/DELETE on
// path/{id}.
type Resource[T any] struct {
	client       *Client
	path         string
	updateMethod string
}

func NewResource[T any](client *Client, path string) *Resource[T] {
	return &Resource[T]{client: client, path: path, updateMethod: http.MethodPatch}
}

// WithUpdateMethod replaces PATCH for collections that update with PUT.
func (r *Resource[T]) WithUpdateMethod(method string) *Resource[T] {
	r.updateMethod = method
	return r
}

func (r *Resource[T]) item(id int) string {
	return r.path + "/" + strconv.Itoa(id)
}

func (r *Resource[T]) List(ctx context.Context, query url.Values) ([]T, error) {
	var items []T
	if err := r.client.Do(ctx, http.MethodGet, r.path, query, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (r *Resource[T]) Get(ctx context.Context, id int) (T, error) {
	var item T
	err := r.client.Do(ctx, http.MethodGet, r.item(id), nil, nil, &item)
	return item, err
}

func (r *Resource[T]) Create(ctx context.Context, body Body) (T, error) {
	var item T
	err := r.client.Do(ctx, http.MethodPost, r.path, nil, body, &item)
	return item, err
}

func (r *Resource[T]) Update(ctx context.Context, id int, body Body) (T, error) {
	var item T
	err := r.client.Do(ctx, r.updateMethod, r.item(id), nil, body, &item)
	return item, err
}

func (r *Resource[T]) Delete(ctx context.Context, id int) error {
	return r.client.Do(ctx, http.MethodDelete, r.item(id), nil, nil, nil)
}
