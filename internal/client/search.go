package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/pribylovaa/go-shop-client/internal/models"
)

// Search выполняет GET /search/?<params>. Параметры передаются как есть,
// поэтому подходят и q/tag/public, и произвольные поля формы.
// Хиты возвращаются в порядке бэкенда; объект без hits - пустой результат.
func (c *Client) Search(ctx context.Context, params url.Values) (models.SearchResult, error) {
	const op = "client.Search"

	if len(params) == 0 {
		return models.SearchResult{}, fmt.Errorf("%s: %w", op, ErrEmptyQuery)
	}

	ex, err := c.do(ctx, call{
		endpoint: EndpointSearch,
		method:   http.MethodGet,
		path:     "/search/",
		query:    params,
		auth:     true,
	})
	if err != nil {
		return models.SearchResult{}, err
	}

	if err := c.checkVerdict(ctx, op, ex.body); err != nil {
		return models.SearchResult{}, err
	}

	if ex.status >= http.StatusBadRequest {
		return models.SearchResult{}, fmt.Errorf("%s: %w", op, statusError(EndpointSearch, ex))
	}

	if !isJSON(ex.body) || !gjson.ParseBytes(ex.body).IsObject() {
		return models.SearchResult{}, fmt.Errorf("%s: %w", op, ErrMalformedResponse)
	}

	var out models.SearchResult
	if err := json.Unmarshal(ex.body, &out); err != nil {
		return models.SearchResult{}, fmt.Errorf("%s: %w: %w", op, ErrMalformedResponse, err)
	}

	return out, nil
}

// SearchQuery - Search для типизированного запроса; пустой q - ErrEmptyQuery.
func (c *Client) SearchQuery(ctx context.Context, q models.SearchQuery) (models.SearchResult, error) {
	const op = "client.SearchQuery"

	v := q.Values()
	if v.Get("q") == "" {
		return models.SearchResult{}, fmt.Errorf("%s: %w", op, ErrEmptyQuery)
	}

	return c.Search(ctx, v)
}

// Products выполняет GET /products/ и возвращает тело как есть вместе со
// статусом (в том числе 4xx). 5xx - *StatusError, не-JSON - ErrMalformedResponse.
func (c *Client) Products(ctx context.Context) (models.Payload, error) {
	const op = "client.Products"

	ex, err := c.do(ctx, call{
		endpoint: EndpointProducts,
		method:   http.MethodGet,
		path:     "/products/",
		auth:     true,
	})
	if err != nil {
		return models.Payload{}, err
	}

	if err := c.checkVerdict(ctx, op, ex.body); err != nil {
		return models.Payload{}, err
	}

	if !isJSON(ex.body) {
		return models.Payload{}, fmt.Errorf("%s: %w", op, ErrMalformedResponse)
	}

	return models.Payload{Status: ex.status, Body: json.RawMessage(ex.body)}, nil
}
