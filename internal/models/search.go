package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// SearchQuery - параметры GET /search/.
// Public == nil - параметр не передаётся (бэкенд трактует как public=true).
type SearchQuery struct {
	Query  string
	Tag    string
	Public *bool
}

// Values собирает query string в том виде, в котором её ждёт бэкенд: q, tag, public=0|1.
func (q SearchQuery) Values() url.Values {
	v := url.Values{}

	if s := strings.TrimSpace(q.Query); s != "" {
		v.Set("q", s)
	}

	if q.Tag != "" {
		v.Set("tag", q.Tag)
	}

	if q.Public != nil {
		if *q.Public {
			v.Set("public", "1")
		} else {
			v.Set("public", "0")
		}
	}

	return v
}

// Hit - один результат поиска. Известные поля разобраны, исходный объект сохранён в Raw.
type Hit struct {
	ObjectID string          `json:"objectID,omitempty"`
	Title    string          `json:"title"`
	Body     string          `json:"body,omitempty"`
	User     string          `json:"user,omitempty"`
	Price    json.RawMessage `json:"price,omitempty"`
	Public   *bool           `json:"public,omitempty"`
	Raw      json.RawMessage `json:"-"`
}

// UnmarshalJSON разбирает хит нестрого: форма полей задаётся бэкендом
// (user - ForeignKey, приходит числом), поэтому известные поля читаются
// через gjson и приводятся к строке. Ошибка только для не-объекта.
func (h *Hit) UnmarshalJSON(b []byte) error {
	if !gjson.ValidBytes(b) {
		return errors.New("hit: invalid json")
	}

	r := gjson.ParseBytes(b)
	if !r.IsObject() {
		return fmt.Errorf("hit: want object, got %s", r.Type)
	}

	*h = Hit{
		ObjectID: text(r.Get("objectID")),
		Title:    text(r.Get("title")),
		Body:     text(r.Get("body")),
		User:     text(r.Get("user")),
		Raw:      append(json.RawMessage(nil), b...),
	}

	if p := r.Get("price"); p.Exists() && p.Type != gjson.Null {
		h.Price = json.RawMessage(p.Raw)
	}

	if p := r.Get("public"); p.IsBool() {
		v := p.Bool()
		h.Public = &v
	}

	return nil
}

// text - строковое представление значения; null и отсутствие дают "".
func text(r gjson.Result) string {
	switch r.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return r.Str
	default:
		return r.Raw
	}
}

// PriceText - цена без кавычек: бэкенд отдаёт её то строкой, то числом.
func (h Hit) PriceText() string {
	return strings.Trim(string(h.Price), `"`)
}

// SearchResult - ответ GET /search/. Порядок Hits - порядок бэкенда.
type SearchResult struct {
	Hits   []Hit  `json:"hits"`
	NbHits int    `json:"nbHits,omitempty"`
	Query  string `json:"query,omitempty"`
}

// Empty - нечего показывать ("No results found").
func (r SearchResult) Empty() bool { return len(r.Hits) == 0 }

// Titles возвращает заголовки хитов в исходном порядке.
func (r SearchResult) Titles() []string {
	out := make([]string, 0, len(r.Hits))
	for _, h := range r.Hits {
		out = append(out, h.Title)
	}

	return out
}
