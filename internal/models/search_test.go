package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearchQuery_Values(t *testing.T) {
	t.Parallel()

	yes, no := true, false

	tcs := []struct {
		name string
		in   SearchQuery
		want string
	}{
		{"query_only", SearchQuery{Query: "shoe"}, "q=shoe"},
		{"trimmed", SearchQuery{Query: "  shoe  "}, "q=shoe"},
		{"tag", SearchQuery{Query: "shoe", Tag: "sale"}, "q=shoe&tag=sale"},
		{"public_true", SearchQuery{Query: "shoe", Public: &yes}, "public=1&q=shoe"},
		{"public_false", SearchQuery{Query: "shoe", Public: &no}, "public=0&q=shoe"},
		{"empty", SearchQuery{}, ""},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.in.Values().Encode())
		})
	}
}

func TestSearchResult_DecodeKeepsOrderAndRaw(t *testing.T) {
	t.Parallel()

	const body = `{"hits":[{"title":"Shoe A","price":"12.50","extra":1},{"title":"Shoe B"}],"nbHits":2}`

	var res SearchResult
	require.NoError(t, json.Unmarshal([]byte(body), &res))

	require.Equal(t, []string{"Shoe A", "Shoe B"}, res.Titles())
	require.Equal(t, "12.50", res.Hits[0].PriceText())
	require.Equal(t, "", res.Hits[1].PriceText())
	require.JSONEq(t, `{"title":"Shoe A","price":"12.50","extra":1}`, string(res.Hits[0].Raw))
	require.False(t, res.Empty())
}

func TestHit_LenientFields(t *testing.T) {
	t.Parallel()

	const body = `{"hits":[{"objectID":12,"title":"Shoe A","user":7,"body":null,"price":12.5,"public":true},{"title":"Shoe B","user":{"id":3},"price":null,"public":"yes"}]}`

	var res SearchResult
	require.NoError(t, json.Unmarshal([]byte(body), &res))
	require.Equal(t, []string{"Shoe A", "Shoe B"}, res.Titles())

	a := res.Hits[0]
	require.Equal(t, "12", a.ObjectID)
	require.Equal(t, "7", a.User)
	require.Empty(t, a.Body)
	require.Equal(t, "12.5", a.PriceText())
	require.NotNil(t, a.Public)
	require.True(t, *a.Public)

	b := res.Hits[1]
	require.Equal(t, `{"id":3}`, b.User)
	require.Empty(t, b.Price)
	require.Nil(t, b.Public)
}

func TestHit_NonObjectIsError(t *testing.T) {
	t.Parallel()

	var res SearchResult
	require.Error(t, json.Unmarshal([]byte(`{"hits":["Shoe A"]}`), &res))
	require.Error(t, json.Unmarshal([]byte(`{"hits":[[1]]}`), &res))
}

func TestSearchResult_MissingHitsIsEmpty(t *testing.T) {
	t.Parallel()

	var res SearchResult
	require.NoError(t, json.Unmarshal([]byte(`{"detail":"nothing"}`), &res))
	require.True(t, res.Empty())
	require.Empty(t, res.Titles())
}

func TestTokenPair_Credential(t *testing.T) {
	t.Parallel()

	c := TokenPair{Access: "AAA", Refresh: "RRR"}.Credential()
	require.Equal(t, Credential{Access: "AAA", Refresh: "RRR"}, c)
	require.False(t, c.Empty())
	require.True(t, Credential{}.Empty())
}
