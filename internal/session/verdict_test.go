package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		payload string
		want    Verdict
	}{
		{"rejected", `{"code":"token_not_valid"}`, RejectedNeedsLogin},
		{"rejected_with_detail", `{"detail":"Given token not valid for any token type","code":"token_not_valid","messages":[{"token_class":"AccessToken"}]}`, RejectedNeedsLogin},
		{"empty_object", `{}`, Valid},
		{"other_code", `{"code":"other"}`, Valid},
		{"hits", `{"hits":[]}`, Valid},
		{"code_not_string", `{"code":1}`, Valid},
		{"nested_code", `{"error":{"code":"token_not_valid"}}`, Valid},
		{"array", `[{"code":"token_not_valid"}]`, Valid},
		{"string", `"token_not_valid"`, Valid},
		{"malformed", `{"code":"token_not_valid"`, Valid},
		{"empty", ``, Valid},
		{"case_sensitive", `{"code":"TOKEN_NOT_VALID"}`, Valid},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Classify([]byte(tc.payload)))
		})
	}
}

func TestClassifyValue(t *testing.T) {
	t.Parallel()

	require.Equal(t, RejectedNeedsLogin, ClassifyValue(map[string]any{"code": "token_not_valid", "x": 1}))
	require.Equal(t, Valid, ClassifyValue(map[string]any{}))
	require.Equal(t, Valid, ClassifyValue(nil))
	require.Equal(t, Valid, ClassifyValue([]any{"token_not_valid"}))
	require.Equal(t, RejectedNeedsLogin, ClassifyValue(json.RawMessage(`{"code":"token_not_valid"}`)))
	require.Equal(t, RejectedNeedsLogin, ClassifyValue(struct {
		Code string `json:"code"`
	}{Code: "token_not_valid"}))
}

func TestVerdict_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "valid", Valid.String())
	require.Equal(t, "rejected_needs_login", RejectedNeedsLogin.String())
}
