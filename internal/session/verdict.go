package session

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// CodeTokenNotValid - код simplejwt для отвергнутого токена.
const CodeTokenNotValid = "token_not_valid"

// Verdict - результат классификации ответа бэкенда.
type Verdict int

const (
	Valid Verdict = iota
	RejectedNeedsLogin
)

func (v Verdict) String() string {
	switch v {
	case Valid:
		return "valid"
	case RejectedNeedsLogin:
		return "rejected_needs_login"
	default:
		return "unknown"
	}
}

// Classify смотрит на тело ответа произвольной формы.
// RejectedNeedsLogin - только объект с полем code == "token_not_valid" (строкой).
// Пустое, битое или любое другое тело считается Valid.
func Classify(payload []byte) Verdict {
	if !gjson.ValidBytes(payload) {
		return Valid
	}

	root := gjson.ParseBytes(payload)
	if !root.IsObject() {
		return Valid
	}

	code := root.Get("code")
	if code.Type == gjson.String && code.Str == CodeTokenNotValid {
		return RejectedNeedsLogin
	}

	return Valid
}

// ClassifyValue - то же для уже декодированного значения.
func ClassifyValue(v any) Verdict {
	switch t := v.(type) {
	case nil:
		return Valid
	case map[string]any:
		if code, ok := t["code"].(string); ok && code == CodeTokenNotValid {
			return RejectedNeedsLogin
		}
		return Valid
	case json.RawMessage:
		return Classify(t)
	case []byte:
		return Classify(t)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return Valid
		}
		return Classify(b)
	}
}
