package models

import "encoding/json"

// Payload - тело ответа бэкенда без разбора вместе с HTTP-статусом.
type Payload struct {
	Status int
	Body   json.RawMessage
}
