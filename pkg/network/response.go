package network

import (
	"encoding/json"
)

// Decode turns a response body into T.
//
// Wire field names are mapped through the target type's json tags (the API
// speaks snake_case) and timestamps decode from RFC 3339, the ISO-8601
// profile the API uses.
func Decode[T any](body []byte) (T, error) {
	var out T
	if len(body) == 0 {
		return out, &Error{Kind: KindInvalidData}
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, &Error{Kind: KindDecoding, Err: err}
	}
	return out, nil
}
