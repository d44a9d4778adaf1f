package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Meta describes a page of results.
type Meta struct {
	Total      int `json:"total"`
	Page       int `json:"page,omitempty"`
	Limit      int `json:"limit,omitempty"`
	TotalPages int `json:"totalPages,omitempty"`
}

// Page is a list endpoint result.
type Page[T any] struct {
	Data []T `json:"data"`
	Meta Meta `json:"meta"`
}

// EmptyPage is the fallback of every list endpoint.
func EmptyPage[T any]() Page[T] {
	return Page[T]{Data: []T{}, Meta: Meta{Total: 0}}
}

// Unwrap returns the payload of a JSON body: the value of its "data" key when
// the key is present, whatever that value is, otherwise the body itself.
func Unwrap(body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return nil, &InvalidResponseError{ContentType: "application/json", Err: fmt.Errorf("malformed JSON body")}
	}

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, &InvalidResponseError{ContentType: "application/json", Err: err}
		}
		if data, ok := obj["data"]; ok {
			return data, nil
		}
	}

	return trimmed, nil
}

// DecodePage decodes any of the list shapes the API produces:
//
//	[...]
//	{"data": [...]}
//	{"data": [...], "meta": {...}}
//	{"data": {"data": [...], "meta": {...}}}
//
// Pagination fields may also sit next to "data" instead of under "meta". When
// the server reports no total, the item count is used.
func DecodePage[T any](body []byte) (Page[T], error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Page[T]{}, invalidShape("empty body")
	}

	switch trimmed[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Page[T]{}, invalidShape(err.Error())
		}
		return Page[T]{Data: items, Meta: Meta{Total: len(items)}}, nil

	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return Page[T]{}, invalidShape(err.Error())
		}
		data, ok := obj["data"]
		if !ok {
			return Page[T]{}, invalidShape("object without data")
		}

		inner := bytes.TrimSpace(data)
		switch {
		case bytes.Equal(inner, []byte("null")):
			return EmptyPage[T](), nil
		case len(inner) > 0 && inner[0] == '{':
			// doubly nested: the inner object is the page
			return DecodePage[T](inner)
		}

		var items []T
		if err := json.Unmarshal(inner, &items); err != nil {
			return Page[T]{}, invalidShape(err.Error())
		}
		if items == nil {
			items = []T{}
		}
		meta, err := decodeMeta(obj, len(items))
		if err != nil {
			return Page[T]{}, err
		}
		return Page[T]{Data: items, Meta: meta}, nil
	}

	return Page[T]{}, invalidShape("neither array nor object")
}

// DecodeList decodes a collection that may come bare or as a page.
func DecodeList[T any](body []byte) ([]T, error) {
	page, err := DecodePage[T](body)
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}

// DecodeOne decodes the unwrapped payload of a singular endpoint.
func DecodeOne[T any](body []byte) (T, error) {
	var v T
	payload, err := Unwrap(body)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(payload, &v); err != nil {
		return v, invalidShape(err.Error())
	}
	return v, nil
}

func decodeMeta(obj map[string]json.RawMessage, count int) (Meta, error) {
	if raw, ok := obj["meta"]; ok {
		var m Meta
		if err := json.Unmarshal(raw, &m); err != nil {
			return Meta{}, invalidShape("meta: " + err.Error())
		}
		return m, nil
	}

	// legacy pages carry the fields at top level
	m := Meta{Total: count}
	for key, dst := range map[string]*int{
		"total":      &m.Total,
		"page":       &m.Page,
		"limit":      &m.Limit,
		"totalPages": &m.TotalPages,
	} {
		if raw, ok := obj[key]; ok {
			if err := json.Unmarshal(raw, dst); err != nil {
				return Meta{}, invalidShape(key + ": " + err.Error())
			}
		}
	}
	return m, nil
}

func invalidShape(reason string) error {
	return &InvalidResponseError{
		ContentType: "application/json",
		Err:         fmt.Errorf("unexpected payload shape: %s", reason),
	}
}
