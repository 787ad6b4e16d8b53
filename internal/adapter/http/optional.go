package http

import (
	"bytes"
	"encoding/json"

	"github.com/danielgtaylor/huma/v2"
)

var jsonNull = []byte("null")

// OptionalIDs is a JSON array of ids that remembers whether the field was
// present at all. An explicit null is present and empty.
type OptionalIDs struct {
	Set bool
	IDs []string
}

func (o *OptionalIDs) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		o.IDs = nil
		return nil
	}
	return json.Unmarshal(data, &o.IDs)
}

func (o OptionalIDs) MarshalJSON() ([]byte, error) {
	if o.IDs == nil {
		return jsonNull, nil
	}
	return json.Marshal(o.IDs)
}

// Schema documents the field as a nullable array of strings.
func (o OptionalIDs) Schema(huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type:        huma.TypeArray,
		Nullable:    true,
		Items:       &huma.Schema{Type: huma.TypeString, MinLength: ptr(1)},
		Description: "Complete list of current venue ids; empty or null clears",
	}
}

// OptionalID is a single id that remembers whether the field was present.
// An explicit null or empty string is present and clears.
type OptionalID struct {
	Set bool
	ID  string
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		o.ID = ""
		return nil
	}
	return json.Unmarshal(data, &o.ID)
}

func (o OptionalID) MarshalJSON() ([]byte, error) {
	if o.ID == "" {
		return jsonNull, nil
	}
	return json.Marshal(o.ID)
}

// Schema documents the field as a nullable string.
func (o OptionalID) Schema(huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type:        huma.TypeString,
		Nullable:    true,
		Description: "Single current venue id; empty or null clears",
	}
}

// assignment resolves the two accepted spellings of a venue assignment.
// ok is false when neither field was sent.
func assignment(ids OptionalIDs, id OptionalID) (venueIDs []string, ok bool, conflict bool) {
	switch {
	case ids.Set && id.Set:
		return nil, false, true
	case ids.Set:
		if ids.IDs == nil {
			return []string{}, true, false
		}
		return ids.IDs, true, false
	case id.Set:
		if id.ID == "" {
			return []string{}, true, false
		}
		return []string{id.ID}, true, false
	}
	return nil, false, false
}

func ptr[T any](v T) *T { return &v }
