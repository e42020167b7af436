package schema

import "encoding/json"

// columnJSON is the wire form of ColumnInfo. Unspecified attributes are
// encoded as null; a specified empty index set is encoded as [].
type columnJSON struct {
	Name       *string      `json:"name"`
	Type       *Type        `json:"type"`
	Nullable   *bool        `json:"nullable"`
	IndexTypes *[]IndexType `json:"index_types"`
}

// MarshalJSON implements json.Marshaler.
func (c ColumnInfo) MarshalJSON() ([]byte, error) {
	out := columnJSON{
		Name:     c.name.Ptr(),
		Type:     c.typ.Ptr(),
		Nullable: c.nullable.Ptr(),
	}
	if set, ok := c.indexTypes.Get(); ok {
		members := set.Slice()
		out.IndexTypes = &members
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *ColumnInfo) UnmarshalJSON(data []byte) error {
	var in columnJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	var indexTypes []IndexType
	if in.IndexTypes != nil {
		indexTypes = *in.IndexTypes
		if indexTypes == nil {
			indexTypes = []IndexType{}
		}
	}
	*c = NewColumnInfo(FromPtr(in.Name), FromPtr(in.Type), FromPtr(in.Nullable), indexTypes)
	return nil
}
