package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// IDList is an ordered, duplicate-free list of identifiers stored as a JSON column.
// It backs every relationship edge kept on a record (followers, likes, comments).
type IDList []uuid.UUID

// Contains reports whether id is a member of the list.
func (l IDList) Contains(id uuid.UUID) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Add appends id unless it is already present. It reports whether the list changed.
func (l *IDList) Add(id uuid.UUID) bool {
	if l.Contains(id) {
		return false
	}
	*l = append(*l, id)
	return true
}

// Remove drops id while keeping the order of the remaining members.
// It reports whether the list changed.
func (l *IDList) Remove(id uuid.UUID) bool {
	for i, v := range *l {
		if v == id {
			*l = append((*l)[:i:i], (*l)[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of members.
func (l IDList) Len() int {
	return len(l)
}

// MarshalJSON renders a nil list as an empty array.
func (l IDList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]uuid.UUID(l))
}

// GormDataType tells GORM which column type to migrate.
func (IDList) GormDataType() string {
	return "text"
}

// Value implements driver.Valuer.
func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]uuid.UUID(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *IDList) Scan(src any) error {
	raw, err := columnBytes(src)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		*l = IDList{}
		return nil
	}
	var ids []uuid.UUID
	if err := json.Unmarshal(raw, &ids); err != nil {
		return fmt.Errorf("scan id list: %w", err)
	}
	*l = IDList(ids)
	return nil
}

// StringList is the token counterpart of IDList: ordered oldest first.
type StringList []string

// Contains reports whether s is a member of the list.
func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

// Remove drops every occurrence of s and reports whether the list changed.
func (l *StringList) Remove(s string) bool {
	out := (*l)[:0:0]
	for _, v := range *l {
		if v != s {
			out = append(out, v)
		}
	}
	changed := len(out) != len(*l)
	*l = out
	return changed
}

// GormDataType tells GORM which column type to migrate.
func (StringList) GormDataType() string {
	return "text"
}

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	raw, err := columnBytes(src)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var vals []string
	if err := json.Unmarshal(raw, &vals); err != nil {
		return fmt.Errorf("scan string list: %w", err)
	}
	*l = StringList(vals)
	return nil
}

func columnBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported column type %T", src)
	}
}
