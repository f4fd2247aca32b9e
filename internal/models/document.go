package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

var jsonNull = []byte("null")

// Document is an opaque JSON snapshot of a row. The zero value means "absent" and is stored
// as SQL NULL. Readers decode it lazily into whatever shape they expect.
type Document struct {
	raw datatypes.JSON
}

// DocumentOf encodes value as a document. Nil values and JSON null produce an absent document.
func DocumentOf(value interface{}) (Document, error) {
	switch v := value.(type) {
	case nil:
		return Document{}, nil
	case Document:
		return v, nil
	case *Document:
		if v == nil {
			return Document{}, nil
		}
		return *v, nil
	case json.RawMessage:
		return documentFromBytes(v)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return Document{}, fmt.Errorf("encode document: %w", err)
	}
	return documentFromBytes(data)
}

func documentFromBytes(data []byte) (Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull) {
		return Document{}, nil
	}
	if !json.Valid(trimmed) {
		return Document{}, fmt.Errorf("encode document: invalid json")
	}
	cp := make([]byte, len(trimmed))
	copy(cp, trimmed)
	return Document{raw: datatypes.JSON(cp)}, nil
}

// IsZero reports whether the document is absent.
func (d Document) IsZero() bool {
	return len(d.raw) == 0
}

// Bytes returns a copy of the encoded document.
func (d Document) Bytes() []byte {
	if d.IsZero() {
		return nil
	}
	cp := make([]byte, len(d.raw))
	copy(cp, d.raw)
	return cp
}

// Decode unmarshals the document into target.
func (d Document) Decode(target interface{}) error {
	if d.IsZero() {
		return fmt.Errorf("decode document: document is empty")
	}
	return json.Unmarshal(d.raw, target)
}

// Map decodes an object document. Non-object documents return an error.
func (d Document) Map() (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := d.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarshalJSON renders absent documents as null.
func (d Document) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return jsonNull, nil
	}
	return d.Bytes(), nil
}

// UnmarshalJSON accepts any JSON value; null yields an absent document.
func (d *Document) UnmarshalJSON(data []byte) error {
	doc, err := documentFromBytes(data)
	if err != nil {
		return err
	}
	*d = doc
	return nil
}

// Value implements driver.Valuer.
func (d Document) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return string(d.raw), nil
}

// Scan implements sql.Scanner.
func (d *Document) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = Document{}
		return nil
	case []byte:
		doc, err := documentFromBytes(v)
		if err != nil {
			return err
		}
		*d = doc
		return nil
	case string:
		doc, err := documentFromBytes([]byte(v))
		if err != nil {
			return err
		}
		*d = doc
		return nil
	default:
		return fmt.Errorf("unsupported document column type %T", value)
	}
}

// GormDataType reports the generic column type.
func (Document) GormDataType() string {
	return "json"
}

// GormDBDataType picks the dialect specific JSON column type.
func (Document) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return datatypes.JSON(nil).GormDBDataType(db, field)
}
