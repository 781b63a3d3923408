package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// StringList defined JSON data type, need to implements driver.Valuer,
// sql.Scanner interface so the id lists survive the gorm snapshot backend.
type StringList []string

// Value return json value, implement driver.Valuer interface
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	ba, err := json.Marshal([]string(l))
	return string(ba), err
}

// Scan scan value into the list, implements sql.Scanner interface
func (l *StringList) Scan(val interface{}) error {
	var ba []byte
	switch v := val.(type) {
	case []byte:
		ba = v
	case string:
		ba = []byte(v)
	case nil:
		*l = StringList{}
		return nil
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSON value:", val))
	}
	t := make([]string, 0)
	err := json.Unmarshal(ba, &t)
	*l = StringList(t)
	return err
}

// GormDataType gorm common data type
func (l StringList) GormDataType() string {
	return "stringlist"
}

// GormDBDataType gorm db data type
func (StringList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "sqlite":
		return "JSON"
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	}
	return ""
}
