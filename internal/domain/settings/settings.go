package settings

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/yungbote/storygrid-backend/internal/domain/model"
)

// APIKey holds one sealed provider key per owner and provider.
type APIKey struct {
	model.Base
	OwnerUserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_api_key_owner_provider,priority:1" json:"owner_user_id"`
	Provider    string    `gorm:"column:provider;not null;uniqueIndex:idx_api_key_owner_provider,priority:2" json:"provider"`
	SealedKey   []byte    `gorm:"column:sealed_key;not null" json:"-"`
	Hint        string    `gorm:"column:hint" json:"hint"`
}

func (APIKey) TableName() string { return "api_key" }

// UserSetting is a single preference value, stored as JSON.
type UserSetting struct {
	OwnerUserID uuid.UUID `gorm:"type:uuid;primaryKey" json:"owner_user_id"`
	Key         string    `gorm:"column:key;primaryKey" json:"key"`
	Value       Value     `gorm:"column:value" json:"value"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (UserSetting) TableName() string { return "user_setting" }

// Value is a raw JSON setting value. Settings are often bare scalars (45,
// true), so on SQLite the column is TEXT: a JSON column there has numeric
// affinity and hands numbers back as int64/float64.
type Value datatypes.JSON

func (Value) GormDataType() string { return "json" }

func (Value) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "sqlite":
		return "TEXT"
	default:
		return datatypes.JSON{}.GormDBDataType(db, field)
	}
}

func (v Value) Value() (driver.Value, error) {
	if len(v) == 0 {
		return nil, nil
	}
	return string(v), nil
}

func (v *Value) Scan(src any) error {
	switch x := src.(type) {
	case nil:
		*v = nil
		return nil
	case int64:
		*v = Value(strconv.FormatInt(x, 10))
		return nil
	case float64:
		*v = Value(strconv.FormatFloat(x, 'g', -1, 64))
		return nil
	case bool:
		*v = Value(strconv.FormatBool(x))
		return nil
	case string, []byte:
		return (*datatypes.JSON)(v).Scan(x)
	default:
		return fmt.Errorf("scan setting value: unsupported type %T", src)
	}
}

func (v Value) MarshalJSON() ([]byte, error) { return datatypes.JSON(v).MarshalJSON() }

func (v *Value) UnmarshalJSON(b []byte) error { return (*datatypes.JSON)(v).UnmarshalJSON(b) }
