package domain

import (
	"database/sql/driver"
	"encoding/json"
)

// ExtraAttrs слабо типизированные метаданные заказа (JSONB).
// Сюда попадают только данные платёжного провайдера, состояние купонов,
// баллов и рефералов живёт в типизированных таблицах
type ExtraAttrs map[string]interface{}

// Scan реализует sql.Scanner. NULL и неожиданные типы дают пустую карту
func (m *ExtraAttrs) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	}

	if len(raw) == 0 {
		*m = ExtraAttrs{}
		return nil
	}
	return json.Unmarshal(raw, m)
}

// Value реализует driver.Valuer, пустая карта пишется как {}
func (m ExtraAttrs) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	return json.Marshal(m)
}
