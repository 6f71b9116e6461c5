package domain

// Ingredient представляет ингредиент из справочника,
// соответствует таблице ingredients в бд.
// Пара (name, measurement_unit) уникальна, единица измерения сама по себе - нет.
type Ingredient struct {
	ID              int64  `json:"id" db:"id" gorm:"primaryKey"`
	Name            string `json:"name" db:"name" gorm:"uniqueIndex:ingredients_name_unit_key"`
	MeasurementUnit string `json:"measurement_unit" db:"measurement_unit" gorm:"uniqueIndex:ingredients_name_unit_key"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}
