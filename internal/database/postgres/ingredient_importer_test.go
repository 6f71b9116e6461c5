package postgres

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GoArmGo/foodgram/internal/domain"
	"github.com/GoArmGo/foodgram/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// newTestImporter открывает GORM поверх sqlite с той же уникальностью (name, measurement_unit)
func newTestImporter(t *testing.T) (*IngredientImporter, *gorm.DB) {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "ingredients.db"))
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	_, err = sqlDB.Exec(`CREATE TABLE ingredients (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		name              TEXT NOT NULL,
		measurement_unit  TEXT NOT NULL,
		CONSTRAINT ingredients_name_unit_key UNIQUE (name, measurement_unit)
	)`)
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return NewIngredientImporter(db, logger.Discard()), db
}

func TestParseIngredients(t *testing.T) {
	input := `[
		{"name": "абрикосовое варенье", "measurement_unit": "г"},
		{"name": " мука ", "measurement_unit": "г"},
		{"name": "мука", "measurement_unit": "г"},
		{"name": "мука", "measurement_unit": "стакан"}
	]`

	got, err := ParseIngredients(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []domain.Ingredient{
		{Name: "абрикосовое варенье", MeasurementUnit: "г"},
		{Name: "мука", MeasurementUnit: "г"},
		{Name: "мука", MeasurementUnit: "стакан"},
	}, got)
}

func TestParseIngredients_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `{"name":`},
		{"object instead of array", `{"name": "соль", "measurement_unit": "г"}`},
		{"empty unit", `[{"name": "соль", "measurement_unit": ""}]`},
		{"empty name", `[{"name": "  ", "measurement_unit": "г"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseIngredients(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestParseIngredients_Empty(t *testing.T) {
	got, err := ParseIngredients(strings.NewReader(`[]`))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIngredientImporter_SkipsExisting(t *testing.T) {
	importer, db := newTestImporter(t)
	ctx := context.Background()

	inserted, err := importer.Import(ctx, []domain.Ingredient{
		{Name: "мука", MeasurementUnit: "г"},
		{Name: "соль", MeasurementUnit: "г"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), inserted)

	inserted, err = importer.Import(ctx, []domain.Ingredient{
		{Name: "мука", MeasurementUnit: "г"},
		{Name: "мука", MeasurementUnit: "стакан"},
		{Name: "соль", MeasurementUnit: "г"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), inserted)

	var stored []domain.Ingredient
	require.NoError(t, db.Order("name, measurement_unit").Find(&stored).Error)
	require.Len(t, stored, 3)
	assert.Equal(t, "мука", stored[0].Name)
	assert.Equal(t, "г", stored[0].MeasurementUnit)
	assert.Equal(t, "стакан", stored[1].MeasurementUnit)
	assert.Equal(t, "соль", stored[2].Name)
}

func TestIngredientImporter_Empty(t *testing.T) {
	importer, _ := newTestImporter(t)

	inserted, err := importer.Import(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, inserted)
}
