package rowmap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"+3", int64(3)},
		{"3.5", 3.5},
		{".25", 0.25},
		{"10.", 10.0},
		{"0", int64(0)},
		{"-0.5", -0.5},
		{"1e3", "1e3"},
		{"2E-1", "2E-1"},
		{"007", "007"},
		{"-01", "-01"},
		{"00.5", "00.5"},
		{"99999999999999999999", 1e20},
		{"", ""},
		{"abc", "abc"},
		{"12abc", "12abc"},
		{" 12", " 12"},
		{"2024-01-15", "2024-01-15"},
		{"0x1F", "0x1F"},
		{"NaN", "NaN"},
		{"Inf", "Inf"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Coerce(tt.in))
		})
	}
}

func TestValue(t *testing.T) {
	assert.Nil(t, Value(nil))
	assert.Equal(t, int64(5), Value(int64(5)))
	assert.Equal(t, 2.5, Value(2.5))
	assert.Equal(t, int64(12), Value([]byte("12")))
	assert.Equal(t, "Bench Press", Value("Bench Press"))

	assert.Equal(t, map[string]any{"a": 1.0}, Value(`JSON:{"a":1}`))
	assert.Equal(t, []any{"x", 2.0}, Value(`JSON:["x",2]`))

	// Malformed JSON falls back to coercion of the stripped text.
	assert.Equal(t, int64(17), Value("JSON:17"))
	assert.Equal(t, "{broken", Value("JSON:{broken"))
}

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Connect("sqlite", filepath.Join(t.TempDir(), "rowmap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE items (
  id    INTEGER PRIMARY KEY,
  name  TEXT NOT NULL,
  qty   TEXT,
  extra TEXT
);
INSERT INTO items (id, name, qty, extra) VALUES
  (1, 'plate', '20', 'JSON:{"unit":"kg"}'),
  (2, 'bar', NULL, '1.5');
`)
	require.NoError(t, err)
	return db
}

type item struct {
	ID   int64   `db:"id"`
	Name string  `db:"name"`
	Qty  *string `db:"qty"`
}

func TestDynamicMapper(t *testing.T) {
	db := setupDB(t)

	recs, err := Query(context.Background(), db, Dynamic(), `SELECT id, name, qty, extra FROM items ORDER BY id`)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, int64(1), recs[0]["id"])
	assert.Equal(t, "plate", recs[0]["name"])
	assert.Equal(t, int64(20), recs[0]["qty"])
	assert.Equal(t, map[string]any{"unit": "kg"}, recs[0]["extra"])

	assert.Nil(t, recs[1]["qty"])
	assert.Equal(t, 1.5, recs[1]["extra"])
}

func TestStructMapper(t *testing.T) {
	db := setupDB(t)

	items, err := Query(context.Background(), db, Struct[item](), `SELECT id, name, qty FROM items ORDER BY id`)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "plate", items[0].Name)
	require.NotNil(t, items[0].Qty)
	assert.Equal(t, "20", *items[0].Qty)
	assert.Nil(t, items[1].Qty)
}

func TestOne(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	it, err := One(ctx, db, Struct[item](), `SELECT id, name, qty FROM items WHERE id = ?`, 2)
	require.NoError(t, err)
	assert.Equal(t, "bar", it.Name)

	_, err = One(ctx, db, Dynamic(), `SELECT * FROM items WHERE id = ?`, 99)
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestQuery_EmptyResultIsEmptySlice(t *testing.T) {
	db := setupDB(t)

	recs, err := Query(context.Background(), db, Dynamic(), `SELECT * FROM items WHERE id < 0`)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}
