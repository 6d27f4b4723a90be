package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createIntentTables(t *testing.T, db *gorm.DB) {
	for _, table := range []string{"card_payments", "token_payments", "crypto_payments"} {
		mustExec(t, db, fmt.Sprintf(`CREATE TABLE %s (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			buyer_id INTEGER NOT NULL,
			product_id INTEGER NOT NULL,
			amount TEXT NOT NULL,
			pay_url TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`, table))
	}
}

func createProductTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT,
		price INTEGER NOT NULL,
		photo_file_id TEXT NOT NULL,
		is_active BOOLEAN DEFAULT TRUE,
		created_at DATETIME
	);`)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id INTEGER PRIMARY KEY,
		username TEXT,
		first_name TEXT,
		last_name TEXT,
		is_active BOOLEAN DEFAULT TRUE,
		created_at DATETIME
	);`)
}
