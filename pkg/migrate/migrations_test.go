package migrate

import (
	"os"
	"strings"
	"testing"
)

const migrationsDir = "migrations"

func TestMigrationsDirectoryIsValid(t *testing.T) {
	if err := ValidateDir(migrationsDir); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestInitialSchemaCoversCoreTables(t *testing.T) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var combined strings.Builder
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := os.ReadFile(migrationsDir + "/" + e.Name())
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		combined.Write(b)
	}
	sql := combined.String()
	for _, table := range []string{
		"CREATE TABLE tables",
		"CREATE TABLE orders",
		"CREATE TABLE order_line_items",
		"CREATE TABLE payments",
		"CREATE TABLE payment_intents",
		"CREATE TABLE audit_events",
		"CREATE TABLE staff_users",
		"uniq_payment_intents_live_order",
	} {
		if !strings.Contains(sql, table) {
			t.Fatalf("migrations missing %q", table)
		}
	}
}
