package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amoura-app/amoura-backend/pkg/migrate"
)

func TestInitMigrationContainsLedgerConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_init_schema.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no init schema migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE wallets",
		"CHECK ((model_id IS NULL) <> (customer_id IS NULL))",
		"CREATE UNIQUE INDEX idx_wallets_model ON wallets (model_id) WHERE model_id IS NOT NULL",
		"CREATE UNIQUE INDEX idx_wallets_customer ON wallets (customer_id) WHERE customer_id IS NOT NULL",
		"CHECK (commission >= 0 AND commission <= 100)",
		"CREATE TABLE transaction_histories",
		"DROP TABLE IF EXISTS transaction_histories",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
