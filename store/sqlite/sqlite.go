/*
Package sqlite provides a SQLite-backed implementation of the rule store.

PURPOSE:
  Implements rules.Store using SQLite. Rule content is stored as JSON
  config columns and parsed through the factory package on read, so the
  schema stays stable while rule structures evolve. In production the
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  carrier_rules:    Negotiated-fare rules keyed by vendor/carrier/tariff/rule
  security_lists:   Ordered security record lists keyed by vendor/item
  calculations:     Legacy markup-calculate tables keyed by vendor/item
  markup_controls:  Agency-owned markup control records
  retailer_rules:   Fare-retailer rules keyed by source agency

INDEXES:
  - idx_rules_key: rule lookup by full key (hot path)
  - idx_markups_owner_key: redistribution markup lookup
  - idx_retailer_source: retailer rule lookup per agency

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. With PostgreSQL, database-level
  concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/fares.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  eng := engine.New(store, converter)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - rules/store.go: Interface definition
  - rules/store/memory.go: In-memory implementation for testing
  - factory/rules.go: JSON config parsing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/fare-engine/factory"
	"github.com/warp/fare-engine/pricing"
	"github.com/warp/fare-engine/rules"
)

// Store implements rules.Store using SQLite.
type Store struct {
	db      *sql.DB
	factory *factory.RuleFactory
	mu      sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, factory: factory.NewRuleFactory()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Negotiated-fare rules. Full rule content lives in config_json.
	CREATE TABLE IF NOT EXISTS carrier_rules (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		vendor TEXT NOT NULL,
		carrier TEXT NOT NULL,
		tariff INTEGER NOT NULL,
		rule_number TEXT NOT NULL,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rules_key
		ON carrier_rules(vendor, carrier, tariff, rule_number);

	-- Security record lists. One row per vendor+item, whole ordered list
	-- as a JSON array.
	CREATE TABLE IF NOT EXISTS security_lists (
		vendor TEXT NOT NULL,
		item_no INTEGER NOT NULL,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (vendor, item_no)
	);

	-- Legacy markup-calculate tables, same layout.
	CREATE TABLE IF NOT EXISTS calculations (
		vendor TEXT NOT NULL,
		item_no INTEGER NOT NULL,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (vendor, item_no)
	);

	-- Agency-owned markup control records.
	CREATE TABLE IF NOT EXISTS markup_controls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_pcc TEXT NOT NULL,
		vendor TEXT NOT NULL,
		carrier TEXT NOT NULL,
		tariff INTEGER NOT NULL,
		rule_number TEXT NOT NULL,
		seq_no INTEGER NOT NULL,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(owner_pcc, vendor, carrier, tariff, rule_number, seq_no)
	);

	CREATE INDEX IF NOT EXISTS idx_markups_owner_key
		ON markup_controls(owner_pcc, vendor, carrier, tariff, rule_number);

	-- Fare-retailer rules.
	CREATE TABLE IF NOT EXISTS retailer_rules (
		rule_id INTEGER PRIMARY KEY,
		source_pcc TEXT NOT NULL,
		seq_no INTEGER NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		effective_from TEXT,
		discontinue_at TEXT,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_retailer_source
		ON retailer_rules(source_pcc, seq_no);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WRITE SIDE (fixtures, admin tooling, scenario seeding)
// =============================================================================

// SaveRule stores one rule from its JSON definition. The JSON is parsed
// first so bad config is rejected at write time.
func (s *Store) SaveRule(ctx context.Context, configJSON string) error {
	r, err := s.factory.ParseRule(configJSON)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO carrier_rules (vendor, carrier, tariff, rule_number, config_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		string(r.Key.Vendor), string(r.Key.Carrier), r.Key.Tariff, r.Key.RuleNumber,
		configJSON, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save rule: %w", err)
	}
	return nil
}

// SaveSecurityList stores a security record list for a vendor+item.
func (s *Store) SaveSecurityList(ctx context.Context, vendor pricing.VendorCode, itemNo int, configJSON string) error {
	if _, err := s.factory.ParseSecurityList(configJSON); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO security_lists (vendor, item_no, config_json, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(vendor, item_no) DO UPDATE SET
			config_json = excluded.config_json
	`
	_, err := s.db.ExecContext(ctx, query,
		string(vendor), itemNo, configJSON, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save security list: %w", err)
	}
	return nil
}

// SaveCalculation stores a legacy calculation table for a vendor+item.
func (s *Store) SaveCalculation(ctx context.Context, vendor pricing.VendorCode, itemNo int, configJSON string) error {
	if _, err := s.factory.ParseCalculation(configJSON); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO calculations (vendor, item_no, config_json, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(vendor, item_no) DO UPDATE SET
			config_json = excluded.config_json
	`
	_, err := s.db.ExecContext(ctx, query,
		string(vendor), itemNo, configJSON, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save calculation: %w", err)
	}
	return nil
}

// SaveMarkupControl stores one markup control record.
func (s *Store) SaveMarkupControl(ctx context.Context, configJSON string) error {
	mc, err := s.factory.ParseMarkupControl(configJSON)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO markup_controls (owner_pcc, vendor, carrier, tariff, rule_number, seq_no, config_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_pcc, vendor, carrier, tariff, rule_number, seq_no) DO UPDATE SET
			config_json = excluded.config_json
	`
	_, err = s.db.ExecContext(ctx, query,
		string(mc.OwnerPCC), string(mc.Vendor), string(mc.Carrier),
		mc.Tariff, mc.RuleNumber, mc.SeqNo,
		configJSON, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save markup control: %w", err)
	}
	return nil
}

// SaveFareRetailerRule stores one fare-retailer rule.
func (s *Store) SaveFareRetailerRule(ctx context.Context, configJSON string) error {
	r, err := s.factory.ParseFareRetailerRule(configJSON)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var effective, discontinue *string
	if !r.EffectiveFrom.IsZero() {
		v := r.EffectiveFrom.Format(time.RFC3339)
		effective = &v
	}
	if !r.DiscontinueAt.IsZero() {
		v := r.DiscontinueAt.Format(time.RFC3339)
		discontinue = &v
	}

	query := `
		INSERT INTO retailer_rules (rule_id, source_pcc, seq_no, active, effective_from, discontinue_at, config_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(rule_id) DO UPDATE SET
			source_pcc = excluded.source_pcc,
			seq_no = excluded.seq_no,
			active = excluded.active,
			effective_from = excluded.effective_from,
			discontinue_at = excluded.discontinue_at,
			config_json = excluded.config_json
	`
	_, err = s.db.ExecContext(ctx, query,
		r.RuleID, string(r.SourcePCC), r.SeqNo, r.Active,
		effective, discontinue,
		configJSON, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save fare retailer rule: %w", err)
	}
	return nil
}

// Reset clears all rule data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"carrier_rules", "security_lists", "calculations", "markup_controls", "retailer_rules"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// READ SIDE (rules.Store interface)
// =============================================================================

// GetRules returns the rules stored under a key.
func (s *Store) GetRules(ctx context.Context, key rules.RuleKey, _ time.Time) ([]rules.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT config_json FROM carrier_rules
		WHERE vendor = ? AND carrier = ? AND tariff = ? AND rule_number = ?
		ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query,
		string(key.Vendor), string(key.Carrier), key.Tariff, key.RuleNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	var out []rules.Rule
	for rows.Next() {
		var configJSON string
		if err := rows.Scan(&configJSON); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		r, err := s.factory.ParseRule(configJSON)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// GetSecurity returns the ordered security list for a vendor+item.
func (s *Store) GetSecurity(ctx context.Context, vendor pricing.VendorCode, itemNo int) ([]rules.SecurityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var configJSON string
	err := s.db.QueryRowContext(ctx,
		"SELECT config_json FROM security_lists WHERE vendor = ? AND item_no = ?",
		string(vendor), itemNo,
	).Scan(&configJSON)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query security list: %w", err)
	}
	return s.factory.ParseSecurityList(configJSON)
}

// GetCalculation returns the legacy calculation rows for a vendor+item.
func (s *Store) GetCalculation(ctx context.Context, vendor pricing.VendorCode, itemNo int) ([]rules.MarkupCalculate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var configJSON string
	err := s.db.QueryRowContext(ctx,
		"SELECT config_json FROM calculations WHERE vendor = ? AND item_no = ?",
		string(vendor), itemNo,
	).Scan(&configJSON)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query calculation: %w", err)
	}
	return s.factory.ParseCalculation(configJSON)
}

// GetMarkupControl returns an agency's markup controls for a rule key.
func (s *Store) GetMarkupControl(ctx context.Context, pcc pricing.PseudoCityCode, key rules.RuleKey, _ time.Time) ([]rules.MarkupControl, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT config_json FROM markup_controls
		WHERE owner_pcc = ? AND vendor = ? AND carrier = ? AND tariff = ? AND rule_number = ?
		ORDER BY seq_no ASC
	`
	rows, err := s.db.QueryContext(ctx, query,
		string(pcc), string(key.Vendor), string(key.Carrier), key.Tariff, key.RuleNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query markup controls: %w", err)
	}
	defer rows.Close()

	var out []rules.MarkupControl
	for rows.Next() {
		var configJSON string
		if err := rows.Scan(&configJSON); err != nil {
			return nil, fmt.Errorf("failed to scan markup control: %w", err)
		}
		mc, err := s.factory.ParseMarkupControl(configJSON)
		if err != nil {
			return nil, err
		}
		out = append(out, *mc)
	}
	return out, rows.Err()
}

// GetFareRetailerRules returns the active, in-window retailer rules for
// a source agency.
func (s *Store) GetFareRetailerRules(ctx context.Context, sourcePCC pricing.PseudoCityCode, at time.Time) ([]rules.FareRetailerRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	atStr := at.Format(time.RFC3339)
	query := `
		SELECT config_json FROM retailer_rules
		WHERE source_pcc = ? AND active = TRUE
		  AND (effective_from IS NULL OR effective_from <= ?)
		  AND (discontinue_at IS NULL OR discontinue_at >= ?)
		ORDER BY seq_no ASC
	`
	rows, err := s.db.QueryContext(ctx, query, string(sourcePCC), atStr, atStr)
	if err != nil {
		return nil, fmt.Errorf("failed to query fare retailer rules: %w", err)
	}
	defer rows.Close()

	var out []rules.FareRetailerRule
	for rows.Next() {
		var configJSON string
		if err := rows.Scan(&configJSON); err != nil {
			return nil, fmt.Errorf("failed to scan fare retailer rule: %w", err)
		}
		r, err := s.factory.ParseFareRetailerRule(configJSON)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

var _ rules.Store = (*Store)(nil)
