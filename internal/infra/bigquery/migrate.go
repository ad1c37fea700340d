package bigquery

import (
	"context"
	"crypto/sha256"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/statement-ledger/internal/logger"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Migration is one numbered schema script.
type Migration struct {
	Version  int
	Name     string
	Filename string
	SQL      string
	Checksum string
}

// AppliedMigration is a row of schema_migrations.
type AppliedMigration struct {
	Version   int
	Name      string
	AppliedAt time.Time
	Checksum  string
	AppliedBy string
}

var migrationFile = regexp.MustCompile(`^(\d{4})_(.+)\.sql$`)

// ReadMigrations loads NNNN_name.sql files from dir in fsys, substitutes the
// project and dataset placeholders, and sorts them by version. The checksum
// covers the file as written, before substitution.
func ReadMigrations(fsys fs.FS, dir string, t Tables) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("ReadMigrations: reading %s: %w", dir, err)
	}

	seen := make(map[int]string)
	var out []Migration
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := migrationFile.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		version, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if prev, ok := seen[version]; ok {
			return nil, fmt.Errorf("ReadMigrations: version %04d used by %s and %s", version, prev, e.Name())
		}
		seen[version] = e.Name()

		content, err := fs.ReadFile(fsys, dir+"/"+e.Name())
		if err != nil {
			return nil, fmt.Errorf("ReadMigrations: %s: %w", e.Name(), err)
		}
		sql := strings.ReplaceAll(string(content), "{{PROJECT_ID}}", t.Project)
		sql = strings.ReplaceAll(sql, "{{DATASET_ID}}", t.Dataset)

		out = append(out, Migration{
			Version:  version,
			Name:     m[2],
			Filename: e.Name(),
			SQL:      sql,
			Checksum: fmt.Sprintf("%x", sha256.Sum256(content)),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// PendingMigrations returns the migrations whose version is not applied yet.
// A changed checksum on an applied version is an error.
func PendingMigrations(all []Migration, applied []AppliedMigration) ([]Migration, error) {
	done := make(map[int]AppliedMigration, len(applied))
	for _, a := range applied {
		done[a.Version] = a
	}
	var pending []Migration
	for _, m := range all {
		a, ok := done[m.Version]
		if !ok {
			pending = append(pending, m)
			continue
		}
		if a.Checksum != "" && a.Checksum != m.Checksum {
			return nil, fmt.Errorf("PendingMigrations: %s was modified after being applied", m.Filename)
		}
	}
	return pending, nil
}

// ApplyMigrationsWithClient applies the embedded migrations that are not yet
// recorded in schema_migrations and returns how many ran.
func ApplyMigrationsWithClient(ctx context.Context, client *bigquery.Client, t Tables, appliedBy string) (int, error) {
	log := logger.FromContext(ctx)

	if err := ensureSchemaMigrationsTable(ctx, client, t); err != nil {
		return 0, fmt.Errorf("ApplyMigrationsWithClient: %w", err)
	}
	all, err := ReadMigrations(embeddedMigrations, "migrations", t)
	if err != nil {
		return 0, fmt.Errorf("ApplyMigrationsWithClient: %w", err)
	}
	applied, err := appliedMigrations(ctx, client, t)
	if err != nil {
		return 0, fmt.Errorf("ApplyMigrationsWithClient: %w", err)
	}
	pending, err := PendingMigrations(all, applied)
	if err != nil {
		return 0, fmt.Errorf("ApplyMigrationsWithClient: %w", err)
	}

	log.Info().Int("found", len(all)).Int("applied", len(applied)).Int("pending", len(pending)).Msg("migration status")

	for _, m := range pending {
		log.Info().Int("version", m.Version).Str("name", m.Name).Msg("applying migration")
		if _, err := runDML(ctx, client.Query(m.SQL)); err != nil {
			return 0, fmt.Errorf("ApplyMigrationsWithClient: %s: %w", m.Filename, err)
		}
		if err := recordMigration(ctx, client, t, m, appliedBy); err != nil {
			return 0, fmt.Errorf("ApplyMigrationsWithClient: recording %s: %w", m.Filename, err)
		}
	}
	return len(pending), nil
}

func ensureSchemaMigrationsTable(ctx context.Context, client *bigquery.Client, t Tables) error {
	q := client.Query(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version    INT64 NOT NULL,
			name       STRING NOT NULL,
			applied_at TIMESTAMP NOT NULL,
			checksum   STRING,
			applied_by STRING
		)
	`, t.name("schema_migrations")))
	if _, err := runDML(ctx, q); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}
	return nil
}

func appliedMigrations(ctx context.Context, client *bigquery.Client, t Tables) ([]AppliedMigration, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT version, name, applied_at, checksum, applied_by
		FROM %s ORDER BY version
	`, t.name("schema_migrations")))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading applied migrations: %w", err)
	}

	var out []AppliedMigration
	for {
		var row struct {
			Version   int64               `bigquery:"version"`
			Name      string              `bigquery:"name"`
			AppliedAt time.Time           `bigquery:"applied_at"`
			Checksum  bigquery.NullString `bigquery:"checksum"`
			AppliedBy bigquery.NullString `bigquery:"applied_by"`
		}
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating applied migrations: %w", err)
		}
		out = append(out, AppliedMigration{
			Version:   int(row.Version),
			Name:      row.Name,
			AppliedAt: row.AppliedAt,
			Checksum:  row.Checksum.StringVal,
			AppliedBy: row.AppliedBy.StringVal,
		})
	}
	return out, nil
}

func recordMigration(ctx context.Context, client *bigquery.Client, t Tables, m Migration, appliedBy string) error {
	q := client.Query(fmt.Sprintf(`
		INSERT INTO %s (version, name, applied_at, checksum, applied_by)
		VALUES (@version, @name, CURRENT_TIMESTAMP(), @checksum, @applied_by)
	`, t.name("schema_migrations")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "version", Value: m.Version},
		{Name: "name", Value: m.Name},
		{Name: "checksum", Value: m.Checksum},
		{Name: "applied_by", Value: appliedBy},
	}
	_, err := runDML(ctx, q)
	return err
}
