package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/beetlebugorg/geoprofile/internal/monitoring"
	"github.com/beetlebugorg/geoprofile/internal/soil"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const dateLayout = "2006-01-02"

// SQLite is a Repository backed by a SQLite database file. Profile layers are
// stored as a text blob of "top;bottom;soiltype" lines.
type SQLite struct {
	db *sql.DB
}

var _ Repository = (*SQLite)(nil)

// OpenSQLite opens or creates the database at path and migrates it to the
// latest schema.
func OpenSQLite(path string) (*SQLite, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite", path+sep+"_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// One connection keeps ":memory:" databases and the pragmas consistent
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// MigrateUp runs all pending migrations.
func (s *SQLite) MigrateUp() error {
	m, err := s.newMigrate()
	if err != nil {
		return err
	}
	// m is not closed: that would close the shared *sql.DB

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// SchemaVersion returns the applied migration version and its dirty state.
// It returns 0, false, nil for an empty database.
func (s *SQLite) SchemaVersion() (version uint, dirty bool, err error) {
	m, err := s.newMigrate()
	if err != nil {
		return 0, false, err
	}

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (s *SQLite) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}
	return m, nil
}

// migrateLogger implements migrate.Logger on top of monitoring.Logf.
type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	monitoring.Logf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

const profileColumns = `id, name, source, x, y, latitude, longitude, layers`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row scanner) (*soil.Profile, error) {
	var p soil.Profile
	var blob []byte
	if err := row.Scan(&p.ID, &p.Name, &p.Source, &p.X, &p.Y, &p.Latitude, &p.Longitude, &blob); err != nil {
		return nil, err
	}
	layers, err := soil.ParseLayers(blob)
	if err != nil {
		return nil, fmt.Errorf("profile %d: %w", p.ID, err)
	}
	p.SetLayers(layers)
	p.MarkClean()
	return &p, nil
}

func (s *SQLite) ListProfiles() ([]*soil.Profile, error) {
	rows, err := s.db.Query(`SELECT ` + profileColumns + ` FROM profiles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []*soil.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("list profiles: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return out, nil
}

func (s *SQLite) GetProfile(id int) (*soil.Profile, error) {
	row := s.db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %d: %w", id, err)
	}
	return p, nil
}

func (s *SQLite) UpsertProfile(p *soil.Profile) (int, error) {
	if p == nil {
		return 0, fmt.Errorf("upsert profile: nil profile")
	}
	if p.ID < 0 {
		return 0, fmt.Errorf("upsert profile: invalid id %d", p.ID)
	}

	blob := soil.MarshalLayers(p.Layers())
	if p.ID == 0 {
		// A NULL rowid becomes max(id)+1
		res, err := s.db.Exec(`INSERT INTO profiles (name, source, x, y, latitude, longitude, layers)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.Name, p.Source, p.X, p.Y, p.Latitude, p.Longitude, blob)
		if err != nil {
			return 0, fmt.Errorf("insert profile: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("insert profile: %w", err)
		}
		return int(id), nil
	}

	_, err := s.db.Exec(`INSERT INTO profiles (id, name, source, x, y, latitude, longitude, layers)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			source = excluded.source,
			x = excluded.x,
			y = excluded.y,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			layers = excluded.layers`,
		p.ID, p.Name, p.Source, p.X, p.Y, p.Latitude, p.Longitude, blob)
	if err != nil {
		return 0, fmt.Errorf("upsert profile %d: %w", p.ID, err)
	}
	return p.ID, nil
}

func (s *SQLite) DeleteProfile(id int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("delete profile %d: %w", id, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE soundings SET profile_id = NULL WHERE profile_id = ?`, id); err != nil {
		return fmt.Errorf("delete profile %d: %w", id, err)
	}
	res, err := tx.Exec(`DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete profile %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("profile %d: %w", id, ErrNotFound)
	}
	return tx.Commit()
}

func (s *SQLite) ProfileSources() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT source FROM profiles ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("list profile sources: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err != nil {
			return nil, fmt.Errorf("list profile sources: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

const soilTypeColumns = `id, name, description, source, ydry, ysat, c, phi, upsilon, k,
	mc_upsilon, mc_e50, hs_e50, hs_eoed, hs_eur, hs_m, ssc_lambda, ssc_kappa, ssc_mu,
	cp, cs, cap, cas, cv, color`

func scanSoilType(row scanner) (soil.SoilType, error) {
	var st soil.SoilType
	err := row.Scan(&st.ID, &st.Name, &st.Description, &st.Source,
		&st.DryWeight, &st.SaturatedWeight, &st.Cohesion, &st.FrictionAngle, &st.Upsilon, &st.Permeability,
		&st.MCUpsilon, &st.MCE50, &st.HSE50, &st.HSEoed, &st.HSEur, &st.HSM,
		&st.SSCLambda, &st.SSCKappa, &st.SSCMu,
		&st.Cp, &st.Cs, &st.Cap, &st.Cas, &st.Cv, &st.Color)
	return st, err
}

func (s *SQLite) ListSoilTypes() ([]soil.SoilType, error) {
	rows, err := s.db.Query(`SELECT ` + soilTypeColumns + ` FROM soiltypes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list soil types: %w", err)
	}
	defer rows.Close()

	var out []soil.SoilType
	for rows.Next() {
		st, err := scanSoilType(rows)
		if err != nil {
			return nil, fmt.Errorf("list soil types: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list soil types: %w", err)
	}
	return out, nil
}

func (s *SQLite) GetSoilType(id int) (soil.SoilType, error) {
	st, err := scanSoilType(s.db.QueryRow(`SELECT `+soilTypeColumns+` FROM soiltypes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return soil.SoilType{}, fmt.Errorf("soil type %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return soil.SoilType{}, fmt.Errorf("get soil type %d: %w", id, err)
	}
	return st, nil
}

func (s *SQLite) UpsertSoilType(st soil.SoilType) error {
	if st.ID < 1 {
		return fmt.Errorf("upsert soil type: invalid id %d", st.ID)
	}

	_, err := s.db.Exec(`INSERT OR REPLACE INTO soiltypes (`+soilTypeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.Name, st.Description, st.Source,
		st.DryWeight, st.SaturatedWeight, st.Cohesion, st.FrictionAngle, st.Upsilon, st.Permeability,
		st.MCUpsilon, st.MCE50, st.HSE50, st.HSEoed, st.HSEur, st.HSM,
		st.SSCLambda, st.SSCKappa, st.SSCMu,
		st.Cp, st.Cs, st.Cap, st.Cas, st.Cv, st.Color)
	if err != nil {
		return fmt.Errorf("upsert soil type %d: %w", st.ID, err)
	}
	return nil
}

func (s *SQLite) AddSounding(snd Sounding) (int, error) {
	var profileID interface{}
	if snd.ProfileID > 0 {
		profileID = snd.ProfileID
	}
	var date string
	if !snd.Date.IsZero() {
		date = snd.Date.Format(dateLayout)
	}

	res, err := s.db.Exec(`INSERT INTO soundings
		(profile_id, name, filename, date, x, y, latitude, longitude, top_elevation, bottom_elevation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		profileID, snd.Name, snd.FileName, date, snd.X, snd.Y, snd.Latitude, snd.Longitude,
		snd.TopElevation, snd.BottomElevation)
	if err != nil {
		return 0, fmt.Errorf("add sounding %s: %w", snd.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add sounding %s: %w", snd.Name, err)
	}
	return int(id), nil
}

func (s *SQLite) ListSoundings() ([]Sounding, error) {
	rows, err := s.db.Query(`SELECT id, profile_id, name, filename, date, x, y, latitude, longitude,
		top_elevation, bottom_elevation FROM soundings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list soundings: %w", err)
	}
	defer rows.Close()

	var out []Sounding
	for rows.Next() {
		var snd Sounding
		var profileID sql.NullInt64
		var date string
		if err := rows.Scan(&snd.ID, &profileID, &snd.Name, &snd.FileName, &date, &snd.X, &snd.Y,
			&snd.Latitude, &snd.Longitude, &snd.TopElevation, &snd.BottomElevation); err != nil {
			return nil, fmt.Errorf("list soundings: %w", err)
		}
		snd.ProfileID = int(profileID.Int64)
		if date != "" {
			if snd.Date, err = time.Parse(dateLayout, date); err != nil {
				return nil, fmt.Errorf("sounding %d: invalid date %q", snd.ID, date)
			}
		}
		out = append(out, snd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list soundings: %w", err)
	}
	return out, nil
}

func (s *SQLite) HasSoundingAt(x, y float64) (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM soundings WHERE x = ? AND y = ?`, x, y).Scan(&n); err != nil {
		return false, fmt.Errorf("check sounding position: %w", err)
	}
	return n > 0, nil
}
