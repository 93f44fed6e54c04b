package migrations

import (
	"embed"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
)

//go:embed sql/*.sql
var files embed.FS

// Up applies every pending migration to the database at databaseURL.
// It reports whether anything changed.
func Up(databaseURL string) (bool, error) {
	src, err := iofs.New(files, "sql")
	if err != nil {
		return false, errors.Wrap(err, "opening embedded migrations")
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return false, errors.Wrap(err, "creating migrator")
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return false, nil
		}
		return false, errors.Wrap(err, "applying migrations")
	}
	return true, nil
}
