package migration

import (
	"fmt"
	"io/fs"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/pokedex/internal/pokemon/domain"
	"github.com/smallbiznis/pokedex/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(embeddedMigrations, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(embeddedMigrations, "migrations/*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}

func TestRunAutoMigratesNonPostgres(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Run(conn, db.TypeSQLite))
	assert.True(t, conn.Migrator().HasTable(&domain.Pokemon{}))
	assert.True(t, conn.Migrator().HasIndex(&domain.Pokemon{}, "ux_pokemons_no"))
	assert.True(t, conn.Migrator().HasIndex(&domain.Pokemon{}, "ux_pokemons_name"))
}

func TestRunRequiresConnection(t *testing.T) {
	assert.Error(t, Run(nil, db.TypeSQLite))
	assert.Error(t, RunMigrations(nil))
}
