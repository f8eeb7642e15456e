package main

import (
	"embed"

	"github.com/ghuser/catalog/pkg/config"
	"github.com/ghuser/catalog/pkg/database"
	"github.com/ghuser/catalog/pkg/migrator"
)

//go:embed *.sql
var MigrationsFS embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	dsn, err := database.ConnString(cfg)
	if err != nil {
		panic(err)
	}
	if err := migrator.RunMigrations(dsn, MigrationsFS); err != nil {
		panic(err)
	}
}
