package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/launchserver/internal/dbx"
	"github.com/dmitrijs2005/launchserver/internal/server/repositories/hardware"
	"github.com/dmitrijs2005/launchserver/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Hardware(db dbx.DBTX) hardware.Repository
}
