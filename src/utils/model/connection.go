package model

import (
	"context"
	"fmt"
	"time"

	"github.com/hashhedge/workflow/src/utils/build_info"
	"github.com/hashhedge/workflow/src/utils/config"
	l "github.com/hashhedge/workflow/src/utils/logger"

	migrate "github.com/rubenv/sql-migrate"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the journal database. Postgres in production,
// sqlite (possibly in-memory) in development.
func Connect(ctx context.Context, journalConfig *config.Journal, applicationName string) (self *gorm.DB, err error) {
	log := l.NewSublogger("db")

	gormLogger := logger.New(log,
		logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Error,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	switch journalConfig.Driver {
	case "sqlite":
		self, err = gorm.Open(sqlite.Open(journalConfig.SqlitePath), &gorm.Config{Logger: gormLogger})
		if err != nil {
			return
		}

		// sqlite is dynamically typed, auto migration is enough
		err = self.WithContext(ctx).AutoMigrate(&WorkflowEvent{})
		if err != nil {
			return
		}
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s application_name=%s/hashhedge/%s",
			journalConfig.Host,
			journalConfig.Port,
			journalConfig.User,
			journalConfig.Password,
			journalConfig.Name,
			journalConfig.SslMode,
			applicationName,
			build_info.Version,
		)

		self, err = gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger})
		if err != nil {
			return
		}

		db, e := self.DB()
		if e != nil {
			err = e
			return
		}
		db.SetMaxOpenConns(journalConfig.MaxOpenConns)
		db.SetMaxIdleConns(journalConfig.MaxIdleConns)
		db.SetConnMaxLifetime(journalConfig.ConnMaxLifetime)

		var applied int
		applied, err = migrate.Exec(db, "postgres", journalMigrations, migrate.Up)
		if err != nil {
			log.WithError(err).Error("Failed to run journal migrations")
			return
		}
		if applied > 0 {
			log.WithField("applied", applied).Info("Journal migrations applied")
		}
	default:
		err = fmt.Errorf("unknown journal driver: %s", journalConfig.Driver)
	}

	return
}
