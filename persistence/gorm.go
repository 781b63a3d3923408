package persistence

import (
	"fmt"

	"github.com/huddlechat/huddle/config"
	"github.com/huddlechat/huddle/types"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// GormBackend stores the snapshots in a relational database. The whole
// collection is still the unit of persistence: a save truncates the table
// and rewrites every record inside one transaction.
type GormBackend struct {
	db *gorm.DB
}

func NewGormBackend(cfg *config.Config) (*GormBackend, error) {
	db, err := setupGormDB(cfg)
	if err != nil {
		return nil, err
	}
	return &GormBackend{db: db}, nil
}

func setupGormDB(cfg *config.Config) (*gorm.DB, error) {
	if cfg.PersistenceConfig.DSN == "" {
		return nil, fmt.Errorf("no DSN configured")
	}
	var dial gorm.Dialector
	switch cfg.PersistenceConfig.Type {
	case "postgres":
		dial = postgres.Open(cfg.PersistenceConfig.DSN)

	case "sqlite":
		dial = sqlite.Open(cfg.PersistenceConfig.DSN)

	default:
		return nil, fmt.Errorf("invalid gorm configuration")
	}
	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	err = db.Migrator().AutoMigrate(&types.User{}, &types.Group{})
	if err != nil {
		return nil, err
	}
	return db, nil
}

func (b *GormBackend) LoadUsers() ([]*types.User, error) {
	users := make([]*types.User, 0)
	err := b.db.Find(&users).Error
	return users, err
}

func (b *GormBackend) SaveUsers(users []*types.User) error {
	return b.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&types.User{}).Error
		if err != nil {
			return err
		}
		if len(users) == 0 {
			return nil
		}
		return tx.Create(&users).Error
	})
}

func (b *GormBackend) LoadGroups() ([]*types.Group, error) {
	groups := make([]*types.Group, 0)
	err := b.db.Find(&groups).Error
	return groups, err
}

func (b *GormBackend) SaveGroups(groups []*types.Group) error {
	return b.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&types.Group{}).Error
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			return nil
		}
		return tx.Create(&groups).Error
	})
}

func (b *GormBackend) Close() error { return nil }
