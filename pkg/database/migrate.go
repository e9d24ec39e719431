package database

import (
	"log"
	"time"

	"gorm.io/gorm"
)

// SchemaMigration records which data migrations have already run. Versions
// are monotonically increasing and applied exactly once, in order, at
// startup, after AutoMigrate has settled the table shapes.
type SchemaMigration struct {
	Version   int       `gorm:"primaryKey"`
	Name      string    `gorm:"type:varchar(255);not null"`
	AppliedAt time.Time `gorm:"not null"`
}

type migration struct {
	version int
	name    string
	run     func(tx *gorm.DB) error
}

// migrations holds one-time data fixes. Append only; never renumber.
var migrations = []migration{
	{
		version: 1,
		name:    "ensure single app_state row",
		run: func(tx *gorm.DB) error {
			return tx.Exec(`INSERT INTO app_state (id, updated_at) VALUES (1, NOW())
				ON CONFLICT (id) DO NOTHING`).Error
		},
	},
	{
		version: 2,
		name:    "backfill units_per_pack on legacy drugs",
		run: func(tx *gorm.DB) error {
			return tx.Exec(`UPDATE drugs SET units_per_pack = 1
				WHERE units_per_pack IS NULL OR units_per_pack < 1`).Error
		},
	},
	{
		version: 3,
		name:    "backfill net_total on sales without returns",
		run: func(tx *gorm.DB) error {
			return tx.Exec(`UPDATE sales SET net_total = total
				WHERE net_total = 0 AND total <> 0
				AND id NOT IN (SELECT sale_id FROM returns)`).Error
		},
	},
}

// RunMigrations applies every pending data migration inside its own
// transaction. Each run takes a snapshot row first, so a failed step leaves
// the ledger pointing at the last version that fully applied.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&SchemaMigration{}); err != nil {
		return err
	}

	var current int
	db.Model(&SchemaMigration{}).Select("COALESCE(MAX(version), 0)").Scan(&current)

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.run(tx); err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{
				Version:   m.version,
				Name:      m.name,
				AppliedAt: time.Now(),
			}).Error
		})
		if err != nil {
			return err
		}
		log.Printf("applied schema migration %d: %s", m.version, m.name)
	}

	return nil
}
