package database

import (
	"log/slog"
	"time"

	"subcycle/internal/billing"
	"subcycle/internal/models"

	"gorm.io/gorm"
)

// RunMigrations creates the schema and runs the idempotent data migrations.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Category{}, &models.Subscription{}); err != nil {
		return err
	}

	migrations := []func(*gorm.DB) error{
		migrateDefaultCategory,
		migrateLegacySchedules,
		migratePreservedBillingDay,
	}

	for _, migration := range migrations {
		if err := migration(db); err != nil {
			return err
		}
	}
	return nil
}

// migrateDefaultCategory creates the default category if none exists
func migrateDefaultCategory(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Category{}).Where("is_default = ?", true).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(&models.Category{Name: "General", IsDefault: true}).Error
}

// legacySchedules maps the old fixed schedule names to billing cycles.
var legacySchedules = map[string]billing.Cycle{
	"Daily":     {Value: 1, Unit: billing.UnitDay},
	"Weekly":    {Value: 7, Unit: billing.UnitDay},
	"Monthly":   {Value: 1, Unit: billing.UnitMonth},
	"Quarterly": {Value: 3, Unit: billing.UnitMonth},
	"Annual":    {Value: 1, Unit: billing.UnitYear},
}

// migrateLegacySchedules converts the old schedule column into billing_value/billing_unit.
// Converted rows have their schedule cleared so later edits are not overwritten.
func migrateLegacySchedules(db *gorm.DB) error {
	var count int64
	if err := db.Raw("SELECT COUNT(*) FROM pragma_table_info('subscriptions') WHERE name='schedule'").Scan(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	for schedule, cycle := range legacySchedules {
		result := db.Exec(
			"UPDATE subscriptions SET billing_value = ?, billing_unit = ?, schedule = '' WHERE schedule = ?",
			cycle.Value, cycle.Unit, schedule,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			slog.Info("migrated legacy schedule", "schedule", schedule, "cycle", cycle.String(), "rows", result.RowsAffected)
		}
	}
	return nil
}

// migratePreservedBillingDay fills preserved_billing_day for rows created before it was
// stored, using the first billing date or, failing that, the next renewal date.
func migratePreservedBillingDay(db *gorm.DB) error {
	type legacyRow struct {
		ID               uint
		FirstBillingDate time.Time
		NextRenewal      *time.Time
	}

	var rows []legacyRow
	err := db.Model(&models.Subscription{}).
		Select("id, first_billing_date, next_renewal").
		Where("preserved_billing_day IS NULL").
		Scan(&rows).Error
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	slog.Info("running migration: backfilling preserved billing day", "rows", len(rows))

	for _, row := range rows {
		anchor := row.FirstBillingDate
		if anchor.IsZero() {
			if row.NextRenewal == nil {
				continue
			}
			anchor = *row.NextRenewal
		}

		day := billing.ResolvePreservedDay(nil, anchor)
		if err := db.Model(&models.Subscription{}).Where("id = ?", row.ID).Update("preserved_billing_day", day).Error; err != nil {
			slog.Warn("could not backfill preserved billing day", "id", row.ID, "error", err)
		}
	}

	slog.Info("migration completed: preserved billing day backfilled")
	return nil
}
