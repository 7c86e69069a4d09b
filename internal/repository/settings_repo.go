package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"nutricare/internal/domain"
)

// SettingsRepository persiste las preferencias por usuario.
type SettingsRepository interface {
	Get(ctx context.Context, userID string) (domain.UserSettings, error)
	Upsert(ctx context.Context, userID string, settings domain.UserSettings) error
}

type PgSettingsRepository struct {
	pool *pgxpool.Pool
}

func NewPgSettingsRepository(pool *pgxpool.Pool) *PgSettingsRepository {
	return &PgSettingsRepository{pool: pool}
}

func (r *PgSettingsRepository) Get(ctx context.Context, userID string) (domain.UserSettings, error) {
	const query = `
		SELECT dark_mode, notifications_enabled, medicine_reminder, reminder_time
		FROM user_settings
		WHERE user_id = $1
	`
	var s domain.UserSettings
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&s.DarkMode,
		&s.Notifications.Enabled,
		&s.Notifications.MedicineReminder,
		&s.Notifications.Time,
	)
	return s, err
}

func (r *PgSettingsRepository) Upsert(ctx context.Context, userID string, settings domain.UserSettings) error {
	const query = `
		INSERT INTO user_settings (user_id, dark_mode, notifications_enabled, medicine_reminder, reminder_time)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET dark_mode = EXCLUDED.dark_mode,
			notifications_enabled = EXCLUDED.notifications_enabled,
			medicine_reminder = EXCLUDED.medicine_reminder,
			reminder_time = EXCLUDED.reminder_time
	`
	_, err := r.pool.Exec(ctx, query,
		userID,
		settings.DarkMode,
		settings.Notifications.Enabled,
		settings.Notifications.MedicineReminder,
		settings.Notifications.Time,
	)
	return err
}
