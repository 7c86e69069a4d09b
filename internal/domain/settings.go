package domain

type NotificationSettings struct {
	Enabled          bool   `json:"enabled"`
	MedicineReminder bool   `json:"medicine_reminder"`
	Time             string `json:"time"`
}

// UserSettings son las preferencias persistidas por usuario.
type UserSettings struct {
	DarkMode      bool                 `json:"dark_mode"`
	Notifications NotificationSettings `json:"notifications"`
}

// DefaultSettings devuelve las preferencias iniciales de una cuenta nueva.
func DefaultSettings() UserSettings {
	return UserSettings{
		DarkMode: false,
		Notifications: NotificationSettings{
			Enabled:          false,
			MedicineReminder: false,
			Time:             "09:00",
		},
	}
}
