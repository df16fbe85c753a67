package model

// All lists every model migrated at startup, in dependency order.
func All() []any {
	return []any{
		&UserModel{},
		&RefreshTokenModel{},
		&EmailVerificationTokenModel{},
		&RecordModel{},
		&BudgetSettingsModel{},
		&SettingsHistoryModel{},
		&EmailQueueModel{},
	}
}
