package domain

// Models lists everything AutoMigrate must create, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Video{},
		&Subscription{},
		&WatchHistory{},
	}
}
