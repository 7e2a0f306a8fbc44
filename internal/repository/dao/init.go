package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Event{},
		&EventPlayer{},
		&EventInvite{},
		&EventWinner{},
		&Table{},
		&SeatReservation{},
		&Group{},
		&GroupMember{},
		&GroupInvite{},
	)
}
