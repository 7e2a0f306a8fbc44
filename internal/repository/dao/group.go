package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrGroupNotFound = errors.New("group not found")

type Group struct {
	ID uint `gorm:"primaryKey"`

	Name        string `gorm:"not null"`
	Description string
	OwnerID     uint `gorm:"not null;index"`

	Members []GroupMember `gorm:"foreignKey:GroupID"`
	Invites []GroupInvite `gorm:"foreignKey:GroupID"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type GroupMember struct {
	GroupID uint `gorm:"primaryKey;autoIncrement:false"`
	UserID  uint `gorm:"primaryKey;autoIncrement:false"`
}

type GroupInvite struct {
	GroupID uint   `gorm:"primaryKey;autoIncrement:false"`
	Email   string `gorm:"primaryKey"`
}

type GroupDAO struct {
	db *gorm.DB
}

func NewGroupDAO(db *gorm.DB) *GroupDAO {
	return &GroupDAO{
		db: db,
	}
}

func (d *GroupDAO) Insert(ctx context.Context, group Group) (Group, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&group).Error; err != nil {
			return err
		}

		return tx.Create(&GroupMember{GroupID: group.ID, UserID: group.OwnerID}).Error
	})
	if err != nil {
		return Group{}, err
	}

	return d.FindByID(ctx, group.ID)
}

func (d *GroupDAO) FindByID(ctx context.Context, id uint) (Group, error) {
	var group Group

	result := d.db.WithContext(ctx).
		Preload("Members").
		Preload("Invites").
		First(&group, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Group{}, ErrGroupNotFound
		}

		return Group{}, result.Error
	}

	return group, nil
}

func (d *GroupDAO) FindByMember(ctx context.Context, userID uint) ([]Group, error) {
	var groups []Group

	result := d.db.WithContext(ctx).
		Joins("JOIN group_members gm ON gm.group_id = groups.id").
		Where("gm.user_id = ?", userID).
		Preload("Members").
		Preload("Invites").
		Find(&groups)
	if result.Error != nil {
		return nil, result.Error
	}

	return groups, nil
}

func (d *GroupDAO) AddInvite(ctx context.Context, groupID uint, email string) error {
	return d.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&GroupInvite{GroupID: groupID, Email: email}).Error
}

func (d *GroupDAO) RemoveInvite(ctx context.Context, groupID uint, email string) error {
	return d.db.WithContext(ctx).
		Where("group_id = ? AND email = ?", groupID, email).
		Delete(&GroupInvite{}).Error
}

// AddMember converts an invitation into a membership in one transaction.
func (d *GroupDAO) AddMember(ctx context.Context, groupID, userID uint, email string) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&GroupMember{GroupID: groupID, UserID: userID}).Error
		if err != nil {
			return err
		}

		return tx.Where("group_id = ? AND email = ?", groupID, email).
			Delete(&GroupInvite{}).Error
	})
}

func (d *GroupDAO) RemoveMember(ctx context.Context, groupID, userID uint) error {
	return d.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&GroupMember{}).Error
}
