package repository

import (
	"context"
	"errors"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"

	"gorm.io/gorm"
)

type UserGormRepository struct {
	db *gorm.DB
}

// DI
func NewUserGormRepository(db *gorm.DB) *UserGormRepository {
	return &UserGormRepository{db: db}
}

// username重複はErrConflict
func (r *UserGormRepository) Create(ctx context.Context, user *model.User) error {
	return translateError(r.db.WithContext(ctx).Create(user).Error)
}

// Groups込みで取得（ロール判定はここでロードした所属から行う）
func (r *UserGormRepository) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Preload("Groups").First(&u, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserGormRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Preload("Groups").Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// グループ名で所属ユーザーを一覧
func (r *UserGormRepository) ListByGroup(ctx context.Context, groupName string) ([]model.User, error) {
	var users []model.User

	err := r.db.WithContext(ctx).
		Joins("join user_groups on user_groups.user_id = users.id").
		Joins("join groups on groups.id = user_groups.group_id").
		Where("groups.name = ?", groupName).
		Order("users.id asc").
		Find(&users).Error
	if err != nil {
		return []model.User{}, err
	}

	return users, nil
}

func (r *UserGormRepository) AddToGroup(ctx context.Context, userID int64, groupName string) error {
	var g model.Group
	err := r.db.WithContext(ctx).Where("name = ?", groupName).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.ErrNotFound
	}
	if err != nil {
		return err
	}

	var u model.User
	err = r.db.WithContext(ctx).First(&u, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.ErrNotFound
	}
	if err != nil {
		return err
	}

	//Appendは既所属なら何もしない
	return r.db.WithContext(ctx).Model(&u).Association("Groups").Append(&g)
}

// 所属していなくてもエラーにしない
func (r *UserGormRepository) RemoveFromGroup(ctx context.Context, userID int64, groupName string) error {
	var g model.Group
	err := r.db.WithContext(ctx).Where("name = ?", groupName).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.ErrNotFound
	}
	if err != nil {
		return err
	}

	var u model.User
	err = r.db.WithContext(ctx).First(&u, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.ErrNotFound
	}
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Model(&u).Association("Groups").Delete(&g)
}
