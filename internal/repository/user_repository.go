package repository

import (
	"context"

	"restaurant/internal/domain/model"
)

// 保存・取得を約束
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	// Groupsを含めて1件取得する。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// グループ名で所属ユーザーを一覧
	ListByGroup(ctx context.Context, groupName string) ([]model.User, error)
	// グループへ追加（既に所属していれば何もしない）
	AddToGroup(ctx context.Context, userID int64, groupName string) error
	// グループから外す（所属していなくてもエラーにしない）
	RemoveFromGroup(ctx context.Context, userID int64, groupName string) error
}
