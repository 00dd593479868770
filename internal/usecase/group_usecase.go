package usecase

import (
	"context"
	"net/http"
	"strings"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"
)

// GroupUsecase はManager / Delivery Crewグループの出し入れ。
// ルート自体はManagerガードの後ろにある。
type GroupUsecase struct {
	userRepo repo.UserRepository
}

func NewGroupUsecase(userRepo repo.UserRepository) *GroupUsecase {
	return &GroupUsecase{userRepo: userRepo}
}

type UserOutput struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type AddMemberInput struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
}

type AddMemberResult struct {
	User    UserOutput
	Created bool //userを新規作成したかどうか
}

func (u *GroupUsecase) ListMembers(ctx context.Context, groupName string) ([]UserOutput, error) {
	users, err := u.userRepo.ListByGroup(ctx, groupName)
	if err != nil {
		return []UserOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]UserOutput, 0, len(users))
	for _, usr := range users {
		outs = append(outs, toUserOutput(&usr))
	}
	return outs, nil
}

// AddMember はusernameのユーザーをグループへ入れる。
// 居なければユーザーを作ってから入れる（sourceのadd-or-create）。
func (u *GroupUsecase) AddMember(ctx context.Context, groupName string, in AddMemberInput) (AddMemberResult, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return AddMemberResult{}, NewValidationError(map[string]string{"username": "must not be empty"})
	}

	existing, err := u.userRepo.FindByUsername(ctx, username)
	if err != nil && err != repo.ErrNotFound {
		return AddMemberResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if existing != nil {
		if err := u.userRepo.AddToGroup(ctx, existing.ID, groupName); err != nil {
			return AddMemberResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return AddMemberResult{User: toUserOutput(existing), Created: false}, nil
	}

	//新規作成してから所属させる
	user := &model.User{
		Username:  username,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.TrimSpace(in.Email),
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		if err == repo.ErrConflict {
			return AddMemberResult{}, NewHTTPError(http.StatusConflict, "user already exists")
		}
		return AddMemberResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if err := u.userRepo.AddToGroup(ctx, user.ID, groupName); err != nil {
		return AddMemberResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return AddMemberResult{User: toUserOutput(user), Created: true}, nil
}

// RemoveMember は所属を外す。元々所属していなくてもエラーにしない。
// ユーザー自体が居ないときだけ404。
func (u *GroupUsecase) RemoveMember(ctx context.Context, groupName string, userID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if _, err := u.userRepo.FindByID(ctx, userID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.userRepo.RemoveFromGroup(ctx, userID, groupName); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func toUserOutput(u *model.User) UserOutput {
	return UserOutput{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}
