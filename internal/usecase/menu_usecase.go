package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"
)

type HTTPError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

// フィールド単位のエラーを付けた400
func NewValidationError(fields map[string]string) error {
	return &HTTPError{
		Status:  http.StatusBadRequest,
		Message: "validation error",
		Fields:  fields,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 呼び出しユーザー。ロールはリクエストごとに1回だけDBの所属から解決し、
// 以降はこの値を明示的に引き回す。
type Caller struct {
	UserID         int64
	IsManager      bool
	IsDeliveryCrew bool
}

func (c Caller) IsCustomer() bool {
	return !c.IsManager && !c.IsDeliveryCrew
}

type MenuUsecase struct {
	menuRepo     repo.MenuItemRepository
	categoryRepo repo.CategoryRepository
}

// DI
func NewMenuUsecase(menuRepo repo.MenuItemRepository, categoryRepo repo.CategoryRepository) *MenuUsecase {
	return &MenuUsecase{
		menuRepo:     menuRepo,
		categoryRepo: categoryRepo,
	}
}

// GET /menu-itemsの入力DTO
type ListMenuItemsInput struct {
	Page      int
	Limit     int
	Category  string
	FromPrice *int64
	ToPrice   *int64
	Featured  *bool
	Search    string
	Sort      string
}

type MenuItemListOutput struct {
	Items []model.MenuItem `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// POST/PUTの入力
type MenuItemInput struct {
	Title      string
	Price      int64
	Featured   bool
	CategoryID int64
}

// PATCHの入力（省略されたフィールドは変更しない）
type MenuItemPatchInput struct {
	Title      *string
	Price      *int64
	Featured   *bool
	CategoryID *int64
}

func (u *MenuUsecase) ListMenuItems(ctx context.Context, in ListMenuItemsInput) (MenuItemListOutput, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 || in.Limit > 100 {
		in.Limit = 20
	}

	items, total, err := u.menuRepo.List(ctx, repo.MenuItemListQuery{
		Page:      in.Page,
		Limit:     in.Limit,
		Category:  in.Category,
		FromPrice: in.FromPrice,
		ToPrice:   in.ToPrice,
		Featured:  in.Featured,
		Search:    in.Search,
		Sort:      in.Sort,
	})
	if err != nil {
		return MenuItemListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return MenuItemListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

func (u *MenuUsecase) GetMenuItem(ctx context.Context, id int64) (model.MenuItem, error) {
	if id <= 0 {
		return model.MenuItem{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	item, err := u.menuRepo.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return model.MenuItem{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.MenuItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return item, nil
}

func (u *MenuUsecase) CreateMenuItem(ctx context.Context, in MenuItemInput) (model.MenuItem, error) {
	if err := u.validateItemInput(ctx, in); err != nil {
		return model.MenuItem{}, err
	}

	created, err := u.menuRepo.Create(ctx, model.MenuItem{
		Title:      strings.TrimSpace(in.Title),
		Price:      in.Price,
		Featured:   in.Featured,
		CategoryID: in.CategoryID,
	})
	if err == repo.ErrConflict {
		//title重複はuniqueIndexで弾かれる
		return model.MenuItem{}, NewHTTPError(http.StatusConflict, "menu item already exists")
	}
	if err != nil {
		return model.MenuItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return created, nil
}

// PUTは全フィールド必須
func (u *MenuUsecase) UpdateMenuItem(ctx context.Context, id int64, in MenuItemInput) (model.MenuItem, error) {
	if id <= 0 {
		return model.MenuItem{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := u.validateItemInput(ctx, in); err != nil {
		return model.MenuItem{}, err
	}

	item, err := u.menuRepo.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return model.MenuItem{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.MenuItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	item.Title = strings.TrimSpace(in.Title)
	item.Price = in.Price
	item.Featured = in.Featured
	item.CategoryID = in.CategoryID

	if err := u.menuRepo.Update(ctx, item); err != nil {
		if err == repo.ErrNotFound {
			return model.MenuItem{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return model.MenuItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.GetMenuItem(ctx, id)
}

// PATCHは任意のサブセット
func (u *MenuUsecase) PatchMenuItem(ctx context.Context, id int64, in MenuItemPatchInput) (model.MenuItem, error) {
	if id <= 0 {
		return model.MenuItem{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	item, err := u.menuRepo.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return model.MenuItem{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.MenuItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	fields := map[string]string{}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			fields["title"] = "must not be empty"
		} else {
			item.Title = strings.TrimSpace(*in.Title)
		}
	}
	if in.Price != nil {
		if *in.Price < 1 {
			fields["price"] = "must be greater than or equal to 1"
		} else {
			item.Price = *in.Price
		}
	}
	if in.Featured != nil {
		item.Featured = *in.Featured
	}
	if in.CategoryID != nil {
		if _, err := u.categoryRepo.FindByID(ctx, *in.CategoryID); err != nil {
			fields["category_id"] = "category does not exist"
		} else {
			item.CategoryID = *in.CategoryID
		}
	}
	if len(fields) > 0 {
		return model.MenuItem{}, NewValidationError(fields)
	}

	if err := u.menuRepo.Update(ctx, item); err != nil {
		if err == repo.ErrNotFound {
			return model.MenuItem{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return model.MenuItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.GetMenuItem(ctx, id)
}

func (u *MenuUsecase) DeleteMenuItem(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.menuRepo.DeleteByID(ctx, id)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *MenuUsecase) ListCategories(ctx context.Context) ([]model.Category, error) {
	cats, err := u.categoryRepo.ListAll(ctx)
	if err != nil {
		return []model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return cats, nil
}

type CategoryInput struct {
	Slug  string
	Title string
}

func (u *MenuUsecase) CreateCategory(ctx context.Context, in CategoryInput) (model.Category, error) {
	fields := map[string]string{}
	if strings.TrimSpace(in.Slug) == "" {
		fields["slug"] = "must not be empty"
	}
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "must not be empty"
	}
	if len(fields) > 0 {
		return model.Category{}, NewValidationError(fields)
	}

	created, err := u.categoryRepo.Create(ctx, model.Category{
		Slug:  strings.TrimSpace(in.Slug),
		Title: strings.TrimSpace(in.Title),
	})
	if err == repo.ErrConflict {
		//slug/title重複
		return model.Category{}, NewHTTPError(http.StatusConflict, "category already exists")
	}
	if err != nil {
		return model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

func (u *MenuUsecase) validateItemInput(ctx context.Context, in MenuItemInput) error {
	fields := map[string]string{}
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "must not be empty"
	}
	if in.Price < 1 {
		fields["price"] = "must be greater than or equal to 1"
	}
	if in.CategoryID < 1 {
		fields["category_id"] = "must be greater than or equal to 1"
	} else if _, err := u.categoryRepo.FindByID(ctx, in.CategoryID); err != nil {
		fields["category_id"] = "category does not exist"
	}

	if len(fields) > 0 {
		return NewValidationError(fields)
	}
	return nil
}
