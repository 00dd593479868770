package handler

import (
	"net/http"
	"strconv"

	"restaurant/internal/config"
	"restaurant/internal/domain/model"
	"restaurant/internal/middleware"
	"restaurant/internal/repository"
	"restaurant/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /groups配下のHTTP（メンバー管理はManager限定）
type GroupHandler struct {
	uc *usecase.GroupUsecase
}

func NewGroupHandler(uc *usecase.GroupUsecase) *GroupHandler {
	return &GroupHandler{uc: uc}
}

type AddMemberRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func (h *GroupHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/groups")
	g.Use(middleware.AuthJWT(cfg, userRepo))
	g.Use(middleware.ManagerGuard())

	g.GET("/manager/users", h.listMembers(model.GroupManager))
	g.POST("/manager/users", h.addMember(model.GroupManager))
	g.DELETE("/manager/users/:id", h.removeMember(model.GroupManager))

	g.GET("/delivery-crew/users", h.listMembers(model.GroupDeliveryCrew))
	g.POST("/delivery-crew/users", h.addMember(model.GroupDeliveryCrew))
	g.DELETE("/delivery-crew/users/:id", h.removeMember(model.GroupDeliveryCrew))
}

func (h *GroupHandler) listMembers(groupName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		out, err := h.uc.ListMembers(c.Request().Context(), groupName)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, out)
	}
}

func (h *GroupHandler) addMember(groupName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req AddMemberRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
		}

		result, err := h.uc.AddMember(c.Request().Context(), groupName, usecase.AddMemberInput{
			Username:  req.Username,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
		})
		if err != nil {
			return writeError(c, err)
		}

		//新規作成したときは201でユーザーを返す
		if result.Created {
			return c.JSON(http.StatusCreated, result.User)
		}
		return c.JSON(http.StatusOK, SuccessResponse{Message: "added to " + groupName + " group"})
	}
}

func (h *GroupHandler) removeMember(groupName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
		}

		if err := h.uc.RemoveMember(c.Request().Context(), groupName, id); err != nil {
			return writeError(c, err)
		}

		return c.JSON(http.StatusOK, SuccessResponse{Message: "removed from " + groupName + " group"})
	}
}
