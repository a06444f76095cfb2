package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"fitreport/internal/account"
	"fitreport/internal/api/middleware"
	"fitreport/internal/database"
	"fitreport/internal/datastore"
)

var userListColumns = []string{
	"id", "user_id", "name", "position_id", "status", "phone", "email_display",
	"address", "address_detail", "company_name", "created_at",
}

var positionColumns = []string{"id", "name", "level"}

// UserHandler serves staff account CRUD and statistics.
type UserHandler struct {
	users datastore.Table[database.User]
}

// NewUserHandler returns a UserHandler backed by store.
func NewUserHandler(store *datastore.Client) *UserHandler {
	return &UserHandler{users: datastore.From[database.User](store)}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, msgInvalidID)
		return 0, false
	}
	return uint(id), true
}

// List returns every user with its position, grouped by position then newest first.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.Select(c.Request.Context(), datastore.Query{
		Columns: userListColumns,
		Orders:  []datastore.Order{datastore.Asc("position_id"), datastore.Desc("created_at")},
		Preload: map[string][]string{"Position": positionColumns},
	})
	if err != nil {
		middleware.LoggerFromContext(c).Error("list users failed", slog.Any("error", err))
		Internal(c, msgUserListFailed)
		return
	}
	c.JSON(http.StatusOK, users)
}

type createUserRequest struct {
	UserID        string `json:"user_id" binding:"required,userid"`
	Password      string `json:"password" binding:"required,nohangul"`
	Name          string `json:"name" binding:"required,personname"`
	PositionID    uint   `json:"position_id" binding:"required"`
	Phone         string `json:"phone" binding:"omitempty,phone"`
	EmailDisplay  string `json:"email_display" binding:"omitempty,emailaddr"`
	Address       string `json:"address" binding:"max=255"`
	AddressDetail string `json:"address_detail" binding:"max=255"`
	CompanyName   string `json:"company_name" binding:"omitempty,companyname"`
	Status        string `json:"status" binding:"omitempty,oneof=active inactive"`
}

// Create adds an account. A taken user_id yields 409.
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, validationMessage(err))
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c).With(slog.String("user_id", req.UserID))

	exists, err := h.users.Exists(ctx, datastore.Eq("user_id", req.UserID))
	if err != nil {
		logger.Error("duplicate lookup failed", slog.Any("error", err))
		Internal(c, msgUserCreateFailed)
		return
	}
	if exists {
		logger.Info("create user conflict")
		Conflict(c, msgUserDuplicate)
		return
	}

	status := req.Status
	if status == "" {
		status = database.UserStatusActive
	}
	positionID := req.PositionID
	user := database.User{
		UserID:        req.UserID,
		Name:          strings.TrimSpace(req.Name),
		PositionID:    &positionID,
		Password:      req.Password,
		Phone:         req.Phone,
		EmailDisplay:  req.EmailDisplay,
		Address:       req.Address,
		AddressDetail: req.AddressDetail,
		CompanyName:   req.CompanyName,
		Status:        status,
	}
	if err := h.users.Insert(ctx, &user); err != nil {
		if errors.Is(err, datastore.ErrDuplicate) {
			Conflict(c, msgUserDuplicate)
			return
		}
		logger.Error("create user failed", slog.Any("error", err))
		Internal(c, msgUserCreateFailed)
		return
	}

	created, err := h.users.First(ctx, datastore.Query{
		Columns: userListColumns,
		Filters: []datastore.Filter{datastore.Eq("id", user.ID)},
		Preload: map[string][]string{"Position": positionColumns},
	})
	if err != nil {
		logger.Error("reload created user failed", slog.Any("error", err))
		created = &user
	}

	logger.Info("user created", slog.Uint64("id", uint64(user.ID)))
	c.JSON(http.StatusCreated, gin.H{"message": msgUserCreated, "data": created})
}

type updateUserRequest struct {
	Name          *string `json:"name" binding:"omitempty,personname"`
	PositionID    *uint   `json:"position_id" binding:"omitempty,gt=0"`
	Password      *string `json:"password" binding:"omitempty,nohangul"`
	Phone         *string `json:"phone" binding:"omitempty,phone"`
	EmailDisplay  *string `json:"email_display" binding:"omitempty,emailaddr"`
	Address       *string `json:"address" binding:"omitempty,max=255"`
	AddressDetail *string `json:"address_detail" binding:"omitempty,max=255"`
	CompanyName   *string `json:"company_name" binding:"omitempty,companyname"`
	Status        *string `json:"status" binding:"omitempty,oneof=active inactive"`
}

func (r updateUserRequest) values() map[string]any {
	values := map[string]any{}
	set := func(column string, v *string) {
		if v != nil {
			values[column] = *v
		}
	}
	set("name", r.Name)
	set("password", r.Password)
	set("phone", r.Phone)
	set("email_display", r.EmailDisplay)
	set("address", r.Address)
	set("address_detail", r.AddressDetail)
	set("company_name", r.CompanyName)
	set("status", r.Status)
	if r.PositionID != nil {
		values["position_id"] = *r.PositionID
	}
	return values
}

// Update applies a partial update. A body holding only status is a status toggle.
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, validationMessage(err))
		return
	}
	values := req.values()
	if len(values) == 0 {
		BadRequest(c, msgNothingToUpdate)
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c).With(slog.Uint64("id", uint64(id)))

	updated, err := h.users.Update(ctx, values, datastore.Eq("id", id))
	if err == nil && len(updated) == 0 {
		err = datastore.ErrNotFound
	}
	if err != nil {
		logger.Error("update user failed", slog.Any("error", err))
		Internal(c, msgUserUpdateFailed)
		return
	}

	user, err := h.users.First(ctx, datastore.Query{
		Columns: userListColumns,
		Filters: []datastore.Filter{datastore.Eq("id", id)},
		Preload: map[string][]string{"Position": positionColumns},
	})
	if err != nil {
		logger.Error("reload updated user failed", slog.Any("error", err))
		Internal(c, msgUserUpdateFailed)
		return
	}

	message := msgUserUpdated
	if _, statusOnly := values["status"]; statusOnly && len(values) == 1 {
		message = msgUserStatusChanged
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "data": user})
}

// Delete removes one user. Representative protection is the console's job.
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	deleted, err := h.users.Delete(c.Request.Context(), datastore.Eq("id", id))
	if err != nil {
		middleware.LoggerFromContext(c).Error("delete user failed", slog.Uint64("id", uint64(id)), slog.Any("error", err))
		Internal(c, msgUserDeleteFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgUserDeleted, "data": deleted})
}

// CheckDuplicate reports whether ?user_id= is taken.
func (h *UserHandler) CheckDuplicate(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		BadRequest(c, account.MsgUserIDRequired)
		return
	}
	exists, err := h.users.Exists(c.Request.Context(), datastore.Eq("user_id", userID))
	if err != nil {
		middleware.LoggerFromContext(c).Error("check duplicate failed", slog.Any("error", err))
		Internal(c, msgDuplicateCheckFail)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

// UserStats is the body of GET /api/users/stats.
type UserStats struct {
	Total      int            `json:"total"`
	ByStatus   StatusCounts   `json:"byStatus"`
	ByPosition map[string]int `json:"byPosition"`
	ByCompany  map[string]int `json:"byCompany"`
}

// StatusCounts splits users into active and everything else.
type StatusCounts struct {
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// ComputeUserStats aggregates users. Missing position or company names count as 미지정.
func ComputeUserStats(users []database.User) UserStats {
	stats := UserStats{
		Total:      len(users),
		ByPosition: map[string]int{},
		ByCompany:  map[string]int{},
	}
	for _, u := range users {
		if u.Status == database.UserStatusActive {
			stats.ByStatus.Active++
		} else {
			stats.ByStatus.Inactive++
		}

		position := msgUnassigned
		if u.Position != nil && u.Position.Name != "" {
			position = u.Position.Name
		}
		stats.ByPosition[position]++

		company := strings.TrimSpace(u.CompanyName)
		if company == "" {
			company = msgUnassigned
		}
		stats.ByCompany[company]++
	}
	return stats
}

// Stats returns head counts by status, position and company.
func (h *UserHandler) Stats(c *gin.Context) {
	users, err := h.users.Select(c.Request.Context(), datastore.Query{
		Columns: []string{"id", "status", "position_id", "company_name"},
		Preload: map[string][]string{"Position": positionColumns},
	})
	if err != nil {
		middleware.LoggerFromContext(c).Error("user stats failed", slog.Any("error", err))
		Internal(c, msgStatsFailed)
		return
	}
	c.JSON(http.StatusOK, ComputeUserStats(users))
}
