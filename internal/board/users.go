package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"fitreport/internal/account"
	"fitreport/internal/client"
	"fitreport/internal/database"
	"fitreport/internal/listview"
)

var (
	// ErrRepresentativeProtected is returned when deactivating or deleting a level-1 account.
	ErrRepresentativeProtected = errors.New("대표 계정은 변경하거나 삭제할 수 없습니다")
	ErrUserNotFound            = errors.New("사용자를 찾을 수 없습니다")
	ErrUserIDTaken             = errors.New("이미 사용 중인 아이디입니다")
)

// FormError carries the per-field messages of a rejected form.
type FormError struct {
	Fields account.FieldErrors
}

func (e *FormError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return strings.Join(parts, ", ")
}

// UserAPI is the part of the API the user board needs. *client.Client implements it.
type UserAPI interface {
	ListUsers(ctx context.Context) ([]database.User, error)
	ListPositions(ctx context.Context) ([]database.Position, error)
	CreateUser(ctx context.Context, u client.NewUser) (*database.User, error)
	UpdateUser(ctx context.Context, id uint, values map[string]any) error
	DeleteUser(ctx context.Context, id uint) error
	CheckDuplicate(ctx context.Context, userID string) (bool, error)
}

// Users is the staff list as the operator sees it.
type Users struct {
	api       UserAPI
	logger    *slog.Logger
	items     []database.User
	positions []database.Position
}

func NewUsers(api UserAPI, logger *slog.Logger) *Users {
	if logger == nil {
		logger = slog.Default()
	}
	return &Users{api: api, logger: logger}
}

// Load fetches users and positions.
func (b *Users) Load(ctx context.Context) error {
	users, err := b.api.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	positions, err := b.api.ListPositions(ctx)
	if err != nil {
		return fmt.Errorf("load positions: %w", err)
	}
	b.items, b.positions = users, positions
	return nil
}

func (b *Users) Items() []database.User {
	return slices.Clone(b.items)
}

func (b *Users) Positions() []database.Position {
	return slices.Clone(b.positions)
}

// PositionByName resolves a position name (e.g. 부장) to its id.
func (b *Users) PositionByName(name string) (database.Position, bool) {
	i := slices.IndexFunc(b.positions, func(p database.Position) bool { return p.Name == name })
	if i < 0 {
		return database.Position{}, false
	}
	return b.positions[i], true
}

func (b *Users) Get(id uint) (database.User, bool) {
	i := b.index(id)
	if i < 0 {
		return database.User{}, false
	}
	return b.items[i], true
}

func (b *Users) index(id uint) int {
	return slices.IndexFunc(b.items, func(u database.User) bool { return u.ID == id })
}

func (b *Users) find(id uint) (int, error) {
	i := b.index(id)
	if i < 0 {
		return -1, fmt.Errorf("%w: %d", ErrUserNotFound, id)
	}
	return i, nil
}

// Create validates form, checks the user id is free and creates the account. The list is
// reloaded afterwards so the new row shows its position.
func (b *Users) Create(ctx context.Context, form account.NewUserForm) (*database.User, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, &FormError{Fields: errs}
	}
	taken, err := b.api.CheckDuplicate(ctx, form.UserID)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if taken {
		return nil, ErrUserIDTaken
	}

	created, err := b.api.CreateUser(ctx, client.NewUser{
		UserID:        form.UserID,
		Password:      form.Password,
		Name:          strings.TrimSpace(form.Name),
		PositionID:    form.PositionID,
		Phone:         form.Phone,
		EmailDisplay:  form.EmailDisplay,
		Address:       form.Address,
		AddressDetail: form.AddressDetail,
		CompanyName:   form.CompanyName,
		Status:        database.UserStatusActive,
	})
	if err != nil {
		return nil, err
	}
	b.logger.Info("user created", slog.String("user_id", created.UserID))
	if err := b.Load(ctx); err != nil {
		b.logger.Warn("reload users failed", slog.Any("error", err))
	}
	return created, nil
}

// Edit writes the given columns of user id and reloads the list.
func (b *Users) Edit(ctx context.Context, id uint, values map[string]any) error {
	if _, err := b.find(id); err != nil {
		return err
	}
	if phone, ok := values["phone"].(string); ok {
		values["phone"] = account.FormatPhone(phone)
	}
	if err := b.api.UpdateUser(ctx, id, values); err != nil {
		return err
	}
	return b.Load(ctx)
}

// Toggle flips active and inactive. Representatives cannot be toggled.
func (b *Users) Toggle(ctx context.Context, id uint) (string, error) {
	i, err := b.find(id)
	if err != nil {
		return "", err
	}
	u := b.items[i]
	if u.IsRepresentative() {
		return "", ErrRepresentativeProtected
	}

	next := database.UserStatusInactive
	if u.Status != database.UserStatusActive {
		next = database.UserStatusActive
	}
	if err := b.api.UpdateUser(ctx, id, map[string]any{"status": next}); err != nil {
		return "", err
	}
	b.items[i].Status = next
	return next, nil
}

// Delete removes one user. Representatives are refused without calling the API.
func (b *Users) Delete(ctx context.Context, id uint) error {
	i, err := b.find(id)
	if err != nil {
		return err
	}
	if b.items[i].IsRepresentative() {
		return ErrRepresentativeProtected
	}
	if err := b.api.DeleteUser(ctx, id); err != nil {
		return err
	}
	b.items = slices.Delete(b.items, i, i+1)
	return nil
}

// DeleteResult reports a bulk delete.
type DeleteResult struct {
	Deleted []uint
	// Skipped holds representatives, which are never deleted.
	Skipped []uint
}

// DeleteMany deletes every id except representatives. It stops at the first API failure.
func (b *Users) DeleteMany(ctx context.Context, ids []uint) (DeleteResult, error) {
	var res DeleteResult
	for _, id := range ids {
		err := b.Delete(ctx, id)
		switch {
		case errors.Is(err, ErrRepresentativeProtected):
			res.Skipped = append(res.Skipped, id)
		case err != nil:
			return res, err
		default:
			res.Deleted = append(res.Deleted, id)
		}
	}
	return res, nil
}

// UserQuery selects a page of the user list.
type UserQuery struct {
	Search     string
	Status     string
	PositionID uint
	SortBy     string
	Desc       bool
	Page       int
	PageSize   int
}

func positionName(u database.User) string {
	if u.Position == nil {
		return ""
	}
	return u.Position.Name
}

var userSearchFields = []func(database.User) string{
	func(u database.User) string { return u.UserID },
	func(u database.User) string { return u.Name },
	positionName,
	func(u database.User) string { return u.Phone },
	func(u database.User) string { return u.EmailDisplay },
	func(u database.User) string { return u.Address },
	func(u database.User) string { return u.AddressDetail },
	func(u database.User) string { return u.CompanyName },
}

// missingLevel sorts users without a position after everyone else.
const missingLevel = 999

// UserSortColumns are the accepted UserQuery.SortBy values.
var UserSortColumns = map[string]listview.Compare[database.User]{
	"user_id": listview.ByString(func(u database.User) string { return u.UserID }),
	"name":    listview.ByString(func(u database.User) string { return u.Name }),
	"position": listview.ByNumber(func(u database.User) (int, bool) {
		if u.Position == nil {
			return 0, false
		}
		return u.Position.Level, true
	}, missingLevel),
	"company":    listview.ByString(func(u database.User) string { return u.CompanyName }),
	"status":     listview.ByString(func(u database.User) string { return u.Status }),
	"created_at": func(a, b database.User) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

func (b *Users) List(q UserQuery) listview.Page[database.User] {
	spec := listview.Spec[database.User]{
		Query:        q.Search,
		SearchFields: userSearchFields,
		Sort:         UserSortColumns[q.SortBy],
		Desc:         q.Desc,
		Page:         q.Page,
		PageSize:     q.PageSize,
	}
	if q.Status != "" {
		spec.Filters = append(spec.Filters, func(u database.User) bool { return u.Status == q.Status })
	}
	if q.PositionID != 0 {
		spec.Filters = append(spec.Filters, func(u database.User) bool {
			return u.PositionID != nil && *u.PositionID == q.PositionID
		})
	}
	return listview.Apply(b.items, spec)
}
