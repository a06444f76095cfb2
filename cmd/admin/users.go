package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"fitreport/internal/account"
	"fitreport/internal/board"
	"fitreport/internal/listview"
)

func parseIDs(args []string) ([]uint, error) {
	ids := make([]uint, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseUint(arg, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("잘못된 ID입니다: %q", arg)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func checkPageSize(n int) error {
	if slices.Contains(listview.PageSizes, n) {
		return nil
	}
	sizes := make([]string, len(listview.PageSizes))
	for i, size := range listview.PageSizes {
		sizes[i] = strconv.Itoa(size)
	}
	return fmt.Errorf("페이지당 행 수는 %s 중 하나입니다", strings.Join(sizes, ", "))
}

// loadUsers logs in from the session and loads the user board.
func (a *app) loadUsers(ctx context.Context) (*board.Users, error) {
	c, _, err := a.authedClient()
	if err != nil {
		return nil, err
	}
	b := board.NewUsers(c, a.log)
	if err := b.Load(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "manage staff accounts",
	}
	cmd.AddCommand(
		newUsersListCmd(a),
		newUsersCreateCmd(a),
		newUsersEditCmd(a),
		newUsersToggleCmd(a),
		newUsersDeleteCmd(a),
		newUsersStatsCmd(a),
	)
	return cmd
}

func newUsersListCmd(a *app) *cobra.Command {
	var q board.UserQuery
	var position string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "search, sort and page the user list",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkPageSize(q.PageSize); err != nil {
				return err
			}
			b, err := a.loadUsers(cmd.Context())
			if err != nil {
				return err
			}
			if position != "" {
				p, ok := b.PositionByName(position)
				if !ok {
					return fmt.Errorf("알 수 없는 직급: %s", position)
				}
				q.PositionID = p.ID
			}
			if _, ok := board.UserSortColumns[q.SortBy]; q.SortBy != "" && !ok {
				return fmt.Errorf("정렬 기준은 %s 중 하나입니다", strings.Join(sortKeys(board.UserSortColumns), ", "))
			}
			renderUsers(a.out, b.List(q))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&q.Search, "query", "q", "", "search text")
	f.StringVar(&q.Status, "status", "", "active | inactive")
	f.StringVar(&position, "position", "", "position name, e.g. 부장")
	f.StringVar(&q.SortBy, "sort", "", "sort column")
	f.BoolVar(&q.Desc, "desc", false, "sort descending")
	f.IntVar(&q.Page, "page", 1, "page number")
	f.IntVar(&q.PageSize, "per-page", listview.DefaultPageSize, "rows per page")
	return cmd
}

func newUsersCreateCmd(a *app) *cobra.Command {
	var form account.NewUserForm
	var position string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "create a staff account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			b, err := a.loadUsers(ctx)
			if err != nil {
				return err
			}
			if position != "" {
				p, ok := b.PositionByName(position)
				if !ok {
					return fmt.Errorf("알 수 없는 직급: %s", position)
				}
				form.PositionID = p.ID
			}
			if form.Password == "" {
				if form.Password, err = a.prompter.Input("비밀번호", true); err != nil {
					return err
				}
			}

			created, err := b.Create(ctx, form)
			var formErr *board.FormError
			if errors.As(err, &formErr) {
				for field, msg := range formErr.Fields {
					fmt.Fprintf(a.out, "  %s: %s\n", field, msg)
				}
				return errors.New("입력값을 확인해주세요")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "사용자가 생성되었습니다: %s (ID %d)\n", created.UserID, created.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&form.UserID, "user-id", "", "login id")
	f.StringVar(&form.Password, "password", "", "password (prompted when empty)")
	f.StringVar(&form.Name, "name", "", "name")
	f.StringVar(&position, "position", "", "position name")
	f.StringVar(&form.Phone, "phone", "", "phone number")
	f.StringVar(&form.EmailDisplay, "email", "", "email")
	f.StringVar(&form.Address, "address", "", "address")
	f.StringVar(&form.AddressDetail, "address-detail", "", "address detail")
	f.StringVar(&form.CompanyName, "company", "", "company name")
	return cmd
}

// editFlags maps flag names to user columns.
var editFlags = map[string]string{
	"name":           "name",
	"password":       "password",
	"phone":          "phone",
	"email":          "email_display",
	"address":        "address",
	"address-detail": "address_detail",
	"company":        "company_name",
}

func newUsersEditCmd(a *app) *cobra.Command {
	var position string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "update the given fields of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			b, err := a.loadUsers(ctx)
			if err != nil {
				return err
			}

			values := map[string]any{}
			for flag, column := range editFlags {
				if cmd.Flags().Changed(flag) {
					v, _ := cmd.Flags().GetString(flag)
					values[column] = v
				}
			}
			if name, ok := values["name"].(string); ok {
				if msg := account.CheckName(name); msg != "" {
					return errors.New(msg)
				}
			}
			if email, ok := values["email_display"].(string); ok {
				if msg := account.CheckEmail(email); msg != "" {
					return errors.New(msg)
				}
			}
			if company, ok := values["company_name"].(string); ok {
				if msg := account.CheckCompanyName(company); msg != "" {
					return errors.New(msg)
				}
			}
			if position != "" {
				p, ok := b.PositionByName(position)
				if !ok {
					return fmt.Errorf("알 수 없는 직급: %s", position)
				}
				values["position_id"] = p.ID
			}
			if len(values) == 0 {
				return errors.New("수정할 항목이 없습니다")
			}

			if err := b.Edit(ctx, ids[0], values); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "사용자 정보가 수정되었습니다")
			return nil
		},
	}
	f := cmd.Flags()
	for flag := range editFlags {
		f.String(flag, "", "new "+flag)
	}
	f.StringVar(&position, "position", "", "position name")
	return cmd
}

func newUsersToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "switch a user between active and inactive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			b, err := a.loadUsers(ctx)
			if err != nil {
				return err
			}
			u, ok := b.Get(ids[0])
			if !ok {
				return board.ErrUserNotFound
			}
			if u.IsRepresentative() {
				return board.ErrRepresentativeProtected
			}
			if err := a.confirm(fmt.Sprintf("%s(%s) 계정의 상태를 변경할까요?", u.Name, u.UserID)); err != nil {
				return err
			}
			status, err := b.Toggle(ctx, u.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "상태가 변경되었습니다: %s\n", statusLabel(status))
			return nil
		},
	}
}

func newUsersDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "delete users; representatives are never deleted",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			b, err := a.loadUsers(ctx)
			if err != nil {
				return err
			}

			if len(ids) == 1 {
				u, ok := b.Get(ids[0])
				if !ok {
					return board.ErrUserNotFound
				}
				if u.IsRepresentative() {
					return board.ErrRepresentativeProtected
				}
				if err := a.confirm(fmt.Sprintf("%s(%s) 계정을 삭제할까요?", u.Name, u.UserID)); err != nil {
					return err
				}
				if err := b.Delete(ctx, u.ID); err != nil {
					return err
				}
				fmt.Fprintln(a.out, "사용자가 삭제되었습니다")
				return nil
			}

			if err := a.confirm(fmt.Sprintf("선택한 %d명을 삭제할까요? (대표 계정은 제외)", len(ids))); err != nil {
				return err
			}
			res, err := b.DeleteMany(ctx, ids)
			fmt.Fprintf(a.out, "삭제 %d명, 제외 %d명\n", len(res.Deleted), len(res.Skipped))
			return err
		},
	}
}

func newUsersStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "show staff statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := a.authedClient()
			if err != nil {
				return err
			}
			stats, err := c.UserStats(cmd.Context())
			if err != nil {
				return err
			}
			renderStats(a.out, stats)
			return nil
		},
	}
}
