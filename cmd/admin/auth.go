package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	var userID, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "log in and save the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if userID == "" {
				if userID, err = a.prompter.Input("아이디", false); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = a.prompter.Input("비밀번호", true); err != nil {
					return err
				}
			}

			resp, err := a.newClient("").Login(cmd.Context(), userID, password)
			if err != nil {
				return err
			}

			s := session{
				Token:   resp.Token,
				UserID:  resp.Admin.UserID,
				Name:    resp.Admin.Name,
				SavedAt: time.Now(),
			}
			if resp.Admin.Position != nil {
				s.Level = resp.Admin.Position.Level
			}
			if err := saveSession(a.sessionPath(), s); err != nil {
				return err
			}
			a.log.Debug("session saved", "path", a.sessionPath())
			fmt.Fprintf(a.out, "%s님, %s\n", resp.Admin.Name, resp.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user-id", "", "user id")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "log out and remove the session file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := a.authedClient()
			if err == nil {
				if err := c.Logout(cmd.Context()); err != nil {
					a.log.Warn("logout request failed", "error", err)
				}
			}
			if err := clearSession(a.sessionPath()); err != nil {
				return fmt.Errorf("remove session: %w", err)
			}
			fmt.Fprintln(a.out, "로그아웃 되었습니다.")
			return nil
		},
	}
}
