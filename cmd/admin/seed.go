package main

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm/logger"

	"fitreport/internal/account"
	"fitreport/internal/config"
	"fitreport/internal/database"
)

// newSeedCmd bootstraps an empty database directly, without the API.
func newSeedCmd(a *app) *cobra.Command {
	var userID, name, password string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "migrate, seed positions and create the first representative account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID = strings.TrimSpace(userID)
			if msg := account.CheckUserID(userID); msg != "" {
				return fmt.Errorf("--user-id: %s", msg)
			}
			if msg := account.CheckName(name); msg != "" {
				return fmt.Errorf("--name: %s", msg)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := database.InitDatabase(cfg.Database, logger.Warn)
			if err != nil {
				return fmt.Errorf("init database: %w", err)
			}
			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			ctx := cmd.Context()
			n, err := database.SeedPositions(ctx, db)
			if err != nil {
				return fmt.Errorf("seed positions: %w", err)
			}
			a.log.Info("positions seeded", "count", n)

			generated := password == ""
			if generated {
				if password, err = generateRandomPassword(12); err != nil {
					return err
				}
			}

			user, err := database.SeedRepresentative(ctx, db, userID, name, password)
			if errors.Is(err, database.ErrUserExists) {
				a.log.Info("representative already exists", "user_id", userID)
				return nil
			}
			if err != nil {
				return fmt.Errorf("create representative: %w", err)
			}

			fmt.Fprintf(a.out, "대표 계정을 생성했습니다.\n아이디: %s\n", user.UserID)
			if generated {
				fmt.Fprintf(a.out, "초기 비밀번호: %s\n(이 비밀번호는 한 번만 표시됩니다)\n", password)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "representative user id (required)")
	cmd.Flags().StringVar(&name, "name", "대표", "representative name")
	cmd.Flags().StringVar(&password, "password", "", "initial password (random when empty)")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}

func generateRandomPassword(bytesLen int) (string, error) {
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
