package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"reservation-system/internal/bootstrap"
	"reservation-system/internal/services"
	"reservation-system/pkg/eventbus"
	"reservation-system/pkg/service"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [secret]",
	Short: "Print the bcrypt hash of a secret (read from stdin when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var secret string
		if len(args) == 1 {
			secret = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read secret: %w", err)
			}
			secret = strings.TrimRight(line, "\r\n")
		}
		if secret == "" {
			return fmt.Errorf("secret must not be empty")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(hash))
		return nil
	},
}

var issueTokenCmd = &cobra.Command{
	Use:   "issue-token <user-id>",
	Short: "Sign an access token for a user (development only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID := args[0]
		cfg, logger := loadEnv(cmd)
		defer logger.Sync()

		clock := clockwork.NewRealClock()
		if check, _ := cmd.Flags().GetBool("check-user"); check {
			storage, err := bootstrap.OpenStorage(commandContext(cmd), cfg, logger.Named("storage"))
			if err != nil {
				return err
			}
			defer storage.Close()

			reg := services.NewRegistry(storage.Repos, eventbus.New(logger), clock, logger, cfg.Redis.RoleCacheTTL)
			if _, err := reg.Users.FindUser(commandContext(cmd), userID); err != nil {
				return fmt.Errorf("user %s: %w", userID, err)
			}
		}

		token, err := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.Issuer, cfg.JWT.AccessTokenTTL, clock).GenerateAccessToken(userID)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, token)
		return nil
	},
}
