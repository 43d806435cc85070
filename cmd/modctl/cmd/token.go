package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/imadgeboyega/kiekky-nearby/internal/common/utils"
)

var (
	tokenUserID   int64
	tokenUsername string
	tokenAdmin    bool
	tokenTTL      time.Duration
)

// tokenCmd signs with JWT_SECRET and needs no database
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an access token",
	Long: `Signs an access token with JWT_SECRET, for local testing against the API.

Examples:
  modctl token --user 1 --admin
  modctl token --user 7 --ttl 24h`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenUserID <= 0 {
			return fmt.Errorf("--user is required")
		}

		ttl := tokenTTL
		if ttl <= 0 {
			ttl = cfg.AccessTokenExpiry
		}

		role := utils.RoleUser
		if tokenAdmin {
			role = utils.RoleAdmin
		}

		now := time.Now()
		token, err := utils.GenerateJWT(&utils.JWTClaims{
			UserID:    tokenUserID,
			Username:  tokenUsername,
			Role:      role,
			Type:      "access",
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
			Issuer:    "modctl",
		}, cfg.JWTSecret)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().Int64Var(&tokenUserID, "user", 0, "user id")
	tokenCmd.Flags().StringVar(&tokenUsername, "username", "", "username claim")
	tokenCmd.Flags().BoolVar(&tokenAdmin, "admin", false, "grant the admin role")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default ACCESS_TOKEN_EXPIRY)")
}
