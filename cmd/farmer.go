/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/agrocoop/farmdesk/internal/db"
	"github.com/agrocoop/farmdesk/internal/services"
	"github.com/agrocoop/farmdesk/internal/store"
	"github.com/agrocoop/farmdesk/types"
)

const (
	loginFlag    = "login"
	fullNameFlag = "full-name"
	passwordFlag = "password"
	roleFlag     = "role"
)

var farmerCreateFlags = map[string]cobraflags.Flag{
	loginFlag: &cobraflags.StringFlag{
		Name:  loginFlag,
		Value: "",
		Usage: "Login of the new account (required)",
	},
	fullNameFlag: &cobraflags.StringFlag{
		Name:  fullNameFlag,
		Value: "",
		Usage: "Full name (required)",
	},
	passwordFlag: &cobraflags.StringFlag{
		Name:  passwordFlag,
		Value: "",
		Usage: "Password (required)",
	},
	roleFlag: &cobraflags.StringFlag{
		Name:  roleFlag,
		Value: string(types.RoleAdmin),
		Usage: "Role: admin or farmer",
	},
}

// farmerCmd groups account maintenance commands.
var farmerCmd = &cobra.Command{
	Use:   "farmer",
	Short: "Manage farmer accounts",
}

var farmerCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account, by default an administrator",
	Long: `Creates an account directly in the database. Self-registration over the
API always yields the farmer role, so the first administrator is made here:

	farmdesk farmer create --login root --full-name "Cooperative office" --password Secret1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		conn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		farmers := services.NewFarmerService(store.NewFarmerRepository(conn), nil, logger)
		created, err := farmers.Create(cmd.Context(), types.Farmer{
			Login:    farmerCreateFlags[loginFlag].GetString(),
			FullName: farmerCreateFlags[fullNameFlag].GetString(),
			Role:     types.Role(farmerCreateFlags[roleFlag].GetString()),
		}, farmerCreateFlags[passwordFlag].GetString())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s %q with id %d\n", created.Role, created.Login, created.ID)
		return nil
	},
}

func init() {
	cobraflags.RegisterMap(farmerCreateCmd, farmerCreateFlags)
	farmerCmd.AddCommand(farmerCreateCmd)
	rootCmd.AddCommand(farmerCmd)
}
