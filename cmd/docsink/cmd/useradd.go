package cmd

import (
	"errors"

	"github.com/exacode/docsink"
	"github.com/exacode/docsink/document"
	"github.com/exacode/docsink/domain"
	"github.com/spf13/cobra"
)

var useraddCmd = &cobra.Command{
	Use:   "useradd NAME",
	Short: "Create a user, or replace its password",
	Args:  cobra.ExactArgs(1),
	RunE:  runUseradd,
}

func init() {
	useraddCmd.Flags().String("password", "", "password of the user")
	rootCmd.AddCommand(useraddCmd)
}

func runUseradd(cmd *cobra.Command, args []string) error {
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		return errors.New("missing --password")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := docsink.DialEmbedded(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	_, err = database.RunCommand(document.NewMap().
		Set(domain.CmdCreateUser, document.String(args[0])).
		Set("pwd", document.String(password)))
	if err != nil {
		return err
	}
	cmd.Printf("Created user %s\n", args[0])
	return nil
}
