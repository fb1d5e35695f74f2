package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/engreader/internal/user"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage learner accounts",
}

// password reads --password, falling back to ENGREADER_PASSWORD so it can
// stay out of shell history.
func password(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("password"); p != "" {
		return p
	}
	return os.Getenv("ENGREADER_PASSWORD")
}

var userRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		first, _ := cmd.Flags().GetString("first-name")
		last, _ := cmd.Flags().GetString("last-name")
		lang, _ := cmd.Flags().GetString("native-language")

		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		u, err := d.users.Register(cmd.Context(), user.Registration{
			Email:          email,
			Password:       password(cmd),
			FirstName:      first,
			LastName:       last,
			NativeLanguage: lang,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Registered %s (id %s)\n", u.Email, u.ID)
		return nil
	},
}

var userLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Check credentials and print the user id",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")

		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		u, err := d.users.Authenticate(cmd.Context(), email, password(cmd))
		if err != nil {
			return err
		}
		fmt.Printf("Welcome back, %s. Use --user %s\n", u.FirstName, u.ID)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{userRegisterCmd, userLoginCmd} {
		c.Flags().String("email", "", "Email address")
		c.Flags().String("password", "", "Password (or set ENGREADER_PASSWORD)")
		_ = c.MarkFlagRequired("email")
	}
	userRegisterCmd.Flags().String("first-name", "", "First name")
	userRegisterCmd.Flags().String("last-name", "", "Last name")
	userRegisterCmd.Flags().String("native-language", user.DefaultNativeLanguage, "Native language code")

	userCmd.AddCommand(userRegisterCmd)
	userCmd.AddCommand(userLoginCmd)
}
