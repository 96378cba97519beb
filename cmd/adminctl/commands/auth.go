package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"marketplace-admin/internal/forms"
	"marketplace-admin/internal/token"
)

var errNotSignedIn = errors.New("not signed in, run `adminctl login` first")

// readSecret returns flagValue, or prompts on stderr and reads one line from
// stdin. Terminal input is not echoed.
func (a *app) readSecret(flagValue, prompt string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(a.errOut, prompt+": ")
	if f, ok := a.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.errOut)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", strings.ToLower(prompt), err)
		}
		return string(secret), nil
	}
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(prompt), err)
	}
	fmt.Fprintln(a.errOut)
	return strings.TrimRight(line, "\r\n"), nil
}

func loginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := a.readSecret(password, "Password")
			if err != nil {
				return err
			}
			if err := forms.Validate(forms.Login{Email: email, Password: pw}); err != nil {
				return err
			}
			session, err := a.client.Auth.Login(cmd.Context(), email, pw)
			if err != nil {
				return err
			}
			name := email
			if session.User != nil && session.User.FullName != "" {
				name = session.User.FullName
			}
			fmt.Fprintf(a.out, "Signed in as %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "operator email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out")
			return nil
		},
	}
}

type whoami struct {
	ID        string `json:"_id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	ExpiresAt string `json:"accessTokenExpiresAt,omitempty"`
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in operator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.client.Auth.Current(cmd.Context())
			if err != nil {
				return err
			}
			if !session.Authenticated() {
				return errNotSignedIn
			}

			var w whoami
			if session.User != nil {
				w.ID, w.FullName, w.Email = session.User.ID, session.User.FullName, session.User.Email
			}
			if claims, err := token.Decode(session.AccessToken); err == nil {
				if exp := claims.ExpiresAtTime(); !exp.IsZero() {
					w.ExpiresAt = exp.Local().Format("2006-01-02 15:04:05")
				}
			}
			return a.renderFields(w, [][2]string{
				{"ID", orDash(w.ID)},
				{"Name", orDash(w.FullName)},
				{"Email", orDash(w.Email)},
				{"Access token expires", orDash(w.ExpiresAt)},
			})
		},
	}
}

func forgotPasswordCmd(a *app) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Request a password reset code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := forms.Validate(forms.ForgotPassword{Email: email}); err != nil {
				return err
			}
			msg, err := a.client.Auth.ForgotPassword(cmd.Context(), email)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, msg)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "operator email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func resetPasswordCmd(a *app) *cobra.Command {
	var email, otp, password, confirm string
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password with the emailed code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := forms.Validate(forms.OTP{OTP: otp}); err != nil {
				return err
			}
			pw, err := a.readSecret(password, "New password")
			if err != nil {
				return err
			}
			if confirm == "" {
				confirm = pw
			}
			if err := forms.Validate(forms.ResetPassword{
				Email:           email,
				OTP:             otp,
				Password:        pw,
				ConfirmPassword: confirm,
			}); err != nil {
				return err
			}
			msg, err := a.client.Auth.ResetPassword(cmd.Context(), email, otp, pw)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, msg)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "operator email")
	cmd.Flags().StringVar(&otp, "otp", "", "4 digit code")
	cmd.Flags().StringVarP(&password, "password", "p", "", "new password (read from stdin when omitted)")
	cmd.Flags().StringVar(&confirm, "confirm", "", "repeat the new password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("otp")
	return cmd
}
