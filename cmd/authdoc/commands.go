package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/authdoc/go-authdoc-client/guard"
	"github.com/authdoc/go-authdoc-client/token"
	"github.com/authdoc/go-authdoc-client/verification"
)

func (a *app) registerCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new AuthDoc account",
		RunE: func(cmd *cobra.Command, args []string) error {
			result := a.sessions.Register(cmd.Context(), name, email, password)
			if !result.Success {
				return errors.New(result.Message)
			}
			fmt.Println("Account created. You can now sign in with: authdoc login")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "given name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist the session credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			result := a.sessions.Login(cmd.Context(), email, password)
			if !result.Success {
				return errors.New(result.Message)
			}
			user := a.sessions.CurrentUser()
			fmt.Printf("Signed in as %s\n", user.DisplayName())
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	var revoke bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if revoke {
				if refresh := a.tokens.Refresh(); refresh != "" {
					// Best effort: local logout never depends on the server.
					if err := a.api.RevokeRefresh(cmd.Context(), refresh); err != nil {
						a.log.Warn().Err(err).Msg("refresh token revocation failed")
					}
				}
			}
			a.sessions.Logout()
			fmt.Println("Signed out.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&revoke, "revoke", false, "also blacklist the refresh token server-side")
	return cmd
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			displayAppname(a.cfg.GetAppName())

			fmt.Printf("Backend:   %s\n", a.api.BaseURL())

			access := a.tokens.Access()
			if access == "" {
				fmt.Println("Session:   signed out")
				return nil
			}

			fmt.Println("Session:   credentials present")
			claims, err := token.Inspect(access)
			if err != nil {
				fmt.Println("Token:     unreadable")
				return nil
			}
			if claims.ExpiresAt != nil {
				state := "valid until"
				if claims.Expired(time.Now()) {
					state = "expired at"
				}
				fmt.Printf("Token:     %s %s\n", state, claims.ExpiresAt.Format(time.RFC3339))
			}
			if claims.UserID != 0 {
				fmt.Printf("User ID:   %d\n", claims.UserID)
			}
			return nil
		},
	}
}

func (a *app) restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Validate the persisted session against the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			result := a.sessions.Restore(cmd.Context())
			if !result.Success {
				return errors.New(result.Message)
			}
			fmt.Printf("Session restored for %s\n", a.sessions.CurrentUser().DisplayName())
			return nil
		},
	}
}

func (a *app) verifyCmd() *cobra.Command {
	var aadhaarNumber, documentPath, templatePath string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Submit a document for authenticity verification",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(cmd, "/verify"); err != nil {
				return err
			}

			document, err := os.Open(documentPath)
			if err != nil {
				return errors.Wrap(err, "open document")
			}
			defer document.Close()

			req := verification.Request{
				AadhaarNumber: aadhaarNumber,
				Document:      document,
				DocumentName:  filepath.Base(documentPath),
			}

			if templatePath != "" {
				template, err := os.Open(templatePath)
				if err != nil {
					return errors.Wrap(err, "open template")
				}
				defer template.Close()
				req.Template = template
				req.TemplateName = filepath.Base(templatePath)
			}

			result, err := a.api.VerifyDocument(cmd.Context(), req)
			if err != nil {
				return err
			}
			printResult(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&aadhaarNumber, "aadhaar", "", "12-digit Aadhaar number")
	cmd.Flags().StringVar(&documentPath, "document", "", "path to the document image")
	cmd.Flags().StringVar(&templatePath, "template", "", "path to the official template image (optional)")
	cmd.MarkFlagRequired("aadhaar")
	cmd.MarkFlagRequired("document")
	return cmd
}

func (a *app) resultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "result <id>",
		Short: "Fetch a stored verification record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return errors.New("result ID must be a number")
			}

			if err := a.requireSession(cmd, "/dashboard"); err != nil {
				return err
			}

			record, err := a.api.VerificationResult(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Printf("Record #%d  %s  (%s)\n", record.ID, record.Result, record.Status)
			if record.FinalScore != nil {
				fmt.Printf("Final score: %.0f / 100\n", *record.FinalScore)
			}
			return nil
		},
	}
}

// requireSession is the CLI's navigation guard: restore the persisted
// session, then let the route guard decide whether the destination may
// proceed.
func (a *app) requireSession(cmd *cobra.Command, path string) error {
	result := a.sessions.Restore(cmd.Context())
	decision := a.guard.Check(path)
	if decision.Action == guard.Redirect {
		if result.Message != "" {
			return errors.New(result.Message + " Sign in with: authdoc login")
		}
		return errors.New("please sign in first: authdoc login")
	}
	return nil
}

func printResult(result *verification.Result) {
	fmt.Printf("Aadhaar:        %s\n", result.AadhaarNumber)
	fmt.Printf("Verhoeff:       %.0f\n", result.Scores.Verhoeff)
	fmt.Printf("Layout:         %.0f\n", result.Scores.Layout)
	fmt.Printf("Text:           %.0f\n", result.Scores.Text)
	fmt.Printf("Copy-move:      %.0f\n", result.Scores.CopyMove)
	fmt.Printf("Metadata:       %.0f\n", result.Scores.Metadata)
	fmt.Printf("ELA:            %.0f\n", result.Scores.ELA)
	fmt.Printf("Final score:    %.1f / 100\n", result.FinalScore)
	fmt.Printf("Classification: %s\n", result.Classification)
}
