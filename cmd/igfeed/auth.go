package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"igfeed/pkg/auth"
	"igfeed/pkg/ui"
)

var authUserID string

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Graph API access token",
	Long: `Manage the Instagram Graph API access token used by the api source.

Tokens are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (IGFEED_ACCESS_TOKEN, read only)

Never commit tokens to the site repository.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store an access token securely",
	Long: `Store a long-lived Graph API access token in the system keychain or an
encrypted file. The token is read from the terminal without echo, or from
standard input when piped.`,
	Example: `  # Interactive
  igfeed auth login --user-id 17841400000000000

  # From a secret manager
  pass show igfeed/token | igfeed auth login --user-id 17841400000000000`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored access token",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the access token is stored",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Explain how to obtain an access token",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		auth.ShowTokenGuide()
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)
	authCmd.AddCommand(guideCmd)

	authCmd.PersistentFlags().StringVar(&authUserID, "user-id", "", "Instagram user id the token belongs to")
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	interactive := term.IsTerminal(int(syscall.Stdin))
	if interactive {
		fmt.Println("Paste the long-lived access token (input is hidden).")
		fmt.Println("Run 'igfeed auth guide' if you do not have one yet.")
		fmt.Print("\nAccess token: ")
	}

	token, err := readPassword(os.Stdin, interactive)
	if err != nil {
		ui.PrintError("Failed to read access token", err)
		return errRunFailed
	}

	cred := &auth.Credential{
		UserID:       strings.TrimSpace(authUserID),
		AccessToken:  token,
		LastModified: time.Now(),
	}
	if err := manager.Store(cred); err != nil {
		ui.PrintError("Failed to store access token", err)
		return errRunFailed
	}

	backend, _ := manager.Locate(cred.UserID)
	ui.PrintSuccess("Access token stored")
	ui.PrintInfo("Backend", backend)
	ui.PrintInfo("Token", auth.MaskToken(token))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	if err := manager.Delete(authUserID); err != nil {
		ui.PrintError("Failed to remove access token", err)
		return errRunFailed
	}
	ui.PrintSuccess("Access token removed")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	backend, ok := manager.Locate(authUserID)
	if !ok {
		ui.PrintWarning("No access token stored")
		fmt.Println("Run 'igfeed auth login --user-id <id>' to add one.")
		return nil
	}

	cred, err := manager.Retrieve(authUserID)
	if err != nil {
		return err
	}
	ui.PrintInfo("Backend", backend)
	ui.PrintInfo("User ID", cred.UserID)
	ui.PrintInfo("Token", auth.MaskToken(cred.AccessToken))
	if !cred.LastModified.IsZero() {
		ui.PrintInfo("Stored", cred.LastModified.Format(time.RFC1123))
	}
	return nil
}

// readPassword reads a secret without echo from a terminal, or a single line otherwise
func readPassword(in io.Reader, interactive bool) (string, error) {
	if interactive {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(password)), nil
		}
	}

	reader := bufio.NewReader(in)
	input, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
