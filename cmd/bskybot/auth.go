package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bskybot/pkg/auth"
	"bskybot/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Bluesky credentials",
	Long: `Manage stored Bluesky credentials securely.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read only)

Use an app password, never your main account password.`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [identifier]",
	Short: "Store a Bluesky identifier and app password",
	Example: `  # Interactive login
  bskybot auth login

  # Login with a handle
  bskybot auth login me.bsky.social`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [identifier]",
	Short: "Remove stored credentials",
	Long: `Remove stored Bluesky credentials.

Without an identifier, the only stored account is removed. Use --all to remove
every stored account.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogout,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List stored accounts",
	Long:  `List stored Bluesky accounts with masked passwords.`,
	RunE:  runStatus,
}

var logoutAll bool

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)

	logoutCmd.Flags().BoolVar(&logoutAll, "all", false, "remove every stored account")
}

// newCredentialManager is replaced in tests
var newCredentialManager = auth.NewManager

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := newCredentialManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	out := cmd.OutOrStdout()
	reader := bufio.NewReader(cmd.InOrStdin())

	auth.ShowAppPasswordGuide(out)
	fmt.Fprintln(out)

	var identifier string
	if len(args) > 0 {
		identifier = strings.TrimSpace(args[0])
	} else {
		fmt.Fprint(out, "Bluesky identifier (handle or email): ")
		identifier, err = readLine(reader)
		if err != nil {
			return fmt.Errorf("failed to read identifier: %w", err)
		}
	}
	if identifier == "" {
		return fmt.Errorf("identifier is required")
	}

	if existing, _ := manager.Retrieve(identifier); existing != nil {
		fmt.Fprintf(out, "Account '%s' already exists. Update credentials? (y/N): ", identifier)
		answer, _ := readLine(reader)
		if !strings.HasPrefix(strings.ToLower(answer), "y") {
			return nil
		}
	}

	fmt.Fprint(out, "App password (hidden): ")
	password, err := readPassword(cmd.InOrStdin(), reader, out)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}

	account := &auth.Account{
		Identifier:   identifier,
		Password:     password,
		LastModified: time.Now(),
	}
	if err := manager.Store(account); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	ui.PrintSuccess("Account saved: " + identifier)
	fmt.Fprintln(out, "\nStart posting with:")
	fmt.Fprintf(out, "  bskybot post posts.json --account %s\n", identifier)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := newCredentialManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	if logoutAll {
		if err := manager.DeleteAll(); err != nil {
			return fmt.Errorf("failed to remove all accounts: %w", err)
		}
		ui.PrintSuccess("All accounts removed")
		return nil
	}

	var identifier string
	if len(args) > 0 {
		identifier = args[0]
	} else {
		accounts, err := manager.List()
		if err != nil || len(accounts) == 0 {
			return fmt.Errorf("no stored accounts found")
		}
		if len(accounts) > 1 {
			return fmt.Errorf("%d accounts stored; name one or use --all", len(accounts))
		}
		identifier = accounts[0].Identifier
	}

	if err := manager.Delete(identifier); err != nil {
		return fmt.Errorf("failed to remove account: %w", err)
	}
	ui.PrintSuccess("Account removed: " + identifier)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	manager, err := newCredentialManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	accounts, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(accounts) == 0 {
		ui.PrintInfo("No stored accounts", "Use 'bskybot auth login' to add one")
		auth.ShowQuickGuide(out)
		return nil
	}

	ui.PrintHighlight("Stored Accounts")
	for i, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Fprintf(out, "%d. %s\n", i+1, sanitized.Identifier)
		fmt.Fprintf(out, "   Password: %s\n", sanitized.Password)
		if !sanitized.LastModified.IsZero() {
			fmt.Fprintf(out, "   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		}
	}
	return nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads a password without echo on a terminal, falling back to a
// plain line read
func readPassword(in io.Reader, r *bufio.Reader, out io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) && r.Buffered() == 0 {
		password, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err == nil {
			return strings.TrimSpace(string(password)), nil
		}
	}
	return readLine(r)
}
