package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cropvision/internal/session"
)

// signupCmd creates (or replaces) the local account.
var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create your account",
	Long: `Creates the local Crop Vision account. Only one account exists at a
time; signing up again replaces it. Signing up does not log you in.`,
	RunE: runSignup,
}

// loginCmd activates a session.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to Crop Vision",
	RunE:  runLogin,
}

// logoutCmd ends the active session.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out of Crop Vision",
	RunE:  runLogout,
}

// whoamiCmd shows the active session, if any.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE:  runWhoami,
}

func openStore() (*session.Store, error) {
	return session.NewStore(cfg.Storage.DatabasePath)
}

func runSignup(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	name, err := prompt("Name: ")
	if err != nil {
		return err
	}
	email, err := prompt("Email: ")
	if err != nil {
		return err
	}
	password, err := promptSecret("Password: ")
	if err != nil {
		return err
	}

	if err := store.SignUp(name, email, password); err != nil {
		var verr *session.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("please fill all fields (%s)", strings.Join(verr.Fields, ", "))
		}
		return err
	}

	fmt.Println("Account created! You can login now.")
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	email, err := prompt("Email: ")
	if err != nil {
		return err
	}
	password, err := promptSecret("Password: ")
	if err != nil {
		return err
	}

	name, err := store.LogIn(email, password)
	if errors.Is(err, session.ErrInvalidCredentials) {
		return fmt.Errorf("invalid credentials; please sign up first")
	}
	if err != nil {
		return err
	}

	fmt.Printf("Login successful! Welcome, %s.\n", name)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.LogOut(); err != nil {
		return err
	}
	fmt.Println("Logged out successfully.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	name, active, err := store.Current()
	if err != nil {
		return err
	}
	if !active {
		fmt.Println("Not logged in.")
		return nil
	}
	fmt.Printf("Logged in as %s\n", name)
	return nil
}

func prompt(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads a password without echoing when stdin is a terminal.
func promptSecret(label string) (string, error) {
	fmt.Print(label)
	if term.IsTerminal(int(syscall.Stdin)) {
		data, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return prompt("")
}
