package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gstdesk/pkg/auth"
)

var (
	loginEmail    string
	loginPassword string
	signupName    string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and persist the session token",
	Run:   runLogin,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Register a new account",
	Run:   runSignup,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Drop the persisted session",
	Run:   runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	Run:   runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email (required)")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "password (prompted when omitted)")
	loginCmd.MarkFlagRequired("email")

	signupCmd.Flags().StringVar(&loginEmail, "email", "", "account email (required)")
	signupCmd.Flags().StringVar(&loginPassword, "password", "", "password (prompted when omitted)")
	signupCmd.Flags().StringVar(&signupName, "name", "", "full name")
	signupCmd.MarkFlagRequired("email")
}

func readPassword() string {
	if loginPassword != "" {
		return loginPassword
	}
	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	exitOnError(err, "failed to read password")
	return strings.TrimRight(line, "\r\n")
}

func runLogin(cmd *cobra.Command, args []string) {
	a := newApp()
	defer a.Close()

	resp, err := a.client.Login(context.Background(), loginEmail, readPassword())
	exitOnError(err, "login failed")
	a.sessions.SetToken(resp.AccessToken)

	sess := a.sessions.Session()
	if !sess.Authenticated() {
		exitOnError(fmt.Errorf("server issued an unusable token"), "login failed")
	}
	fmt.Printf("Logged in as %s\n", sess.SubjectEmail)
}

func runSignup(cmd *cobra.Command, args []string) {
	a := newApp()
	defer a.Close()

	password := readPassword()
	exitOnError(auth.ValidatePassword(password), "weak password")

	user, err := a.client.Signup(context.Background(), loginEmail, password, signupName)
	exitOnError(err, "signup failed")
	fmt.Printf("Account created for %s. Run `gstdesk login` to start a session.\n", user.Email)
}

func runLogout(cmd *cobra.Command, args []string) {
	a := newApp()
	defer a.Close()

	a.sessions.Clear()
	fmt.Println("Logged out.")
}

func runWhoami(cmd *cobra.Command, args []string) {
	a := newApp()
	defer a.Close()

	sess := a.sessions.Session()
	if !sess.Authenticated() {
		fmt.Println("Not logged in.")
		return
	}
	fmt.Printf("Subject: %s\n", sess.SubjectID)
	if sess.SubjectEmail != "" {
		fmt.Printf("Email:   %s\n", sess.SubjectEmail)
	}
	if sess.ExpiresAt != nil {
		fmt.Printf("Expires: %s\n", sess.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	} else {
		fmt.Println("Expires: never")
	}
}
