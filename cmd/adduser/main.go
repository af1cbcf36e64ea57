// Command adduser creates a fintrack account from the command line,
// typically to bootstrap the first administrator.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/fintrack/fintrack/internal/repository"
	"github.com/fintrack/fintrack/internal/service"
)

// openStore migrates the database and returns a user store and its closer.
var openStore = func(ctx context.Context, databaseURL string) (service.UserStore, func(), error) {
	if err := repository.Migrate(databaseURL); err != nil {
		return nil, nil, err
	}
	repo, err := repository.New(ctx, databaseURL)
	if err != nil {
		return nil, nil, err
	}
	return repo, repo.Close, nil
}

func main() {
	_ = godotenv.Load()

	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	name := fs.String("name", "", "Full name")
	cpf := fs.String("cpf", "", "CPF (national ID)")
	email := fs.String("email", "", "Email address")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	admin := fs.Bool("admin", false, "Grant administrator access")
	dbURL := fs.String("db", "", "PostgreSQL URL (defaults to DATABASE_URL)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	var missing []string
	for _, f := range []struct{ flag, value string }{
		{"name", *name}, {"cpf", *cpf}, {"email", *email},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.flag)
		}
	}
	if len(missing) > 0 {
		fmt.Fprintln(stdout, "Usage: adduser -name <full name> -cpf <cpf> -email <email> [-password <password>] [-admin] [-db <url>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}

	databaseURL := *dbURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return errors.New("database URL not set: use -db or DATABASE_URL")
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password cannot be empty")
	}

	ctx := context.Background()
	store, closeStore, err := openStore(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer closeStore()

	accounts := service.NewAccountService(store, nil, nil)
	user, err := accounts.Register(ctx, service.RegisterInput{
		FullName:   *name,
		NationalID: *cpf,
		Email:      *email,
		Password:   password,
		IsAdmin:    *admin,
	})
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		return fmt.Errorf("user with email %s already exists", *email)
	case errors.Is(err, service.ErrNationalIDTaken):
		return fmt.Errorf("user with cpf %s already exists", *cpf)
	case err != nil:
		return fmt.Errorf("failed to create user: %w", err)
	}

	role := "user"
	if user.IsAdmin {
		role = "admin"
	}
	fmt.Fprintf(stdout, "User %s created successfully with ID %s (%s)\n", user.Email, user.ID, role)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Pipes and tests.
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
