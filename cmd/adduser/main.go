// adduser creates an account directly against DATABASE_URL, for bootstrapping
// environments without going through the HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/husteen/accounts/internal/components/account"
	"github.com/husteen/accounts/internal/shared/config"
	"github.com/husteen/accounts/internal/shared/database"
	"github.com/husteen/accounts/internal/shared/logging"
)

func main() {
	email := flag.String("email", "", "account email (required)")
	password := flag.String("password", "", "account password (required)")
	name := flag.String("name", "", "display name")
	flag.Parse()

	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, _ := logging.NewLogger(cfg)

	db, err := database.NewDB(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	service := account.NewService(cfg, account.NewRepo(db))

	out, err := service.CreateAccount(context.Background(), account.CreateAccountIn{
		Email:    *email,
		Password: *password,
		Name:     *name,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating account: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Account created\n")
	fmt.Printf("ID:    %s\n", out.ID)
	fmt.Printf("Email: %s\n", out.Email)
	fmt.Printf("Name:  %s\n", out.Name)
}
