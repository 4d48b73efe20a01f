// Command hashpw prints the bcrypt hash for a password, for pasting into the
// externally maintained staff directory.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spec-kit/facility-helpdesk/internal/auth"
	"github.com/spec-kit/facility-helpdesk/internal/config"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: hashpw <password>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	hashed, err := auth.HashPassword(os.Args[1], cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	fmt.Println(hashed)
}
