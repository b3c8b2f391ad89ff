// Command tokengen mints session tokens for local development and testing.
//
//	tokengen -subject emp-001 -name "Acme Corp" -role employer
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"credgate/internal/platform/config"
	"credgate/internal/token"
	"credgate/pkg/domain"
)

func main() {
	subject := flag.String("subject", "", "subject id (employer id or student enrollment id)")
	name := flag.String("name", "", "display name embedded in the token")
	role := flag.String("role", "", "role: student, employer, or university")
	ttl := flag.Duration("ttl", 0, "token lifetime, defaults to TOKEN_TTL")
	flag.Parse()

	if *subject == "" || *role == "" {
		flag.Usage()
		os.Exit(2)
	}
	if !domain.Role(*role).IsValid() {
		fmt.Fprintf(os.Stderr, "invalid role %q\n", *role)
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := config.FromEnv()

	tokenTTL := cfg.TokenTTL
	if *ttl > time.Duration(0) {
		tokenTTL = *ttl
	}

	svc := token.NewService(cfg.JWTSigningKey, "credgate", tokenTTL)
	signed, err := svc.Generate(*subject, *name, domain.Role(*role))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(signed)
}
