// Command token issues access tokens for operators and local testing.
package main

import (
	"flag"
	"fmt"
	"os"

	"stayledger/internal/access"
	"stayledger/internal/auth"
	"stayledger/internal/config"
)

func main() {
	role := flag.String("role", string(access.RoleGuest), "guest, host or admin")
	subject := flag.String("sub", "operator", "token subject")
	ttl := flag.Duration("ttl", auth.DefaultTokenExpiry, "token lifetime")
	flag.Parse()

	cfg := config.Load()

	token, err := auth.NewJWTService(cfg.JWTSecret).GenerateToken(*subject, access.Role(*role), *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
