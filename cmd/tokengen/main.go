package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"campuslens/internal/auth"
)

// tokengen mints a service token for the UI backend. The signing key comes
// from SERVICE_AUTH_KEY so it never lands in shell history.
func main() {
	subject := flag.String("subject", "ui-backend", "token subject")
	issuer := flag.String("issuer", "campuslens", "token issuer, must match SERVICE_AUTH_ISSUER")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	key := os.Getenv("SERVICE_AUTH_KEY")
	if key == "" {
		log.Fatal("SERVICE_AUTH_KEY not set")
	}

	token, exp, err := auth.Issue(*subject, *issuer, key, *ttl)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", exp.Format(time.RFC3339))
}
