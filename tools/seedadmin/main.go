// Command seedadmin bootstraps an administrator account with a generated
// password. Intended for first-time setup:
//
//	go run ./tools/seedadmin -storage data -username admin -email admin@example.com
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/sethvargo/go-password/password"

	"cinehub/models"
	"cinehub/services/accounts"
)

func main() {
	storageDir := flag.String("storage", "data", "directory holding the JSON document stores")
	username := flag.String("username", "admin", "administrator username")
	email := flag.String("email", "admin@localhost", "administrator email")
	flag.Parse()

	svc, err := accounts.NewService(*storageDir)
	if err != nil {
		log.Fatalf("init accounts service: %v", err)
	}

	generated, err := password.Generate(16, 4, 2, false, false)
	if err != nil {
		log.Fatalf("generate password: %v", err)
	}

	user, err := svc.Register(models.RegisterRequest{
		Username: *username,
		Email:    *email,
		Password: generated,
	})
	if err != nil {
		log.Fatalf("register admin: %v", err)
	}

	if _, err := svc.SetAdmin(user.ID, true); err != nil {
		log.Fatalf("grant admin: %v", err)
	}

	fmt.Printf("admin account created\n  username: %s\n  password: %s\n", user.Username, generated)
	fmt.Println("store this password now; it is not shown again")
}
