// adminhash prints the bcrypt hash of a password for use as
// ADMIN_PASSWORD_HASH.  Run it once when provisioning the admin
// credential:
//
//	go run ./cmd/adminhash 's3cret'
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/iliyamo/venue-ticketing/internal/utils"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s <password>", os.Args[0])
	}
	hash, err := utils.HashAdminPassword(os.Args[1])
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	fmt.Println(hash)
}
