// invitectl is the maintenance tool for invitation codes. Generation
// and listing are deliberately not exposed as bot commands; an operator
// runs this next to the bot's database file instead.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"

	"invitation-bot/internal/config"
	"invitation-bot/internal/database"
	"invitation-bot/internal/store"
)

func main() {
	count := pflag.IntP("count", "n", 1, "number of invitation codes to generate")
	inviter := pflag.Int64("inviter", -1, "user ID to assign the new codes to")
	list := pflag.Int64("list", -1, "list available codes for this user ID instead of generating")
	pflag.Parse()

	cfg := config.LoadConfig()

	db, err := database.ConnectSQLite(cfg.DBFile)
	if err != nil {
		log.Fatalf("Could not open database: %v", err)
	}
	st := store.New(db)

	if *list >= 0 {
		codes, err := st.ListAvailableInvitations(*list)
		if err != nil {
			log.Fatalf("Could not list invitations: %v", err)
		}
		if len(codes) == 0 {
			fmt.Printf("No available invitations for user %d\n", *list)
			return
		}
		for _, code := range codes {
			fmt.Println(code)
		}
		return
	}

	if *count < 1 {
		fmt.Fprintln(os.Stderr, "count must be at least 1")
		os.Exit(1)
	}

	var invitingUserID *int64
	if *inviter >= 0 {
		invitingUserID = inviter
	}

	codes, err := st.GenerateInvitations(*count, invitingUserID)
	for _, code := range codes {
		fmt.Println(code)
	}
	if err != nil {
		log.Fatalf("Generated %d of %d invitations: %v", len(codes), *count, err)
	}
}
