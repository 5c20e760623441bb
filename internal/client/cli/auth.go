package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/expensekeeper/internal/common"
)

// getPassword is an indirection used to facilitate testing.
var getPassword = GetPassword

// Register prompts the user for a username and password and attempts to
// create a new account.
//
// On success it prints "Success!" and returns nil. The password byte slice
// is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.client.Register(ctx, userName, string(password)); err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Println("Success!")
	return nil
}

// Login prompts for credentials and authenticates against the server. On
// success the session cookie lives in the client's jar and the username is
// shown in the prompt.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.client.Login(ctx, userName, string(password))
	if err != nil {
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}

	a.userName = u.Username
	log.Println("Login successful")
	return nil
}

// Logout drops the server-side session and forgets the username.
func (a *App) Logout(ctx context.Context) error {
	if err := a.client.Logout(ctx); err != nil {
		log.Println(err.Error())
		return err
	}
	a.userName = ""
	return nil
}

// WhoAmI prints the account of the current session.
func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.client.Me(ctx)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	fmt.Printf("Logged in as %s (id %s)\n", u.Username, u.ID)
	return nil
}
