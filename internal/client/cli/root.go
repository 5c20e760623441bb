package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.userName)
}

func (a *App) Root(ctx context.Context) {

	log.Println("Welcome to the expense tracker CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("ek %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			fmt.Println("Available commands: list, add, update, delete, attach, register, login, logout, whoami, exit")

		case "register":
			a.Register(ctx)
		case "login":
			a.Login(ctx)
		case "logout":
			a.Logout(ctx)
		case "whoami":
			a.WhoAmI(ctx)

		case "l", "list":
			a.list(ctx)
		case "add":
			a.add(ctx)
		case "update":
			id, ok := parseIDArg(args, "update")
			if !ok {
				continue
			}
			a.update(ctx, id)
		case "delete":
			id, ok := parseIDArg(args, "delete")
			if !ok {
				continue
			}
			a.delete(ctx, id)
		case "attach":
			id, ok := parseIDArg(args, "attach")
			if !ok {
				continue
			}
			a.attach(ctx, id)

		case "exit", "quit":
			fmt.Println("Bye!")
			return

		default:
			fmt.Println("Unknown command:", cmd)
		}
	}

}

func parseIDArg(args []string, cmd string) (int64, bool) {
	if len(args) == 0 {
		fmt.Printf("Usage: %s <id>\n", cmd)
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id == 0 {
		fmt.Println("Invalid id:", args[0])
		return 0, false
	}
	return id, true
}
