package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
)

// getSimpleText is an indirection used to facilitate testing.
var getSimpleText = GetSimpleText

func (a *App) promptExpense() (string, int64, error) {
	title, err := getSimpleText(a.reader, "Enter title", os.Stdout)
	if err != nil {
		return "", 0, err
	}

	amountText, err := getSimpleText(a.reader, "Enter amount", os.Stdout)
	if err != nil {
		return "", 0, err
	}
	amount, err := strconv.ParseInt(amountText, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid amount: %s", amountText)
	}

	return title, amount, nil
}

func (a *App) add(ctx context.Context) {
	title, amount, err := a.promptExpense()
	if err != nil {
		log.Println(err.Error())
		return
	}

	created, err := a.engine.Create(ctx, KeyExpenses, title, amount)
	if err != nil {
		log.Println(err.Error())
		return
	}
	fmt.Printf("Added expense #%d\n", created.ID)
}

func (a *App) update(ctx context.Context, id int64) {
	title, amount, err := a.promptExpense()
	if err != nil {
		log.Println(err.Error())
		return
	}

	updated, err := a.engine.Update(ctx, KeyExpenses, id, title, amount)
	if err != nil {
		log.Println(err.Error())
		return
	}
	fmt.Printf("Updated expense #%d\n", updated.ID)
}

func (a *App) delete(ctx context.Context, id int64) {
	deleted, err := a.engine.Delete(ctx, KeyExpenses, id)
	if err != nil {
		log.Println(err.Error())
		return
	}
	fmt.Printf("Deleted expense #%d (%s)\n", deleted.ID, deleted.Title)
}
