package cli

import (
	"context"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/expensekeeper/internal/client/api"
	"github.com/dmitrijs2005/expensekeeper/internal/client/querycache"
)

// RecordKey is the query key of a single expense view.
func RecordKey(id int64) querycache.Key {
	return querycache.Key(fmt.Sprintf("expense:%d", id))
}

// attach uploads a receipt file and links it to the expense.
func (a *App) attach(ctx context.Context, id int64) {
	path, err := getSimpleText(a.reader, "Enter file path", os.Stdout)
	if err != nil {
		log.Println(err.Error())
		return
	}

	f, err := os.Open(path)
	if err != nil {
		log.Println(err.Error())
		return
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	recordKey := RecordKey(id)
	a.cache.Register(recordKey, func(ctx context.Context) ([]api.Expense, error) {
		e, err := a.client.GetExpense(ctx, id)
		if err != nil {
			return nil, err
		}
		return []api.Expense{*e}, nil
	})

	patched, err := a.uploader.Upload(ctx, id, filepath.Base(path), contentType, f, KeyExpenses, recordKey)
	if err != nil {
		log.Println(err.Error())
		return
	}
	fmt.Printf("Attached receipt to expense #%d\n", patched.ID)
}
