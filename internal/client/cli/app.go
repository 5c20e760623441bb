// Package cli implements the interactive command line client for the expense
// tracking server.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/dmitrijs2005/expensekeeper/internal/client/api"
	"github.com/dmitrijs2005/expensekeeper/internal/client/config"
	"github.com/dmitrijs2005/expensekeeper/internal/client/querycache"
	"github.com/dmitrijs2005/expensekeeper/internal/client/upload"
)

// KeyExpenses is the query key of the expense collection view.
const KeyExpenses = querycache.Key("expenses")

type App struct {
	config   *config.Config
	client   *api.Client
	cache    *querycache.Cache
	engine   *querycache.Engine
	uploader *upload.Uploader
	userName string
	reader   *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	apiClient, err := api.NewClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	cache := querycache.NewCache()
	cache.Register(KeyExpenses, apiClient.ListExpenses)

	engine := querycache.NewEngine(cache, apiClient)
	uploader := upload.NewUploader(apiClient, cache)

	return &App{
		config:   c,
		client:   apiClient,
		cache:    cache,
		engine:   engine,
		uploader: uploader,
		reader:   bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}
