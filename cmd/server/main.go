package main

import (
	"go.uber.org/fx"

	"github.com/husteen/accounts/internal/components/account"
	"github.com/husteen/accounts/internal/server"
	"github.com/husteen/accounts/internal/shared/config"
	"github.com/husteen/accounts/internal/shared/database"
	"github.com/husteen/accounts/internal/shared/logging"
)

func main() {
	fx.New(
		fx.Provide(
			config.NewConfig,
			logging.NewLogger,
			database.NewDB,
			server.NewServer,
			server.NewHealthSrvc,
			server.NewHealthHandler,
			account.NewRepo,
			account.NewService,
			fx.Annotate(account.NewRouter, fx.ResultTags(`name:"accountRouter"`)),
		),
		fx.Invoke(server.Register),
	).Run()
}
