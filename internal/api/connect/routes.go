package connect

import (
	"net/http"

	"connectrpc.com/connect"

	"github.com/osa030/melodia/internal/api/rpc"
	"github.com/osa030/melodia/internal/app/account"
	"github.com/osa030/melodia/internal/app/catalog"
	"github.com/osa030/melodia/internal/app/session"
)

// Services bundles what the RPC handlers need.
type Services struct {
	Session   *session.Manager
	Catalog   *catalog.Service
	Accounts  *account.Service
	LoginRate RateLimitConfig
}

// Register mounts the player, catalog and account services on mux.
func Register(mux *http.ServeMux, svcs Services) {
	interceptors := connect.WithInterceptors(
		NewLoginRateLimiter(svcs.LoginRate),
		NewAuthInterceptor(svcs.Accounts),
	)

	mux.Handle(rpc.NewPlayerServiceHandler(NewPlayerService(svcs.Session), interceptors))
	mux.Handle(rpc.NewCatalogServiceHandler(NewCatalogService(svcs.Catalog), interceptors))
	mux.Handle(rpc.NewAccountServiceHandler(NewAccountService(svcs.Accounts), interceptors))
}
