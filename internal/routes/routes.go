package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/syedwasif978-cmd/stock-trading-app/internal/handlers"
	appmw "github.com/syedwasif978-cmd/stock-trading-app/internal/middleware"
)

func NewRoutes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Works Fine!"))
	})

	r.Post("/auth/login", handlers.LoginHandler)
	r.With(appmw.Authenticated).Get("/auth/me", handlers.MeHandler)

	r.Group(func(r chi.Router) {
		r.Use(appmw.Authenticated)

		r.Get("/stocks", handlers.ListStocksHandler)
		r.Get("/stocks/{id}", handlers.GetStockHandler)

		r.Post("/transactions/buy", handlers.BuyHandler)
		r.Post("/transactions/sell", handlers.SellHandler)
		r.Get("/transactions", handlers.TransactionsHandler)
		r.Get("/transactions/recent", handlers.RecentTransactionsHandler)

		r.Get("/dashboard/summary", handlers.DashboardSummaryHandler)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(appmw.Authenticated, appmw.AdminOnly)

		r.Post("/stocks/fluctuate", handlers.FluctuateHandler)
		r.Post("/stocks/suspend", handlers.SuspendHandler)

		r.Get("/transactions", handlers.AllTransactionsHandler)
		r.Post("/transactions/rollback/{id}", handlers.RollbackHandler)

		r.Get("/users", handlers.ListUsersHandler)
		r.Post("/users", handlers.CreateUserHandler)
		r.Post("/users/{id}", handlers.EditUserHandler)
		r.Delete("/users/{id}", handlers.DeleteUserHandler)

		r.Get("/activities", handlers.ActivitiesHandler)
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}
