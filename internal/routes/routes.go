package routes

import (
	"github.com/gin-gonic/gin"

	"gruby/internal/app"
	"gruby/internal/handlers"
)

func RegisterRoutes(router *gin.Engine, a *app.App) {
	handlers.RegisterValidators()

	r := a.Repos
	products := handlers.NewProductHandler(r.Products, r.Users, a.Cache)
	users := handlers.NewUserHandler(r.Users, a.Cache)
	orders := handlers.NewOrderHandler(r.Orders, r.Products)
	favorites := handlers.NewFavoriteHandler(r.Favorites, r.Products)
	community := handlers.NewCommunityHandler(r.Applications, r.Gatherings, r.Reports, r.Feedback)
	shares := handlers.NewShareHandler(a.Share)
	admin := handlers.NewAdminHandler(handlers.AdminDeps{
		Content:       r.Content,
		Reports:       r.Reports,
		Feedback:      r.Feedback,
		Applications:  r.Applications,
		Users:         r.Users,
		Index:         a.Search,
		Notifications: a.Notify,
		Cache:         a.Cache,
	}, a.Logger.Named("admin"))

	limited := a.Limiter.Middleware()

	router.GET("/healthz", handlers.Health)
	router.GET("/share/:kind/:id", shares.RedirectShare)

	api := router.Group("/api")
	{
		api.GET("/home-cooks", users.ListHomeCooks)
		api.GET("/home-cooks/:id", users.GetHomeCook)
		api.GET("/home-cooks/:id/products", products.ListHomeCookProducts)
		api.GET("/home-cooks/:id/orders", orders.ListHomeCookOrders)

		api.POST("/products", limited, products.CreateProduct)
		api.GET("/products", products.ListProducts)
		api.GET("/products/:id", products.GetProduct)
		api.PATCH("/products/:id", products.UpdateProduct)
		api.DELETE("/products/:id", products.DeleteProduct)

		api.GET("/profile/:id", users.GetProfile)
		api.PATCH("/profile/:id", users.UpdateProfile)

		api.POST("/orders", limited, orders.CreateOrder)
		api.GET("/orders/:id", orders.GetOrder)
		api.PATCH("/orders/:id/status", orders.UpdateOrderStatus)
		api.GET("/users/:id/orders", orders.ListBuyerOrders)

		api.GET("/users/:id/favorites", favorites.ListFavorites)
		api.POST("/users/:id/favorites", favorites.AddFavorite)
		api.DELETE("/users/:id/favorites/:productId", favorites.RemoveFavorite)

		api.POST("/creator-applications", limited, community.SubmitApplication)
		api.POST("/gatherings", limited, community.CreateGathering)
		api.GET("/gatherings", community.ListGatherings)
		api.GET("/gatherings/:id", community.GetGathering)
		api.POST("/reports", limited, community.SubmitReport)
		api.POST("/feedback", limited, community.SubmitFeedback)

		api.GET("/share/:kind/:id", shares.GetShareTarget)
	}

	console := api.Group("/admin", a.Auth.Require())
	{
		console.GET("/content", admin.ListContent)
		console.PATCH("/content/:id/status", admin.UpdateContentStatus)

		console.GET("/reports", admin.ListReports)
		console.PATCH("/reports/:id/status", admin.UpdateReportStatus)

		console.GET("/creator-applications", admin.ListApplications)
		console.POST("/creator-applications/:id/approve", admin.ApproveApplication)
		console.POST("/creator-applications/:id/reject", admin.RejectApplication)

		console.GET("/feedback", admin.ListFeedback)
		console.PATCH("/feedback/:id/status", admin.UpdateFeedbackStatus)

		console.GET("/notifications", admin.ListNotifications)
		console.POST("/notifications", admin.SendNotification)

		console.POST("/vector-search", admin.VectorSearch)
		console.POST("/vector-search/index/:contentId", admin.IndexContent)
	}
}
