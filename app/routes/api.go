// Package routes wires the HTTP surface: controllers, gates, and the
// operational endpoints.
package routes

import (
	"net/http"

	"github.com/shashiranjanraj/deviceexpress/app/controllers"
	"github.com/shashiranjanraj/deviceexpress/app/models"
	"github.com/shashiranjanraj/deviceexpress/app/repositories"
	"github.com/shashiranjanraj/deviceexpress/app/services"
	"github.com/shashiranjanraj/deviceexpress/pkg/database"
	"github.com/shashiranjanraj/deviceexpress/pkg/metrics"
	"github.com/shashiranjanraj/deviceexpress/pkg/middleware"
	"github.com/shashiranjanraj/deviceexpress/pkg/payments"
	"github.com/shashiranjanraj/deviceexpress/pkg/queue"
	"github.com/shashiranjanraj/deviceexpress/pkg/response"
	"github.com/shashiranjanraj/deviceexpress/pkg/router"
)

// RegisterAPI mounts every route. The store handle and payment provider are
// passed in rather than reached for globally, so the whole surface can be
// stood up against fakes.
func RegisterAPI(r *router.Router, store *database.Store, provider payments.Provider) {
	users := repositories.NewUserRepository(store)
	catalog := repositories.NewCatalogRepository(store)
	bookings := repositories.NewBookingRepository(store)

	authCtl := controllers.NewAuthController(services.NewAuthService(users))
	catalogCtl := controllers.NewCatalogController(catalog)

	paymentSvc := services.NewPaymentService(bookings, catalog, provider)
	// A completed sale retires the product; drop its cached listing too.
	paymentSvc.OnProductSold(catalogCtl.InvalidateCategory)
	bookingCtl := controllers.NewBookingController(bookings, paymentSvc)

	moderationCtl := controllers.NewModerationController(users, catalog, services.NewModerationService(users, catalog))
	reviewCtl := controllers.NewReviewController(users)

	requireSeller := middleware.RequireRole(users, models.RoleSeller)
	requireAdmin := middleware.RequireRole(users, models.RoleAdmin)

	r.Get("/", "home", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("DeviceExpress server is running"))
	})
	r.Get("/healthz", "healthz", func(w http.ResponseWriter, req *http.Request) {
		if store != nil {
			if err := store.Ping(req.Context()); err != nil {
				response.Error(w, http.StatusServiceUnavailable, "store unreachable")
				return
			}
		}
		response.Message(w, "ok")
	})
	r.Get("/metrics", "metrics", metrics.Handler())

	// Open surface.
	r.Post("/users", "users.register", authCtl.Register)
	r.Get("/jwt", "auth.token", authCtl.Token)
	r.Get("/categories", "categories.list", catalogCtl.Categories)
	r.Get("/userReviews", "reviews.list", reviewCtl.List)
	r.Post("/payments", "payments.complete", bookingCtl.Complete)
	r.Get("/storage/*", "storage.file", controllers.ServeStorage)

	// Everything below needs a valid token.
	auth := r.Group("", middleware.VerifyJWT)

	auth.Get("/users/admin/{email}", "users.isAdmin", authCtl.IsAdmin)
	auth.Get("/users/seller/{email}", "users.isSeller", authCtl.IsSeller)
	auth.Get("/category/{name}", "categories.products", catalogCtl.ProductsByCategory)
	auth.Post("/userReviews", "reviews.create", reviewCtl.Create)
	auth.Post("/reportItems", "reports.create", moderationCtl.CreateReport)

	auth.Post("/booking", "bookings.create", bookingCtl.Create)
	auth.Get("/booking", "bookings.own", bookingCtl.List)
	auth.Get("/booking/{id}", "bookings.get", bookingCtl.Get)
	auth.Post("/create-payment-intent", "payments.intent", bookingCtl.CreateIntent)

	// Seller surface.
	seller := r.Group("", middleware.VerifyJWT, requireSeller)

	seller.Post("/category", "products.create", catalogCtl.CreateProduct)
	seller.Get("/category", "products.own", catalogCtl.SellerProducts)
	seller.Put("/productAdvertise/{id}", "products.advertise", catalogCtl.Advertise)
	seller.Delete("/soldProduct/{id}", "products.deleteSold", catalogCtl.DeleteSold)
	seller.Post("/productImage/{id}", "products.image", catalogCtl.UploadImage)

	// Admin surface.
	admin := r.Group("", middleware.VerifyJWT, requireAdmin)

	admin.Get("/users/buyer", "admin.buyers", moderationCtl.Buyers)
	admin.Get("/users/seller", "admin.sellers", moderationCtl.Sellers)
	admin.Delete("/users/buyer/{id}", "admin.deleteBuyer", moderationCtl.DeleteUser)
	// chi requires one wildcard name per path segment, and the role probe
	// already claimed {email} under /users/seller.
	admin.Delete("/users/seller/{email}", "admin.deleteSeller", moderationCtl.DeleteUser)
	admin.Put("/userVerified/{email}", "admin.verifySeller", moderationCtl.VerifySeller)
	admin.Get("/reportItems", "admin.reports", moderationCtl.Reports)
	admin.Delete("/reportedItem/{id}", "admin.resolveReport", moderationCtl.ResolveReport)
	admin.Get("/queue/failed", "admin.failedJobs", func(w http.ResponseWriter, _ *http.Request) {
		response.OK(w, queue.FailedJobs())
	})
}
