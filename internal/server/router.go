package server

import (
	"net"
	"net/http"

	"ecommerce-platform/internal/auth"
	"ecommerce-platform/internal/handlers"
	"ecommerce-platform/internal/middleware"
	"ecommerce-platform/internal/services"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Options configure the HTTP surface of one application.
type Options struct {
	Sessions     *auth.SessionManager
	CSRF         *middleware.CSRFMiddleware
	CORS         middleware.CORSConfig
	LoginLimiter *middleware.LoginRateLimiter
	// TrustedProxies may set the client address through forwarding headers.
	TrustedProxies []*net.IPNet
	// UploadsDir is served under /uploads/ for the local blob store.
	UploadsDir string
	Logger     logrus.FieldLogger
}

// StorefrontCSRFExempt are the procedures a browser may call before it holds
// a CSRF token.
var StorefrontCSRFExempt = []string{handlers.Path("login"), handlers.Path("signup")}

// AdminCSRFExempt is the dashboard counterpart of StorefrontCSRFExempt.
var AdminCSRFExempt = []string{handlers.Path("adminLog")}

func newRouter(gate *middleware.RouteGate, opts Options) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RealIP(opts.TrustedProxies))
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(middleware.Recoverer(opts.Logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(opts.CORS))
	r.Use(opts.CSRF.EnsureToken)
	r.Use(opts.CSRF.Protect)
	r.Use(middleware.Gate(gate, opts.Sessions))

	r.NotFound(middleware.NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler().ServeHTTP)

	if opts.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadsDir))))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	return r
}

// NewStorefrontRouter builds the customer application.
func NewStorefrontRouter(svc *Services, opts Options) http.Handler {
	r := newRouter(middleware.NewRouteGate(middleware.StorefrontRoutes()), opts)

	rpc := handlers.NewRPC(opts.Logger)
	sessions := handlers.NewUserSessionHandler(rpc, svc.Auth, opts.Sessions, opts.Logger)
	shop := handlers.NewStorefrontHandler(rpc, svc.Catalog, svc.Carts, svc.Checkout, svc.Orders, svc.Wishlist)

	r.Group(func(r chi.Router) {
		r.Use(middleware.LoginRateLimit(opts.LoginLimiter, opts.Logger))
		rpc.Mount(r, "login", sessions.Login)
		rpc.Mount(r, "signup", sessions.Signup)
	})

	rpc.Mount(r, "session.getSession", sessions.GetSession)
	rpc.Mount(r, "session.deleteSession", sessions.DeleteSession)
	rpc.Mount(r, "crud.getProducts", shop.GetProducts)
	rpc.Mount(r, "crud.findProductById", shop.FindProductByID)
	rpc.Mount(r, "crud.getCategories", shop.GetCategories)
	rpc.Mount(r, "crud.findCategoryById", shop.FindCategoryByID)
	rpc.Mount(r, "crud.getReviews", shop.GetReviews)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession)

		rpc.Mount(r, "session.createSession", sessions.CreateSession)
		rpc.Mount(r, "session.deleteAllSessions", sessions.DeleteAllSessions)

		rpc.Mount(r, "crud.getAddresses", shop.GetAddresses)
		rpc.Mount(r, "crud.createAddress", shop.CreateAddress)
		rpc.Mount(r, "crud.updateAddress", shop.UpdateAddress)
		rpc.Mount(r, "crud.deleteAddress", shop.DeleteAddress)
		rpc.Mount(r, "crud.createReview", shop.CreateReview)

		rpc.Mount(r, "cart.getCart", shop.GetCart)
		rpc.Mount(r, "cart.addToCart", shop.AddToCart)
		rpc.Mount(r, "cart.changeQuantity", shop.ChangeQuantity)
		rpc.Mount(r, "cart.removeItem", shop.RemoveItem)
		rpc.Mount(r, "cart.clear", shop.ClearCart)
		rpc.Mount(r, "checkout.placeOrder", shop.PlaceOrder)

		rpc.Mount(r, "order.getOrders", shop.GetOrders)
		rpc.Mount(r, "order.findOrderById", shop.FindOrderByID)
		rpc.Mount(r, "order.cancelOrder", shop.CancelOrder)

		rpc.Mount(r, "wishlist.getWishlist", shop.GetWishlist)
		rpc.Mount(r, "wishlist.toggle", shop.ToggleWishlist)
	})

	return r
}

// NewAdminRouter builds the dashboard application.
func NewAdminRouter(svc *Services, opts Options) http.Handler {
	r := newRouter(middleware.NewRouteGate(middleware.AdminRoutes()), opts)

	rpc := handlers.NewRPC(opts.Logger)
	sessions := handlers.NewAdminSessionHandler(rpc, svc.Auth, opts.Sessions, opts.Logger)
	admin := handlers.NewAdminHandler(rpc, svc.Accounts, svc.Catalog, svc.Orders, svc.Cleanup, opts.Logger)
	images := handlers.NewImageHandler(rpc, svc.Images)

	r.With(middleware.LoginRateLimit(opts.LoginLimiter, opts.Logger)).
		Post(handlers.Path("adminLog"), rpc.Handle(sessions.AdminLogin))

	rpc.Mount(r, "adminSession.getAdminSession", sessions.GetSession)
	rpc.Mount(r, "adminSession.deleteAdminSession", sessions.DeleteSession)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(svc.Store.Admins, false, opts.Logger))

		rpc.Mount(r, "adminSession.createAdminSession", sessions.CreateSession)
		rpc.Mount(r, "adminSession.deleteAllAdminSessions", sessions.DeleteAllSessions)

		rpc.Mount(r, "crud.getUsers", admin.GetUsers)
		rpc.Mount(r, "crud.findUserById", admin.FindUserByID)
		rpc.Mount(r, "crud.createUser", admin.CreateUser)
		rpc.Mount(r, "crud.updateUser", admin.UpdateUser)
		rpc.Mount(r, "crud.deleteUser", admin.DeleteUser)

		rpc.Mount(r, "crud.getAdmins", admin.GetAdmins)
		rpc.Mount(r, "crud.findAdminById", admin.FindAdminByID)

		rpc.Mount(r, "crud.getCategories", admin.GetCategories)
		rpc.Mount(r, "crud.findCategoryById", admin.FindCategoryByID)
		rpc.Mount(r, "crud.createCategory", admin.CreateCategory)
		rpc.Mount(r, "crud.updateCategory", admin.UpdateCategory)
		rpc.Mount(r, "crud.deleteCategory", admin.DeleteCategory)

		rpc.Mount(r, "crud.getProducts", admin.GetProducts)
		rpc.Mount(r, "crud.findProductById", admin.FindProductByID)
		rpc.Mount(r, "crud.createProduct", admin.CreateProduct)
		rpc.Mount(r, "crud.updateProduct", admin.UpdateProduct)
		rpc.Mount(r, "crud.deleteProduct", admin.DeleteProduct)

		rpc.Mount(r, "crud.getAddresses", admin.GetAddresses)
		rpc.Mount(r, "crud.findAddressById", admin.FindAddressByID)
		rpc.Mount(r, "crud.createAddress", admin.CreateAddress)
		rpc.Mount(r, "crud.updateAddress", admin.UpdateAddress)
		rpc.Mount(r, "crud.deleteAddress", admin.DeleteAddress)

		rpc.Mount(r, "crud.getReviews", admin.GetReviews)
		rpc.Mount(r, "crud.findReviewById", admin.FindReviewByID)
		rpc.Mount(r, "crud.createReview", admin.CreateReview)
		rpc.Mount(r, "crud.updateReview", admin.UpdateReview)
		rpc.Mount(r, "crud.deleteReview", admin.DeleteReview)

		rpc.Mount(r, "order.getOrders", admin.GetOrders)
		rpc.Mount(r, "order.findOrderById", admin.FindOrderByID)
		rpc.Mount(r, "order.updateOrderStatus", admin.UpdateOrderStatus)
		rpc.Mount(r, "order.updateOrderItems", admin.UpdateOrderItems)
		rpc.Mount(r, "order.deleteOrder", admin.DeleteOrder)

		rpc.Mount(r, "s3.uploadProductImage", images.Upload(services.ImageKindProduct))
		rpc.Mount(r, "s3.uploadCategoryImage", images.Upload(services.ImageKindCategory))
		rpc.Mount(r, "s3.uploadAdminImage", images.Upload(services.ImageKindAdmin))
		rpc.Mount(r, "s3.getSignedUrl", images.GetSignedURL)
		rpc.Mount(r, "s3.listImages", images.ListImages)
		rpc.Mount(r, "s3.deleteImage", images.DeleteImage)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(svc.Store.Admins, true, opts.Logger))

		rpc.Mount(r, "crud.createAdmin", admin.CreateAdmin)
		rpc.Mount(r, "crud.updateAdmin", admin.UpdateAdmin)
		rpc.Mount(r, "crud.deleteAdmin", admin.DeleteAdmin)
	})

	return r
}
