package echoServer

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	authctrl "github.com/AlmamyHaidara/biblioteque/app/echoServer/controller/auth"
	bookctrl "github.com/AlmamyHaidara/biblioteque/app/echoServer/controller/book"
	categoryctrl "github.com/AlmamyHaidara/biblioteque/app/echoServer/controller/category"
	loanctrl "github.com/AlmamyHaidara/biblioteque/app/echoServer/controller/loan"
	reservationctrl "github.com/AlmamyHaidara/biblioteque/app/echoServer/controller/reservation"
	userctrl "github.com/AlmamyHaidara/biblioteque/app/echoServer/controller/user"
	"github.com/AlmamyHaidara/biblioteque/model"
	jwtutil "github.com/AlmamyHaidara/biblioteque/util/jwt"
)

type C struct {
	Auth        *authctrl.Controller
	User        *userctrl.Controller
	Book        *bookctrl.Controller
	Category    *categoryctrl.Controller
	Loan        *loanctrl.Controller
	Reservation *reservationctrl.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	v1 := e.Group("/api/v1")

	// Public
	v1.POST("/auth/register", c.Auth.Register)
	v1.POST("/auth/login", c.Auth.Login)
	v1.POST("/auth/refresh-token", c.Auth.Refresh)
	v1.POST("/auth/logout", c.Auth.Logout)
	v1.GET("/books", c.Book.List)
	v1.GET("/books/:id", c.Book.Detail)
	v1.GET("/categories", c.Category.List)
	v1.GET("/categories/:id", c.Category.Detail)

	// Authenticated
	authed := e.Group("/api/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return new(jwtutil.Claims) },
	}))
	authed.Use(extractIdentity)

	staff := RequireRoles(model.RoleAdmin, model.RoleLibrarian)
	admin := RequireRoles(model.RoleAdmin)

	authed.POST("/auth/logout-all", c.Auth.LogoutAll)

	// Users
	authed.GET("/users/me", c.User.Me)
	authed.PATCH("/users/change-password", c.User.ChangePassword)
	authed.GET("/users", c.User.List, admin)
	authed.GET("/users/:id", c.User.Detail, admin)
	authed.PATCH("/users/:id", c.User.Update, admin)
	authed.DELETE("/users/:id", c.User.Delete, admin)

	// Books / categories (writes)
	authed.POST("/books", c.Book.Create, staff)
	authed.PATCH("/books/:id", c.Book.Update, staff)
	authed.DELETE("/books/:id", c.Book.Delete, staff)
	authed.POST("/categories", c.Category.Create, staff)
	authed.PATCH("/categories/:id", c.Category.Update, staff)
	authed.DELETE("/categories/:id", c.Category.Delete, staff)

	// Loans
	authed.GET("/loans/my-loans", c.Loan.MyLoans)
	authed.GET("/loans", c.Loan.List, staff)
	authed.GET("/loans/:id", c.Loan.Detail, staff)
	authed.POST("/loans", c.Loan.Create, staff)
	authed.PATCH("/loans/:id", c.Loan.Update, staff)

	// Reservations
	authed.GET("/reservations/my-reservations", c.Reservation.MyReservations)
	authed.POST("/reservations/cancel/:id", c.Reservation.Cancel)
	authed.GET("/reservations", c.Reservation.List, staff)
	authed.GET("/reservations/:id", c.Reservation.Detail, staff)
	authed.POST("/reservations", c.Reservation.Create, staff)
	authed.PATCH("/reservations/:id", c.Reservation.Update, staff)
}

// extractIdentity copies the verified claims into plain context keys so
// handlers don't reach into the token.
func extractIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tok, ok := c.Get("user").(*jwt.Token)
		if !ok || tok == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"status": "error", "message": "not authenticated"})
		}
		claims, ok := tok.Claims.(*jwtutil.Claims)
		if !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"status": "error", "message": "not authenticated"})
		}
		uid, err := claims.UserID()
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"status": "error", "message": "not authenticated"})
		}
		c.Set("user_id", uid)
		c.Set("role", claims.Role)
		return next(c)
	}
}
