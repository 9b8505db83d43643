// Package main library API.
//
// @title           Biblioteque API
// @version         1.0
// @description     Library management service (books, categories, loans, reservations, users).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/AlmamyHaidara/biblioteque/app/echoServer"
	authctrl "github.com/AlmamyHaidara/biblioteque/app/echoServer/controller/auth"
	bookctrl "github.com/AlmamyHaidara/biblioteque/app/echoServer/controller/book"
	categoryctrl "github.com/AlmamyHaidara/biblioteque/app/echoServer/controller/category"
	loanctrl "github.com/AlmamyHaidara/biblioteque/app/echoServer/controller/loan"
	reservationctrl "github.com/AlmamyHaidara/biblioteque/app/echoServer/controller/reservation"
	userctrl "github.com/AlmamyHaidara/biblioteque/app/echoServer/controller/user"
	"github.com/AlmamyHaidara/biblioteque/app/echoServer/validation"
	"github.com/AlmamyHaidara/biblioteque/config"
	bookrepo "github.com/AlmamyHaidara/biblioteque/repository/book"
	categoryrepo "github.com/AlmamyHaidara/biblioteque/repository/category"
	loanrepo "github.com/AlmamyHaidara/biblioteque/repository/loan"
	reservationrepo "github.com/AlmamyHaidara/biblioteque/repository/reservation"
	tokenrepo "github.com/AlmamyHaidara/biblioteque/repository/token"
	userrepo "github.com/AlmamyHaidara/biblioteque/repository/user"
	authsvc "github.com/AlmamyHaidara/biblioteque/service/auth"
	booksvc "github.com/AlmamyHaidara/biblioteque/service/book"
	categorysvc "github.com/AlmamyHaidara/biblioteque/service/category"
	loansvc "github.com/AlmamyHaidara/biblioteque/service/loan"
	overduesvc "github.com/AlmamyHaidara/biblioteque/service/overdue"
	reservationsvc "github.com/AlmamyHaidara/biblioteque/service/reservation"
	usersvc "github.com/AlmamyHaidara/biblioteque/service/user"
	"github.com/AlmamyHaidara/biblioteque/util/database"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Error("db migrate failed", "err", err)
		os.Exit(1)
	}

	// repos
	ur := userrepo.New(db)
	cr := categoryrepo.New(db)
	br := bookrepo.New(db)
	lr := loanrepo.New(db)
	rr := reservationrepo.New(db)
	tr := tokenrepo.New(db)

	// services
	as := authsvc.New(ur, tr, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	us := usersvc.New(ur)
	cs := categorysvc.New(cr, br)
	bs := booksvc.New(br, cr, lr)
	ls := loansvc.New(db, lr, br, ur, rr)
	rs := reservationsvc.New(db, rr, ur, br, lr)
	od := overduesvc.New(lr, tr, log)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	userC := &userctrl.Controller{Svc: us, V: v, Log: log}
	categoryC := &categoryctrl.Controller{Svc: cs, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	loanC := &loanctrl.Controller{Svc: ls, V: v, Log: log}
	reservationC := &reservationctrl.Controller{Svc: rs, V: v, Log: log}

	// echo
	e := echo.New()
	e.HideBanner = true
	e.JSONSerializer = echoServer.JSONSerializer{}
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		if err := db.Pool.Ping(c.Request().Context()); err != nil {
			return c.JSON(503, map[string]any{"status": "error", "message": "database unreachable"})
		}
		return c.JSON(200, map[string]any{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:        authC,
		User:        userC,
		Book:        bookC,
		Category:    categoryC,
		Loan:        loanC,
		Reservation: reservationC,

		JWTSecret: cfg.JWTSecret,
	})

	// nightly sweep: flips overdue loans and prunes expired refresh tokens
	sched := cron.New()
	if _, err := sched.AddFunc(cfg.OverdueCronSpec, func() {
		if err := od.Run(context.Background()); err != nil {
			log.Error("overdue sweep failed", "err", err)
		}
	}); err != nil {
		log.Error("cron schedule invalid", "spec", cfg.OverdueCronSpec, "err", err)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)
	e.Logger.Fatal(e.Start(":" + port))
}
