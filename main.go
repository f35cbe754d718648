package main

import (
	"context"
	"flag"
	"log/syslog"
	"os"
	"os/signal"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/selinkarabicakkk/ecommerce-backend/activity"
	"github.com/selinkarabicakkk/ecommerce-backend/catalog"
	"github.com/selinkarabicakkk/ecommerce-backend/pgdb"
	"github.com/selinkarabicakkk/ecommerce-backend/recommend"
	"github.com/selinkarabicakkk/ecommerce-backend/rest"
	"github.com/selinkarabicakkk/ecommerce-backend/user"
	"github.com/sirupsen/logrus"
	logrusys "github.com/sirupsen/logrus/hooks/syslog"
	"github.com/tidwall/buntdb"
	"github.com/uptrace/bun"
	_ "github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

func listenAndServe(
	ctx context.Context,
	bdb *buntdb.DB,
	db *bun.DB,
	debug bool,
) func() error {
	userStore := user.Store{DB: db}
	sessionStore := user.SessionStore{Buntdb: bdb, UserStore: &userStore}

	catalogStore := catalog.PgStore{DB: db}
	eventStore := activity.PgStore{DB: db}

	catalogController := catalog.Controller{Store: catalogStore}
	activityController := activity.Controller{Store: eventStore, Catalog: catalogStore}
	recommendController := recommend.Controller{
		Service: &recommend.Service{Events: eventStore, Catalog: catalogStore},
	}

	server := fiber.New()
	server.Use(logHandler())

	api := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorHandler: rest.ErrorHandler,
	})

	allowOrigins := "https://sklep.selinkarabicak.pl"
	if debug {
		allowOrigins += ", http://localhost:3000"
	}
	api.Use(cors.New(cors.Config{AllowOrigins: allowOrigins}))

	api.Get("/status", rest.CombineHandlers(sessionStore.Authorize, monitor.New()))
	catalogController.InstallTo(api)
	activityController.InstallTo(sessionStore.Authorize, api)
	recommendController.InstallTo(sessionStore.Authorize, api)
	server.Mount("/api/", api)

	server.Use(rest.NotFoundHandler)

	var addr string
	if debug {
		addr = "127.0.0.1:2137"
	} else {
		addr = ":2137"
	}
	go server.Listen(addr)

	return func() error {
		return server.Shutdown()
	}
}

func setupLogger(verbose bool) {
	logrus.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: time.Stamp,
		FullTimestamp:   true,
	})
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	syslogHook, err := logrusys.NewSyslogHook("", "", syslog.LOG_USER, "shop_backend")
	if err != nil {
		logrus.WithError(err).Fatalln("Could not create syslog hook.")
		return
	}
	logrus.AddHook(syslogHook)
}

func logHandler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		rest.RequestLog(ctx).Infoln("Handling request.")
		return ctx.Next()
	}
}

func awaitInterruption() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c
}

func main() {
	flag.Parse()
	debug := os.Getenv("DEBUG") == "true"
	setupLogger(debug)
	logrus.Infoln("Starting backend.")

	pgDsn := os.Getenv("POSTGRES_DSN")
	if pgDsn == "" {
		logrus.Fatalln("Environment variable POSTGRES_DSN is not set!")
	}

	sessionDbPath := os.Getenv("SESSION_DB")
	if sessionDbPath == "" {
		sessionDbPath = "sessions.db"
	}
	bdb, err := buntdb.Open(sessionDbPath)
	if err != nil {
		logrus.WithError(err).Fatalln("Could not open buntdb.")
	}
	defer bdb.Close()

	logrus.Infoln("Opening database.")
	db := pgdb.Open(context.Background(), pgDsn)
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	defer db.DB.Close()
	defer db.Close()

	logrus.Infoln("Starting listening... To shut down use ^C")
	shutdown := listenAndServe(context.Background(), bdb, db, debug)

	awaitInterruption()

	logrus.Infoln("Shutting down...")
	err = shutdown()
	if err != nil {
		logrus.WithError(err).Errorln("Could not shut down server.")
	}
}
