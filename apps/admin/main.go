package main

import (
	"fmt"
	"os"

	"github.com/kepzesmindenkinek/backend/core"
	"github.com/kepzesmindenkinek/backend/core/course"
	"github.com/kepzesmindenkinek/backend/core/user"
	emailsvc "github.com/kepzesmindenkinek/backend/services/email"
	logsvc "github.com/kepzesmindenkinek/backend/services/logger"
	"github.com/kepzesmindenkinek/backend/storage/database"
	sqlxrepos "github.com/kepzesmindenkinek/backend/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	zl := logsvc.NewZerolog(conf)
	logger := logsvc.NewZerologLogger(zl.With().Str("component", "admin").Logger())

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer func() { _ = db.Close() }()

	// set up services
	mailSvc, err := emailsvc.New(conf, logger, nil)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up email service: %v", err), err)
	}
	usrRepo := sqlxrepos.NewUserRepository(db)
	usrSvc := user.NewService(usrRepo, mailSvc, conf, logger)

	translator := core.NewTranslator()

	// start CLI
	cli := commandLine{
		conf:       conf,
		db:         db,
		usrRepo:    usrRepo,
		crsSvc:     course.NewService(sqlxrepos.NewCourseRepository(db), usrSvc, mailSvc, conf),
		validate:   core.NewValidator(translator),
		translator: translator,
		out:        os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %s", err), err)
		}
		_ = db.Close()
		os.Exit(1)
	}
}
