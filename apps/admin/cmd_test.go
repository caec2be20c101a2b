package main

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kepzesmindenkinek/backend/core"
	"github.com/kepzesmindenkinek/backend/core/course"
	"github.com/kepzesmindenkinek/backend/core/user"
	emailsvc "github.com/kepzesmindenkinek/backend/services/email"
	logsvc "github.com/kepzesmindenkinek/backend/services/logger"
	inmemdb "github.com/kepzesmindenkinek/backend/storage/database/inmem"
	testutil "github.com/kepzesmindenkinek/backend/tests"
)

type testEnv struct {
	cli     *commandLine
	usrRepo user.Repository
	crsRepo course.Repository
	out     *bytes.Buffer
}

func setup(t *testing.T) testEnv {
	conf := testutil.Config()
	conf.Database.Engine = "sqlite"
	logger := logsvc.NewNopLogger()

	// set up DB & repos
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	crsRepo := inmemdb.NewCourseRepository(db)

	mailSvc := emailsvc.NewDispatcherMock(conf, logger)
	usrSvc := user.NewService(usrRepo, mailSvc, conf, logger)
	translator := core.NewTranslator()
	out := new(bytes.Buffer)

	// start CLI
	return testEnv{
		cli: &commandLine{
			conf:       conf,
			usrRepo:    usrRepo,
			crsSvc:     course.NewService(crsRepo, usrSvc, mailSvc, conf),
			validate:   core.NewValidator(translator),
			translator: translator,
			out:        out,
		},
		usrRepo: usrRepo,
		crsRepo: crsRepo,
		out:     out,
	}
}

// mockPasswords makes the password prompts return pwds in order.
func mockPasswords(t *testing.T, pwds ...string) {
	orig := readPasswordFunc
	t.Cleanup(func() { readPasswordFunc = orig })

	var i int
	readPasswordFunc = func(fd int) ([]byte, error) {
		if i >= len(pwds) {
			return nil, nil
		}
		pwd := pwds[i]
		i++
		return []byte(pwd), nil
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	pwds       []string
	wantErr    error
	wantErrStr string
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest, check func(t *testing.T, tt cliTest)) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			mockPasswords(t, tt.pwds...)

			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				if assert.Error(t, err) {
					assert.Contains(t, err.Error(), tt.wantErrStr)
				}
			default:
				require.NoError(t, err)
				if check != nil {
					check(t, tt)
				}
			}
		})
	}
}

func Test_commandLine_root(t *testing.T) {
	env := setup(t)

	runCLITests(t, env.cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErrStr: `unknown command "lol"`},
	}, nil)
	assert.Contains(t, env.out.String(), "createsuperuser")
}

func Test_commandLine_migrate(t *testing.T) {
	env := setup(t)

	var gotEngine, gotCommand string
	orig := migrateFunc
	t.Cleanup(func() { migrateFunc = orig })
	migrateFunc = func(db *sqlx.DB, engine, command string, args ...string) error {
		gotEngine, gotCommand = engine, command
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	runCLITests(t, env.cli, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: `"lol": no such command`},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	}, func(t *testing.T, tt cliTest) {
		assert.Equal(t, "sqlite", gotEngine)
		assert.Equal(t, tt.args[1], gotCommand)
	})
}

func Test_commandLine_resetPassword(t *testing.T) {
	env := setup(t)
	usr := testutil.CreateUser(t, env.usrRepo, "Anna", "anna", "anna@example.hu", "Tanfolyam-2024!", true, false)

	runCLITests(t, env.cli, []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "--username", "anna"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "--username", "lol"}, pwds: []string{"lol"}, wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "--username", usr.Username}, pwds: []string{"Uj-Jelszo-1"}},
		{name: "reset with email", args: []string{"resetpassword", "--username", "Anna@Example.hu"}, pwds: []string{"Uj-Jelszo-2"}},
	}, func(t *testing.T, tt cliTest) {
		refreshed, err := env.usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
		require.NoError(t, err)
		assert.NoError(t, refreshed.CheckPassword(tt.pwds[0]))
	})
}

func Test_commandLine_createSuperuser(t *testing.T) {
	env := setup(t)
	testutil.CreateUser(t, env.usrRepo, "Anna", "anna", "anna@example.hu", "Tanfolyam-2024!", true, false)

	pwd := "Admin-Jelszo-42"
	runCLITests(t, env.cli, []cliTest{
		{name: "no args", args: []string{"createsuperuser"}, wantErr: errHelp},
		{name: "no email", args: []string{"createsuperuser", "--username", "admin"}, wantErr: errHelp},
		{name: "no password", args: []string{"createsuperuser", "--username", "admin", "--email", "admin@example.hu"}, wantErr: errHelp},
		{
			name:    "passwords mismatch",
			args:    []string{"createsuperuser", "--username", "admin", "--email", "admin@example.hu"},
			pwds:    []string{pwd, "other"},
			wantErr: errPasswordMismatch,
		},
		{
			name:    "taken username",
			args:    []string{"createsuperuser", "--username", "Anna", "--email", "admin@example.hu"},
			pwds:    []string{pwd, pwd},
			wantErr: user.ErrUsernameExists,
		},
		{
			name:       "invalid email",
			args:       []string{"createsuperuser", "--username", "admin", "--email", "admin"},
			pwds:       []string{pwd, pwd},
			wantErrStr: "not a valid email address",
		},
		{
			name: "create",
			args: []string{"createsuperuser", "--username", "Admin", "--email", "Admin@Example.hu", "--first-name", "Hajni"},
			pwds: []string{pwd, pwd},
		},
	}, func(t *testing.T, tt cliTest) {
		usr, err := env.usrRepo.GetUser(context.Background(), user.GetFilter{Username: "admin"})
		require.NoError(t, err)
		assert.Equal(t, "admin@example.hu", usr.Email)
		assert.Equal(t, "Hajni", usr.FirstName)
		assert.True(t, usr.IsActive)
		assert.True(t, usr.IsSuperuser)
		assert.NoError(t, usr.CheckPassword(pwd))
	})
	assert.Contains(t, env.out.String(), `Superuser "admin" created`)
}

func Test_commandLine_addCourse(t *testing.T) {
	env := setup(t)

	runCLITests(t, env.cli, []cliTest{
		{name: "no args", args: []string{"addcourse"}, wantErr: errHelp},
		{
			name:       "invalid course",
			args:       []string{"addcourse", "--name", "Excel (haladó)", "--price=-1"},
			wantErrStr: "invalid course",
		},
		{
			name: "create",
			args: []string{
				"addcourse", "--name", "Excel (haladó)", "--price", "25000",
				"--description", "Táblázatok * Képletek", "--non-pensioners=false",
			},
		},
		{
			name:       "same slug",
			args:       []string{"addcourse", "--name", "Excel (haladó)", "--description", "Táblázatok"},
			wantErrStr: course.ErrSlugExists.Error(),
		},
	}, func(t *testing.T, tt cliTest) {
		c, err := env.crsRepo.GetCourse(context.Background(), course.GetFilter{Slug: "excel-halado"})
		require.NoError(t, err)
		assert.Equal(t, 25000, c.Price)
		assert.True(t, c.ForPensioners)
		assert.False(t, c.ForNonPensioners)
		assert.True(t, c.Active)
	})
}
