package main

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kepzesmindenkinek/backend/core"
	"github.com/kepzesmindenkinek/backend/core/user"
)

var errPasswordMismatch = errors.New("the two passwords didn't match")

func (cli *commandLine) createSuperuserCmd() *cobra.Command {
	var uname, email, firstName, lastName string
	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create an active superuser",
		RunE: func(cmd *cobra.Command, args []string) error {
			if uname == "" || email == "" {
				_ = cmd.Usage()
				return errHelp
			}
			pwd, err := cli.promptPassword("Enter password:")
			if err != nil {
				return err
			}
			if pwd == "" {
				_ = cmd.Usage()
				return errHelp
			}
			confirm, err := cli.promptPassword("Enter password (again):")
			if err != nil {
				return err
			}
			if pwd != confirm {
				return errPasswordMismatch
			}

			usr, err := cli.createSuperuser(uname, email, firstName, lastName, pwd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "Superuser %q created (id: %d).\n", usr.Username, usr.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&uname, "username", "", "The superuser's username.")
	cmd.Flags().StringVar(&email, "email", "", "The superuser's email address. Applications and callback requests are sent here.")
	cmd.Flags().StringVar(&firstName, "first-name", "", "The superuser's first name.")
	cmd.Flags().StringVar(&lastName, "last-name", "", "The superuser's last name.")
	return cmd
}

func (cli *commandLine) createSuperuser(uname, email, firstName, lastName, pwd string) (user.User, error) {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	if _, err := mail.ParseAddress(email); err != nil {
		return user.User{}, errors.Errorf("%q is not a valid email address", email)
	}

	if err := cli.usrRepo.CheckUsernameUniqueness(ctx, uname, email); err != nil {
		return user.User{}, err
	}

	usr := user.User{
		Username:    uname,
		FirstName:   core.CleanString(firstName),
		LastName:    core.CleanString(lastName),
		Email:       email,
		IsActive:    true,
		IsSuperuser: true,
		DateJoined:  time.Now().UTC(),
	}
	if err := usr.SetPassword(pwd); err != nil {
		return user.User{}, err
	}
	return cli.usrRepo.CreateUser(ctx, usr)
}
