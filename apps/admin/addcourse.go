package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kepzesmindenkinek/backend/core"
	"github.com/kepzesmindenkinek/backend/core/course"
)

func (cli *commandLine) addCourseCmd() *cobra.Command {
	var nc course.NewCourse
	var pensioners, nonPensioners, inactive bool
	cmd := &cobra.Command{
		Use:   "addcourse",
		Short: "Add a course",
		RunE: func(cmd *cobra.Command, args []string) error {
			if nc.Name == "" {
				_ = cmd.Usage()
				return errHelp
			}
			active := !inactive
			nc.ForPensioners = &pensioners
			nc.ForNonPensioners = &nonPensioners
			nc.Active = &active

			c, err := cli.addCourse(nc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "Course %q created (slug: %s).\n", c.Name, c.Slug)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&nc.Name, "name", "", "The course name.")
	flags.IntVar(&nc.Price, "price", 0, "The price in HUF.")
	flags.StringVar(&nc.Description, "description", "", "The description; items are separated by '*'.")
	flags.StringVar(&nc.Duration, "duration", "", "The duration, e.g. '10 alkalom'.")
	flags.StringVar(&nc.ExtraInfo, "extra-info", "", "Extra information.")
	flags.StringVar(&nc.Slug, "slug", "", "The URL slug. Derived from the name when empty.")
	flags.BoolVar(&pensioners, "pensioners", true, "List the course for pensioners.")
	flags.BoolVar(&nonPensioners, "non-pensioners", true, "List the course for non pensioners.")
	flags.BoolVar(&inactive, "inactive", false, "Create the course inactive.")
	return cmd
}

func (cli *commandLine) addCourse(nc course.NewCourse) (course.Course, error) {
	if err := nc.Validate(cli.validate); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			return course.Course{}, invalidFields(core.TranslateValidationErrors(vErrs, cli.translator))
		}
		return course.Course{}, err
	}
	return cli.crsSvc.Create(context.Background(), nc)
}

// invalidFields flattens field errors into one readable error.
func invalidFields(fldErrs map[string]string) error {
	msgs := make([]string, 0, len(fldErrs))
	for fld, msg := range fldErrs {
		msgs = append(msgs, fld+": "+msg)
	}
	sort.Strings(msgs)
	return errors.New("invalid course: " + strings.Join(msgs, "; "))
}
