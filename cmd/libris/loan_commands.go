package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"libris/internal/api"
	"libris/internal/library"
)

// loanDateLayout is the YYYYMMDD ordinal used for loan_date.
const loanDateLayout = "20060102"

func todayLoanDate(now time.Time) int64 {
	value, _ := strconv.ParseInt(now.Format(loanDateLayout), 10, 64)
	return value
}

func newLoanCommand(ctx *commandContext) *cobra.Command {
	loanCmd := &cobra.Command{
		Use:   "loan",
		Short: "Issue and return loans",
	}

	loanCmd.AddCommand(newLoanListCommand(ctx))
	loanCmd.AddCommand(newLoanShowCommand(ctx))
	loanCmd.AddCommand(newLoanIssueCommand(ctx))
	loanCmd.AddCommand(newLoanUpdateCommand(ctx))
	loanCmd.AddCommand(newLoanReturnCommand(ctx))
	loanCmd.AddCommand(newLoanDeleteCommand(ctx))

	return loanCmd
}

func newLoanListCommand(ctx *commandContext) *cobra.Command {
	var returned string
	var bookID, userID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List loans",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter library.LoanFilter
			if cmd.Flags().Changed("returned") {
				value, err := strconv.ParseBool(strings.TrimSpace(returned))
				if err != nil {
					return fmt.Errorf("invalid --returned value %q", returned)
				}
				filter.Returned = &value
			}
			if cmd.Flags().Changed("book") {
				filter.BookID = &bookID
			}
			if cmd.Flags().Changed("user") {
				filter.UserID = &userID
			}
			return ctx.withService(func(svc *api.LibraryService) error {
				list, err := svc.ListLoans(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, list)
				}
				out := cmd.OutOrStdout()
				if len(list.Loans) == 0 {
					fmt.Fprintln(out, "No loans")
					return nil
				}
				newRenderer(out).loans(list.Loans)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&returned, "returned", "", "Filter by returned state (true or false)")
	cmd.Flags().Int64Var(&bookID, "book", 0, "Only loans of this book")
	cmd.Flags().Int64Var(&userID, "user", 0, "Only loans of this user")
	return cmd
}

func newLoanShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("loan", args[0])
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *api.LibraryService) error {
				loan, err := svc.GetLoan(cmd.Context(), id)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, loan)
				}
				newRenderer(cmd.OutOrStdout()).loans([]api.Loan{loan})
				return nil
			})
		},
	}
}

func newLoanIssueCommand(ctx *commandContext) *cobra.Command {
	var bookID, userID, loanDate int64
	var length int

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a book to a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			var in library.NewLoan
			if cmd.Flags().Changed("book") {
				in.BookID = library.Some(bookID)
			}
			if cmd.Flags().Changed("user") {
				in.UserID = library.Some(userID)
			}
			if cmd.Flags().Changed("length") {
				in.LoanLength = library.Some(length)
			}
			if cmd.Flags().Changed("date") {
				in.LoanDate = library.Some(loanDate)
			} else {
				in.LoanDate = library.Some(todayLoanDate(time.Now()))
			}
			return ctx.withService(func(svc *api.LibraryService) error {
				resp, err := svc.CreateLoan(cmd.Context(), in)
				if err != nil {
					return err
				}
				return printLoanResponse(cmd, ctx, resp)
			})
		},
	}
	cmd.Flags().Int64Var(&bookID, "book", 0, "Book id")
	cmd.Flags().Int64Var(&userID, "user", 0, "User id")
	cmd.Flags().Int64Var(&loanDate, "date", 0, "Loan date as YYYYMMDD (default today)")
	cmd.Flags().IntVar(&length, "length", 0, "Loan length in days")
	return cmd
}

func newLoanUpdateCommand(ctx *commandContext) *cobra.Command {
	var bookID, userID, loanDate int64
	var length int
	var returned bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update the given fields of a loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("loan", args[0])
			if err != nil {
				return err
			}
			var patch library.LoanPatch
			if cmd.Flags().Changed("book") {
				patch.BookID = library.Some(bookID)
			}
			if cmd.Flags().Changed("user") {
				patch.UserID = library.Some(userID)
			}
			if cmd.Flags().Changed("date") {
				patch.LoanDate = library.Some(loanDate)
			}
			if cmd.Flags().Changed("length") {
				patch.LoanLength = library.Some(length)
			}
			if cmd.Flags().Changed("returned") {
				patch.Returned = library.Some(returned)
			}
			return ctx.withService(func(svc *api.LibraryService) error {
				resp, err := svc.UpdateLoan(cmd.Context(), id, patch)
				if err != nil {
					return err
				}
				return printLoanResponse(cmd, ctx, resp)
			})
		},
	}
	cmd.Flags().Int64Var(&bookID, "book", 0, "Book id")
	cmd.Flags().Int64Var(&userID, "user", 0, "User id")
	cmd.Flags().Int64Var(&loanDate, "date", 0, "Loan date as YYYYMMDD")
	cmd.Flags().IntVar(&length, "length", 0, "Loan length in days")
	cmd.Flags().BoolVar(&returned, "returned", false, "Returned state")
	return cmd
}

func newLoanReturnCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "return <id>",
		Short: "Mark a loan returned and put the copy back on the shelf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("loan", args[0])
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *api.LibraryService) error {
				resp, err := svc.ReturnLoan(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printLoanResponse(cmd, ctx, resp)
			})
		},
	}
}

func newLoanDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a loan, restoring stock if the copy is still out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("loan", args[0])
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *api.LibraryService) error {
				resp, err := svc.DeleteLoan(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printLoanResponse(cmd, ctx, resp)
			})
		},
	}
}

func printLoanResponse(cmd *cobra.Command, ctx *commandContext, resp api.LoanResponse) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, resp)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, resp.Message)
	if resp.Loan != nil {
		newRenderer(out).loans([]api.Loan{*resp.Loan})
	}
	return nil
}
