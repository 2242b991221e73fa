package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"libris/internal/api"
	"libris/internal/library"
)

type userFlags struct {
	name string
	city string
	age  int
}

func (f *userFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Full name")
	cmd.Flags().StringVar(&f.city, "city", "", "City")
	cmd.Flags().IntVar(&f.age, "age", 0, "Age in years")
}

func (f *userFlags) patch(cmd *cobra.Command) library.UserPatch {
	var p library.UserPatch
	if cmd.Flags().Changed("name") {
		p.Name = library.Some(f.name)
	}
	if cmd.Flags().Changed("city") {
		p.City = library.Some(f.city)
	}
	if cmd.Flags().Changed("age") {
		p.Age = library.Some(f.age)
	}
	return p
}

func newUserCommand(ctx *commandContext) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage library members",
	}

	userCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.LibraryService) error {
				list, err := svc.ListUsers(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, list)
				}
				out := cmd.OutOrStdout()
				if len(list.Users) == 0 {
					fmt.Fprintln(out, "No users")
					return nil
				}
				newRenderer(out).users(list.Users)
				return nil
			})
		},
	})

	userCmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("user", args[0])
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *api.LibraryService) error {
				user, err := svc.GetUser(cmd.Context(), id)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, user)
				}
				newRenderer(cmd.OutOrStdout()).users([]api.User{user})
				return nil
			})
		},
	})

	var addFlags userFlags
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Register a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := addFlags.patch(cmd)
			in := library.NewUser{Name: p.Name, City: p.City, Age: p.Age}
			return ctx.withService(func(svc *api.LibraryService) error {
				resp, err := svc.AddUser(cmd.Context(), in)
				if err != nil {
					return err
				}
				return printUserResponse(cmd, ctx, resp)
			})
		},
	}
	addFlags.register(addCmd)
	userCmd.AddCommand(addCmd)

	var updateFlags userFlags
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update the given fields of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("user", args[0])
			if err != nil {
				return err
			}
			patch := updateFlags.patch(cmd)
			return ctx.withService(func(svc *api.LibraryService) error {
				resp, err := svc.UpdateUser(cmd.Context(), id, patch)
				if err != nil {
					return err
				}
				return printUserResponse(cmd, ctx, resp)
			})
		},
	}
	updateFlags.register(updateCmd)
	userCmd.AddCommand(updateCmd)

	userCmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user with no active loans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("user", args[0])
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *api.LibraryService) error {
				resp, err := svc.DeleteUser(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printUserResponse(cmd, ctx, resp)
			})
		},
	})

	return userCmd
}

func printUserResponse(cmd *cobra.Command, ctx *commandContext, resp api.UserResponse) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, resp)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, resp.Message)
	if resp.User != nil {
		newRenderer(out).users([]api.User{*resp.User})
	}
	return nil
}
