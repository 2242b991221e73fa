package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"libris/internal/api"
	"libris/internal/library"
)

type bookFlags struct {
	title  string
	author string
	year   int
	stock  int
}

func (f *bookFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Book title")
	cmd.Flags().StringVar(&f.author, "author", "", "Book author")
	cmd.Flags().IntVar(&f.year, "year", 0, "Year published")
	cmd.Flags().IntVar(&f.stock, "stock", 0, "Copies on the shelf")
}

// patch maps only the flags the caller actually set onto the optional fields.
func (f *bookFlags) patch(cmd *cobra.Command) library.BookPatch {
	var p library.BookPatch
	if cmd.Flags().Changed("title") {
		p.Title = library.Some(f.title)
	}
	if cmd.Flags().Changed("author") {
		p.Author = library.Some(f.author)
	}
	if cmd.Flags().Changed("year") {
		p.YearPublished = library.Some(f.year)
	}
	if cmd.Flags().Changed("stock") {
		p.Stock = library.Some(f.stock)
	}
	return p
}

func newBookCommand(ctx *commandContext) *cobra.Command {
	bookCmd := &cobra.Command{
		Use:   "book",
		Short: "Manage the book catalogue",
	}

	bookCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all books",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.LibraryService) error {
				list, err := svc.ListBooks(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, list)
				}
				out := cmd.OutOrStdout()
				if len(list.Books) == 0 {
					fmt.Fprintln(out, "No books")
					return nil
				}
				newRenderer(out).books(list.Books)
				return nil
			})
		},
	})

	bookCmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("book", args[0])
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *api.LibraryService) error {
				book, err := svc.GetBook(cmd.Context(), id)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, book)
				}
				newRenderer(cmd.OutOrStdout()).books([]api.Book{book})
				return nil
			})
		},
	})

	var addFlags bookFlags
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := addFlags.patch(cmd)
			in := library.NewBook{Title: p.Title, Author: p.Author, YearPublished: p.YearPublished, Stock: p.Stock}
			return ctx.withService(func(svc *api.LibraryService) error {
				resp, err := svc.AddBook(cmd.Context(), in)
				if err != nil {
					return err
				}
				return printBookResponse(cmd, ctx, resp)
			})
		},
	}
	addFlags.register(addCmd)
	bookCmd.AddCommand(addCmd)

	var updateFlags bookFlags
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update the given fields of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("book", args[0])
			if err != nil {
				return err
			}
			patch := updateFlags.patch(cmd)
			return ctx.withService(func(svc *api.LibraryService) error {
				resp, err := svc.UpdateBook(cmd.Context(), id, patch)
				if err != nil {
					return err
				}
				return printBookResponse(cmd, ctx, resp)
			})
		},
	}
	updateFlags.register(updateCmd)
	bookCmd.AddCommand(updateCmd)

	bookCmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a book with no active loans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("book", args[0])
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *api.LibraryService) error {
				resp, err := svc.DeleteBook(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printBookResponse(cmd, ctx, resp)
			})
		},
	})

	return bookCmd
}

func printBookResponse(cmd *cobra.Command, ctx *commandContext, resp api.BookResponse) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, resp)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, resp.Message)
	if resp.Book != nil {
		newRenderer(out).books([]api.Book{*resp.Book})
	}
	return nil
}
