package main

import (
	"github.com/spf13/cobra"

	"github.com/redmonkez12/todo-api/cmd/todoctl/ui"
	"github.com/redmonkez12/todo-api/internal/item"
	"github.com/redmonkez12/todo-api/internal/todo"
)

func (a *app) todoService() (*todo.Service, func(), error) {
	db, err := a.database()
	if err != nil {
		return nil, nil, err
	}
	publisher := a.publisher()
	svc := todo.NewService(item.NewRepository(db), publisher, a.logger, a.cfg.Todo)
	return svc, func() { _ = publisher.Close() }, nil
}

func newItemsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Inspect and remove items",
	}

	var owner, status, sortBy, sortOrder string

	list := &cobra.Command{
		Use:   "list",
		Short: "List items, across all users unless --owner is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateListFlags(status, sortBy, sortOrder); err != nil {
				return err
			}

			svc, done, err := a.todoService()
			if err != nil {
				return err
			}
			defer done()

			items, err := svc.List(cmd.Context(), todo.ListInput{
				OwnerID:   owner,
				Status:    status,
				SortBy:    sortBy,
				SortOrder: sortOrder,
			})
			if err != nil {
				return err
			}

			ui.PrintItems(items)
			return nil
		},
	}
	list.Flags().StringVar(&owner, "owner", "", "Only items of this user id")
	list.Flags().StringVar(&status, "status", "", "Filter by status (ToDo, InProgress, Done)")
	list.Flags().StringVar(&sortBy, "sort-by", "", "Sort field (id, title, status, timestamp)")
	list.Flags().StringVar(&sortOrder, "sort-order", "", "Sort order (asc, desc)")

	var deleteOwner string

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, done, err := a.todoService()
			if err != nil {
				return err
			}
			defer done()

			deleted, err := svc.Delete(cmd.Context(), args[0], deleteOwner)
			if err != nil {
				return err
			}

			ui.PrintSuccess("deleted " + deleted.ID + " (" + deleted.Title + ")")
			return nil
		},
	}
	del.Flags().StringVar(&deleteOwner, "owner", "", "Only delete if the item belongs to this user id")

	cmd.AddCommand(list, del)
	return cmd
}
