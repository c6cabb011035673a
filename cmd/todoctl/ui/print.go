package ui

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/uptrace/bun/migrate"

	"github.com/redmonkez12/todo-api/internal/item"
)

// Confirm asks a yes/no question. The default answer is no.
func Confirm(question string) (bool, error) {
	var confirmed bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Affirmative("Delete").
				Negative("Cancel").
				Value(&confirmed),
		),
	).WithTheme(huh.ThemeCatppuccin())

	err := form.Run()
	if err != nil {
		return false, err
	}
	return confirmed, nil
}

// PrintItems renders items as a table
func PrintItems(items []item.Item) {
	if len(items) == 0 {
		fmt.Println(subtleStyle.Render("no items"))
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(subtleStyle).
		Headers("ID", "OWNER", "STATUS", "TITLE", "CREATED").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 2 && row >= 0 && row < len(items) {
				if color, ok := statusColors[string(items[row].Status)]; ok {
					return cellStyle.Foreground(color)
				}
			}
			return cellStyle
		})

	for _, it := range items {
		t.Row(it.ID, it.UserID, string(it.Status), it.Title, it.Timestamp)
	}

	fmt.Println(t.Render())
	fmt.Println(subtleStyle.Render(fmt.Sprintf("%d item(s)", len(items))))
}

// PrintMigrations lists applied and pending migrations
func PrintMigrations(applied, pending migrate.MigrationSlice) {
	fmt.Println(titleStyle.Render("Migrations"))

	for _, m := range applied {
		fmt.Printf("  %s %s %s\n",
			successStyle.Render("applied"),
			m.Name,
			subtleStyle.Render(fmt.Sprintf("(group %d, %s)", m.GroupID, m.MigratedAt.Format("2006-01-02 15:04"))),
		)
	}
	for _, m := range pending {
		fmt.Printf("  %s %s\n", warningStyle.Render("pending"), m.Name)
	}

	if len(pending) == 0 {
		fmt.Println(subtleStyle.Render("  database is up to date"))
	}
}

// PrintSuccess prints a success message.
func PrintSuccess(msg string) {
	fmt.Println(successStyle.Render(msg))
}

// PrintWarning prints a non-fatal problem.
func PrintWarning(msg string) {
	fmt.Println(warningStyle.Render("Warning: " + msg))
}

// PrintError prints an error message.
func PrintError(msg string) {
	fmt.Println(errorStyle.Render("Error: " + msg))
}
