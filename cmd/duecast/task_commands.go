package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/duecast/internal/app"
	"github.com/sandeepkv93/duecast/internal/clock"
	"github.com/sandeepkv93/duecast/internal/commands"
	"github.com/sandeepkv93/duecast/internal/model"
	"github.com/sandeepkv93/duecast/internal/notify"
)

var (
	taskSize       string
	taskImportance string
	taskDue        string
	taskList       string
	listAll        bool
)

// add
var addCmd = &cobra.Command{
	Use:   "add <name>...",
	Short: "Add a task; its due date is shifted by past lateness",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

// list
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List open tasks",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var doneCmd = &cobra.Command{
	Use:   "done <id|name>",
	Short: "Mark a task done",
	Args:  cobra.ExactArgs(1),
	RunE:  targetRunner(commands.TypeDone),
}

var undoCmd = &cobra.Command{
	Use:     "undo <id|name>",
	Short:   "Reopen a finished task",
	Aliases: []string{"reopen"},
	Args:    cobra.ExactArgs(1),
	RunE:    targetRunner(commands.TypeUndo),
}

var delCmd = &cobra.Command{
	Use:     "del <id|name>",
	Short:   "Delete a task and its subtasks",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE:    targetRunner(commands.TypeDelete),
}

// suggest
var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Show the due-date shift a new task would get",
	Args:  cobra.NoArgs,
	RunE:  runSuggest,
}

// remind
var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send reminders for overdue, due-today and upcoming tasks",
	Args:  cobra.NoArgs,
	RunE:  runRemind,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the completion history used for suggestions",
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every recorded creation and completion",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	rootCmd.AddCommand(addCmd, listCmd, doneCmd, undoCmd, delCmd, suggestCmd, remindCmd, historyCmd)
	historyCmd.AddCommand(historyClearCmd)

	for _, cmd := range []*cobra.Command{addCmd, suggestCmd} {
		cmd.Flags().StringVarP(&taskSize, "size", "s", "medium", "Task size (tiny, small, medium, big, huge or 0-4)")
		cmd.Flags().StringVarP(&taskImportance, "importance", "i", "normal", "Importance (trivial, low, normal, high, vital or 0-4)")
		cmd.Flags().StringVarP(&taskList, "list", "l", "", "List name (default inbox)")
	}
	addCmd.Flags().StringVarP(&taskDue, "due", "d", "tomorrow", "Due date (today, tomorrow, +3d, 2026-04-01, 2026-04-01T09:30)")
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "Include finished tasks")
	addTaskFlagAliases(addCmd, suggestCmd)
}

func parseSizeImportance() (model.Size, model.Importance, error) {
	size, err := model.ParseSize(taskSize)
	if err != nil {
		return 0, 0, err
	}
	importance, err := model.ParseImportance(taskImportance)
	if err != nil {
		return 0, 0, err
	}
	return size, importance, nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	size, importance, err := parseSizeImportance()
	if err != nil {
		return err
	}
	a, err := openApp(app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Handlers(cmd.Context()).Add(commands.AddArgs{
		Name:       strings.Join(args, " "),
		Size:       size,
		Importance: importance,
		Due:        taskDue,
		List:       taskList,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Message)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp(app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	tasks := a.Tasks.ActiveTasks()
	if listAll {
		tasks = a.Tasks.Tasks()
	}
	names := make(map[string]string)
	for _, l := range a.Tasks.Lists() {
		names[l.UUID] = l.Name
	}
	out := cmd.OutOrStdout()
	if len(tasks) == 0 {
		fmt.Fprintln(out, "no tasks")
		return nil
	}
	now := a.Clock.Now()
	for _, t := range tasks {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		indent := ""
		if t.HasParent() {
			indent = "  "
		}
		fmt.Fprintf(out, "[%s] %.8s %s%s (%s, %s/%s, due %s)\n",
			mark, t.ID, indent, t.Name, names[t.List], t.Size, t.Importance, clock.FormatDue(now, t.Due))
	}
	return nil
}

func targetRunner(typ commands.Type) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := commands.Execute(commands.Command{
			Type:   typ,
			Target: &commands.TargetArgs{Target: args[0]},
		}, a.Handlers(cmd.Context()))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Message)
		return nil
	}
}

func runSuggest(cmd *cobra.Command, args []string) error {
	size, importance, err := parseSizeImportance()
	if err != nil {
		return err
	}
	a, err := openApp(app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.SuggestFor(cmd.Context(), commands.SuggestArgs{Size: size, Importance: importance, List: taskList})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), app.DescribeSuggestion(s))
	return nil
}

func runRemind(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	desktop := notify.NewDesktop(cfg.Notifications.Desktop)
	printer := notify.Func(func(title, body string) error {
		fmt.Fprintf(out, "%s\n  %s\n", title, body)
		return desktop.Dispatch(title, body)
	})

	a, err := openApp(app.Options{Desktop: printer})
	if err != nil {
		return err
	}
	defer a.Close()

	if n := a.Reminders.Refresh(); n == 0 {
		fmt.Fprintln(out, "nothing to remind")
	}
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	a, err := openApp(app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.ClearHistory(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
	return nil
}
