package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/elilab/mediakit/internal/task"
)

// taskFields binds the task record flags shared by assign and edit.
type taskFields struct {
	name        string
	artist      string
	dueDate     string
	status      string
	description string
	polls       string
	assets      bool
	characters  bool
	locations   bool
}

func (f *taskFields) register(cmd *cobra.Command, nameFlag string) {
	fl := cmd.Flags()
	fl.StringVar(&f.name, nameFlag, "", "Task name")
	fl.StringVar(&f.artist, "artist", "", "Assigned artist")
	fl.StringVar(&f.dueDate, "due", "", "Due date (YYYY-MM-DD)")
	fl.StringVar(&f.status, "status", "", "Status: "+strings.Join(task.StatusChoices, ", "))
	fl.StringVar(&f.description, "description", "", "Description")
	fl.StringVar(&f.polls, "polls", "", "Polls")
	fl.BoolVar(&f.assets, "assets", false, "Task involves assets")
	fl.BoolVar(&f.characters, "characters", false, "Task involves characters")
	fl.BoolVar(&f.locations, "locations", false, "Task involves locations")
}

// apply copies the flags that were set onto t.
func (f *taskFields) apply(cmd *cobra.Command, nameFlag string, t *task.Task) {
	changed := cmd.Flags().Changed
	if changed(nameFlag) {
		t.Name = f.name
	}
	if changed("artist") {
		t.Artist = f.artist
	}
	if changed("due") {
		t.DueDate = f.dueDate
	}
	if changed("status") {
		t.Status = f.status
	}
	if changed("description") {
		t.Description = f.description
	}
	if changed("polls") {
		t.Polls = f.polls
	}
	if changed("assets") {
		t.Assets = f.assets
	}
	if changed("characters") {
		t.Characters = f.characters
	}
	if changed("locations") {
		t.Locations = f.locations
	}
}

func (a *app) newTaskCmd() *cobra.Command {
	var dir string

	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Assign and track artist tasks",
		Long: `Assign, edit and complete artist tasks stored as task_<name>.txt files in a
project folder, and analyse the task history.`,
	}
	taskCmd.PersistentFlags().StringVarP(&dir, "dir", "C", ".", "Project folder holding the task files")

	store := func() (*task.Store, string, error) {
		abs, err := dirArg([]string{dir})
		if err != nil {
			return nil, "", err
		}
		return task.NewStore(a.fs, a.clock, a.logger), abs, nil
	}

	taskCmd.AddCommand(
		a.newTaskAssignCmd(store),
		a.newTaskListCmd(store),
		a.newTaskShowCmd(store),
		a.newTaskEditCmd(store),
		a.newTaskDeleteCmd(store),
		a.newTaskCompleteCmd(store),
		a.newTaskReportCmd(store),
	)
	return taskCmd
}

type taskStoreFunc func() (*task.Store, string, error)

func (a *app) newTaskAssignCmd(store taskStoreFunc) *cobra.Command {
	var fields taskFields

	cmd := &cobra.Command{
		Use:     "assign",
		Short:   "Create a task",
		Example: `  mediakit task assign -C ./moth --name "Rig hero" --artist Ana --due 2024-05-01 --characters`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, dir, err := store()
			if err != nil {
				return err
			}
			t := &task.Task{}
			fields.apply(cmd, "name", t)
			if err := s.Assign(dir, t); err != nil {
				return err
			}
			if a.opts.json {
				return a.outputJSON(t)
			}
			PrintSuccess(fmt.Sprintf("Assigned %q to %s", t.Name, t.Artist))
			return nil
		},
	}
	fields.register(cmd, "name")
	return cmd
}

func (a *app) newTaskListCmd(store taskStoreFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, dir, err := store()
			if err != nil {
				return err
			}
			tasks, err := s.List(dir)
			if err != nil {
				return err
			}
			if a.opts.json {
				if tasks == nil {
					tasks = []*task.Task{}
				}
				return a.outputJSON(tasks)
			}

			PrintSection("Tasks")
			if len(tasks) == 0 {
				PrintEmptyState("No tasks in " + dir)
				return nil
			}
			rows := make([][]string, 0, len(tasks))
			for _, t := range tasks {
				rows = append(rows, []string{t.Status, t.Name, t.Artist, t.DueDate})
			}
			PrintTable([]string{"STATUS", "TASK", "ARTIST", "DUE"}, rows, 0)
			fmt.Println()
			PrintInfo(PrintCount(len(tasks), "task", "tasks"))
			return nil
		},
	}
}

func (a *app) newTaskShowCmd(store taskStoreFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, dir, err := store()
			if err != nil {
				return err
			}
			t, err := s.Get(dir, args[0])
			if err != nil {
				return err
			}
			if a.opts.json {
				return a.outputJSON(t)
			}
			printTask(t)
			return nil
		},
	}
}

func printTask(t *task.Task) {
	PrintSection(t.Name)
	PrintLabelValue("Artist", t.Artist)
	PrintLabelValue("Due", t.DueDate)
	PrintLabelValueWithColor("Status", t.Status, statusColor(t.Status))
	if t.Description != "" {
		PrintLabelValue("Description", t.Description)
	}
	if t.Polls != "" {
		PrintLabelValue("Polls", t.Polls)
	}
	var scope []string
	if t.Assets {
		scope = append(scope, "assets")
	}
	if t.Characters {
		scope = append(scope, "characters")
	}
	if t.Locations {
		scope = append(scope, "locations")
	}
	if len(scope) > 0 {
		PrintLabelValue("Involves", strings.Join(scope, ", "))
	}
}

func (a *app) newTaskEditCmd(store taskStoreFunc) *cobra.Command {
	var fields taskFields

	cmd := &cobra.Command{
		Use:   "edit <name>",
		Short: "Change a task; --rename moves it to a new name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, dir, err := store()
			if err != nil {
				return err
			}
			t, err := s.Get(dir, args[0])
			if err != nil {
				return err
			}
			fields.apply(cmd, "rename", t)
			if err := s.Edit(dir, args[0], t); err != nil {
				return err
			}
			if a.opts.json {
				return a.outputJSON(t)
			}
			PrintSuccess(fmt.Sprintf("Updated %q", t.Name))
			return nil
		},
	}
	fields.register(cmd, "rename")
	return cmd
}

func (a *app) newTaskDeleteCmd(store taskStoreFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, dir, err := store()
			if err != nil {
				return err
			}
			if err := s.Delete(dir, args[0]); err != nil {
				return err
			}
			if a.opts.json {
				return a.outputJSON(map[string]string{"deleted": args[0]})
			}
			PrintSuccess(fmt.Sprintf("Deleted %q", args[0]))
			return nil
		},
	}
}

func (a *app) newTaskCompleteCmd(store taskStoreFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <name>",
		Short: "Mark a task completed today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, dir, err := store()
			if err != nil {
				return err
			}
			t, err := s.Complete(dir, args[0])
			if err != nil {
				return err
			}
			if a.opts.json {
				return a.outputJSON(t)
			}
			PrintSuccess(fmt.Sprintf("%q: %s", t.Name, t.Status))
			return nil
		},
	}
}

func (a *app) newTaskReportCmd(store taskStoreFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Analyse the task history",
		Long: `Report the average completion delay against due dates, task counts per
artist, and the most common task names and most assigned artists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, dir, err := store()
			if err != nil {
				return err
			}
			tasks, err := s.List(dir)
			if err != nil {
				return err
			}
			report := task.Analyze(tasks)
			if a.opts.json {
				return a.outputJSON(report)
			}
			printTaskReport(report)
			return nil
		},
	}
}

func printTaskReport(r *task.Report) {
	PrintSection("Historical Performance")
	PrintLabelValue("Tasks", fmt.Sprint(r.Tasks))
	if r.Completed == 0 {
		PrintLabelValue("Average delay", "no completed tasks with due dates")
	} else {
		delayColor := successColor
		if r.AverageDelayDays > 0 {
			delayColor = warningColor
		}
		PrintLabelValueWithColor("Average delay",
			fmt.Sprintf("%.2f days over %s", r.AverageDelayDays, PrintCount(r.Completed, "task", "tasks")), delayColor)
	}

	PrintSeparator()
	PrintSubsection("Tasks per artist")
	if len(r.ArtistCounts) == 0 {
		PrintEmptyState("No tasks")
	} else {
		rows := make([][]string, 0, len(r.ArtistCounts))
		for _, c := range r.ArtistCounts {
			rows = append(rows, []string{c.Name, fmt.Sprint(c.Count)})
		}
		PrintTable([]string{"ARTIST", "TASKS"}, rows, -1)
	}

	fmt.Println()
	PrintSubsection("Most common tasks")
	PrintNumberedList(countItems(r.TopNames), 2)
	fmt.Println()
	PrintSubsection("Most assigned artists")
	PrintNumberedList(countItems(r.TopArtists), 2)
}

func countItems(counts []task.Count) []string {
	items := make([]string, 0, len(counts))
	for _, c := range counts {
		items = append(items, fmt.Sprintf("%s (%d)", c.Name, c.Count))
	}
	return items
}
