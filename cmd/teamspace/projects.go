package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/teamspace/internal/model"
	"github.com/nhle/teamspace/internal/ui"
)

func projectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderProjects(a.ws.Projects()))
			return nil
		},
	}

	var in model.ProjectInput
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a project with a default sprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			in.Name = args[0]
			if u, ok := a.session.Current(); ok {
				in.Members = []model.Member{{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar, Role: model.RoleOwner}}
			}
			p, err := a.ws.CreateProject(cmd.Context(), in)
			if err = a.saveWarning(err); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", p.Name, p.Key)
			return nil
		},
	}
	create.Flags().StringVar(&in.Key, "key", "", "Project key, e.g. ST")
	create.Flags().StringVar(&in.Description, "description", "", "Project description")
	create.Flags().StringVar(&in.Color, "color", "", "Project color")
	_ = create.MarkFlagRequired("key")

	del := &cobra.Command{
		Use:   "delete KEY",
		Short: "Delete a project with its sprints and tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			p, err := a.ws.ProjectByKey(args[0])
			if err != nil {
				return err
			}
			if err := a.saveWarning(a.ws.DeleteProject(cmd.Context(), p.ID)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", p.Key)
			return nil
		},
	}

	cmd.AddCommand(create, del)
	return cmd
}

func boardCmd() *cobra.Command {
	var sprintName string

	cmd := &cobra.Command{
		Use:   "board KEY",
		Short: "Show a sprint board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			p, err := a.ws.ProjectByKey(args[0])
			if err != nil {
				return err
			}
			s, err := pickSprint(p, sprintName)
			if err != nil {
				return err
			}
			prog, err := a.ws.SprintProgress(p.ID, s.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, a.layout.RenderBoard(p, s, a.now()))
			fmt.Fprintf(out, "%d%% done, %d/%d points\n", prog.Percent(), prog.CompletedPoints, prog.Points)
			return nil
		},
	}
	cmd.Flags().StringVar(&sprintName, "sprint", "", "Sprint name or id (default: the active sprint)")
	return cmd
}

func tasksCmd() *cobra.Command {
	var (
		search   string
		project  string
		assignee string
		dueDays  int
	)

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks across projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			now := a.now()

			var rows []model.FlatTask
			switch {
			case search != "":
				rows = a.ws.SearchTasks(search)
			case assignee != "":
				rows = a.ws.TasksAssignedTo(assignee)
			case dueDays > 0:
				rows = a.ws.TasksDue(now, now.AddDate(0, 0, dueDays))
			case project != "":
				p, err := a.ws.ProjectByKey(project)
				if err != nil {
					return err
				}
				if rows, err = a.ws.ProjectTasks(p.ID); err != nil {
					return err
				}
			default:
				rows = a.ws.Tasks()
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderTaskRows(rows, now))
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Match title, description, key or tag")
	cmd.Flags().StringVarP(&project, "project", "p", "", "Only tasks of this project key")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Only tasks assigned to this member id")
	cmd.Flags().IntVar(&dueDays, "due", 0, "Only tasks due within this many days")
	return cmd
}

func taskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Create and edit tasks",
	}
	cmd.AddCommand(taskShowCmd(), taskCreateCmd(), taskStatusCmd(), taskMoveCmd(), taskDeleteCmd())
	return cmd
}

func taskShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show KEY",
		Short: "Show one task with its attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			t, err := a.ws.TaskByKey(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.RenderTaskRows([]model.FlatTask{t}, a.now()))
			fmt.Fprintf(out, "%s / %s · %s · %d points\n", t.ProjectName, t.SprintName, t.Priority, t.StoryPoints)
			if t.Assignee != nil {
				fmt.Fprintf(out, "Assignee: %s\n", t.Assignee.Name)
			}
			if t.Description != "" {
				fmt.Fprintln(out, t.Description)
			}

			view, err := a.ws.ResolveTaskAttachments(t.ProjectID, t.SprintID, t.ID)
			if err != nil {
				return err
			}
			for _, d := range view.Documents {
				fmt.Fprintf(out, "  doc: %s\n", d.Title)
			}
			for _, f := range view.Folders {
				fmt.Fprintf(out, "  folder: %s\n", f.Name)
			}
			for _, m := range view.Missing {
				fmt.Fprintf(out, "  missing %s: %s\n", m.Kind, m.ID)
			}
			return nil
		},
	}
}

func taskCreateCmd() *cobra.Command {
	var (
		in         model.TaskInput
		sprintName string
		status     string
		priority   string
		taskType   string
		assignee   string
		due        string
	)

	cmd := &cobra.Command{
		Use:   "create KEY TITLE",
		Short: "Add a task to a project's sprint",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			p, err := a.ws.ProjectByKey(args[0])
			if err != nil {
				return err
			}
			s, err := pickSprint(p, sprintName)
			if err != nil {
				return err
			}

			in.Title = args[1]
			in.Status = model.TaskStatus(status)
			in.Priority = model.Priority(priority)
			in.Type = model.TaskType(taskType)
			if assignee != "" {
				m, ok := findMember(p, assignee)
				if !ok {
					return fmt.Errorf("%s is not a member of %s", assignee, p.Key)
				}
				person := m.Person()
				in.Assignee = &person
			}
			if u, ok := a.session.Current(); ok {
				reporter := u.Person()
				in.Reporter = &reporter
			}
			if due != "" {
				d, err := time.ParseInLocation(time.DateOnly, due, time.Local)
				if err != nil {
					return fmt.Errorf("due date: %w", err)
				}
				in.DueDate = &d
			}

			t, err := a.ws.CreateTask(cmd.Context(), p.ID, s.ID, in)
			if err = a.saveWarning(err); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s in %s\n", t.Key, t.SprintName)
			return nil
		},
	}
	cmd.Flags().StringVar(&sprintName, "sprint", "", "Sprint name or id (default: the active sprint)")
	cmd.Flags().StringVar(&in.Description, "description", "", "Task description")
	cmd.Flags().StringVar(&status, "status", "", "todo, in-progress, review or done")
	cmd.Flags().StringVar(&priority, "priority", "", "low, medium, high or urgent")
	cmd.Flags().StringVar(&taskType, "type", "", "task, bug, story or epic")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Member id or name")
	cmd.Flags().IntVar(&in.StoryPoints, "points", 0, "Story points")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&in.Tags, "tag", nil, "Tag (repeatable)")
	return cmd
}

func taskStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status KEY STATUS",
		Short: "Move a task to another board column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			t, err := a.ws.TaskByKey(args[0])
			if err != nil {
				return err
			}
			status := model.TaskStatus(args[1])
			t, err = a.ws.UpdateTask(cmd.Context(), t.ProjectID, t.SprintID, t.ID, model.TaskPatch{Status: &status})
			if err = a.saveWarning(err); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", t.Key, t.StatusLabel)
			return nil
		},
	}
}

func taskMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move KEY SPRINT",
		Short: "Move a task to another sprint of the same project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			t, err := a.ws.TaskByKey(args[0])
			if err != nil {
				return err
			}
			p, err := a.ws.Project(t.ProjectID)
			if err != nil {
				return err
			}
			s, err := pickSprint(p, args[1])
			if err != nil {
				return err
			}
			moved, err := a.ws.MoveTask(cmd.Context(), p.ID, t.SprintID, s.ID, t.ID)
			if err = a.saveWarning(err); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s\n", moved.Key, moved.SprintName)
			return nil
		},
	}
}

func taskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete KEY",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			t, err := a.ws.TaskByKey(args[0])
			if err != nil {
				return err
			}
			if err := a.saveWarning(a.ws.DeleteTask(cmd.Context(), t.ProjectID, t.SprintID, t.ID)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", t.Key)
			return nil
		},
	}
}

// pickSprint finds a sprint by id or case-insensitive name. An empty
// selector picks the active sprint, falling back to the first one.
func pickSprint(p model.Project, selector string) (model.Sprint, error) {
	if len(p.Sprints) == 0 {
		return model.Sprint{}, fmt.Errorf("%s has no sprints", p.Key)
	}
	if selector == "" {
		for _, s := range p.Sprints {
			if s.Status == model.SprintActive {
				return s, nil
			}
		}
		return p.Sprints[0], nil
	}
	for _, s := range p.Sprints {
		if s.ID == selector || strings.EqualFold(s.Name, selector) {
			return s, nil
		}
	}
	return model.Sprint{}, fmt.Errorf("no sprint %q in %s", selector, p.Key)
}

func findMember(p model.Project, selector string) (model.Member, bool) {
	for _, m := range p.Members {
		if m.ID == selector || strings.EqualFold(m.Name, selector) {
			return m, true
		}
	}
	return model.Member{}, false
}
