package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/teamspace/internal/model"
	"github.com/nhle/teamspace/internal/ui"
)

const excerptLen = 80

func notificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"inbox"},
		Short:   "List notifications, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.RenderNotifications(a.ws.Notifications(), a.now()))
			fmt.Fprintln(out, a.layout.RenderStatusBar(fmt.Sprintf("%d unread", a.ws.UnreadCount())))
			return nil
		},
	}

	read := &cobra.Command{
		Use:   "read ID",
		Short: "Mark one notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			return a.saveWarning(a.ws.MarkNotificationRead(cmd.Context(), args[0]))
		},
	}

	readAll := &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			return a.saveWarning(a.ws.MarkAllNotificationsRead(cmd.Context()))
		},
	}

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			return a.saveWarning(a.ws.DeleteNotification(cmd.Context(), args[0]))
		},
	}

	cmd.AddCommand(read, readAll, del)
	return cmd
}

func docsCmd() *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "List documents, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			list := a.ws.Documents()
			if search != "" {
				list = a.ws.SearchDocuments(search)
			}

			excerpts := make(map[string]string, len(list))
			for _, d := range list {
				if ex, err := a.ws.DocumentExcerpt(d.ID, excerptLen); err == nil {
					excerpts[d.ID] = ex
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderDocuments(list, excerpts, a.now()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Match title or text")

	var output string
	export := &cobra.Command{
		Use:   "export ID",
		Short: "Export a document as Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			md, err := a.ws.ExportDocumentMarkdown(args[0])
			if err != nil {
				return err
			}
			if output == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), md)
				return err
			}
			if err := os.WriteFile(output, []byte(md), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			a.logger.Info("exported document", "id", args[0], "path", output)
			return nil
		},
	}
	export.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")

	var in model.DocumentInput
	var projectKey, contentFile string
	create := &cobra.Command{
		Use:   "create TITLE",
		Short: "Create a document from an HTML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			in.Title = args[0]
			if contentFile != "" {
				b, err := os.ReadFile(contentFile)
				if err != nil {
					return err
				}
				in.Content = string(b)
			}
			if projectKey != "" {
				p, err := a.ws.ProjectByKey(projectKey)
				if err != nil {
					return err
				}
				in.ProjectID = p.ID
			}
			if u, ok := a.session.Current(); ok {
				in.Author = u.Person()
			}
			d, err := a.ws.CreateDocument(cmd.Context(), in)
			if err = a.saveWarning(err); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s\n", d.ID, d.Title)
			return nil
		},
	}
	create.Flags().StringVar(&contentFile, "file", "", "HTML file with the document body")
	create.Flags().StringVarP(&projectKey, "project", "p", "", "Link the document to this project key")

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a document. Folders keep their reference.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			return a.saveWarning(a.ws.DeleteDocument(cmd.Context(), args[0]))
		},
	}

	cmd.AddCommand(export, create, del)
	return cmd
}

func foldersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "List folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			out := cmd.OutOrStdout()
			for _, f := range a.ws.Folders() {
				fmt.Fprintf(out, "%s %s (%d docs)\n", f.ID, f.Name, len(f.DocumentIDs))
			}
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Show a folder with its resolved references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			view, err := a.ws.ResolveFolder(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, a.layout.RenderHeader(view.Folder.Name, view.Folder.Icon))
			fmt.Fprintln(out, ui.RenderDocuments(view.Documents, nil, a.now()))
			for _, p := range view.Projects {
				fmt.Fprintf(out, "project: %s\n", p.Key)
			}
			if len(view.Tasks) > 0 {
				fmt.Fprintln(out, ui.RenderTaskRows(view.Tasks, a.now()))
			}
			if view.Dangling() {
				for _, id := range view.MissingDocuments {
					fmt.Fprintf(out, "missing document: %s\n", id)
				}
				for _, id := range view.MissingProjects {
					fmt.Fprintf(out, "missing project: %s\n", id)
				}
				for _, key := range view.MissingTasks {
					fmt.Fprintf(out, "missing task: %s\n", key)
				}
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add FOLDER DOCUMENT",
		Short: "Add a document to a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			_, err := a.ws.AddDocumentToFolder(cmd.Context(), args[0], args[1])
			return a.saveWarning(err)
		},
	}

	assign := &cobra.Command{
		Use:   "assign FOLDER TASK-KEY",
		Short: "Attach a folder to a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			_, err := a.ws.AssignFolderToTask(cmd.Context(), args[0], args[1])
			return a.saveWarning(err)
		},
	}

	cmd.AddCommand(show, add, assign)
	return cmd
}
