// Package seed holds the demo dataset loaded when a collection has never
// been saved. Ids are derived from fixed names so that references between
// collections line up no matter which blobs are missing.
package seed

import (
	"time"

	"github.com/nhle/teamspace/internal/ident"
	"github.com/nhle/teamspace/internal/model"
)

const day = 24 * time.Hour

// Stable ids shared across collections.
var (
	ProjectPlatformID = ident.FromName("seed/project/platform")
	ProjectMobileID   = ident.FromName("seed/project/mobile")

	SprintPlatform1ID = ident.FromName("seed/sprint/platform-1")
	SprintPlatform2ID = ident.FromName("seed/sprint/platform-2")
	SprintMobile1ID   = ident.FromName("seed/sprint/mobile-1")

	DocOnboardingID   = ident.FromName("seed/doc/onboarding")
	DocArchitectureID = ident.FromName("seed/doc/architecture")
	DocReleaseID      = ident.FromName("seed/doc/release-checklist")

	FolderHandbookID    = ident.FromName("seed/folder/handbook")
	FolderEngineeringID = ident.FromName("seed/folder/engineering")
)

// Team is the seeded set of people. They appear as project members, task
// assignees, document authors and chat users.
var Team = []model.Member{
	{ID: ident.FromName("seed/user/alex"), Name: "Alex Morgan", Email: "alex@marinedox.io", Role: model.RoleOwner},
	{ID: ident.FromName("seed/user/sam"), Name: "Sam Rivera", Email: "sam@marinedox.io", Role: model.RoleAdmin},
	{ID: ident.FromName("seed/user/jordan"), Name: "Jordan Lee", Email: "jordan@marinedox.io", Role: model.RoleMember},
	{ID: ident.FromName("seed/user/priya"), Name: "Priya Shah", Email: "priya@marinedox.io", Role: model.RoleMember},
	{ID: ident.FromName("seed/user/chris"), Name: "Chris Okafor", Email: "chris@marinedox.io", Role: model.RoleViewer},
}

func person(i int) *model.Person {
	p := Team[i].Person()
	return &p
}

func members(idx ...int) []model.Member {
	out := make([]model.Member, 0, len(idx))
	for _, i := range idx {
		out = append(out, Team[i])
	}
	return out
}

func due(t time.Time) *time.Time { return &t }

// Projects returns the demo projects relative to now.
func Projects(now time.Time) []model.Project {
	start := now.Add(-7 * day).Truncate(day)

	return []model.Project{
		{
			ID:          ProjectPlatformID,
			Name:        "MarineDox Platform",
			Key:         "MDX",
			Description: "Core documentation platform and API.",
			Color:       "#2563eb",
			CreatedAt:   start.Add(-30 * day),
			Members:     members(0, 1, 2, 3),
			NextTaskSeq: 6,
			Sprints: []model.Sprint{
				{
					ID:        SprintPlatform1ID,
					Name:      "Sprint 1",
					Goal:      "Ship the document editor beta",
					StartDate: start,
					EndDate:   start.Add(14 * day),
					Status:    model.SprintActive,
					Tasks: []model.Task{
						{ID: "1", Title: "Set up CI pipeline", Description: "Build, lint and test on every push.",
							Status: model.StatusDone, Priority: model.PriorityHigh, Type: model.TypeTask,
							Assignee: person(1), Reporter: person(0), StoryPoints: 3,
							CreatedAt: start, Tags: []string{"infra"}},
						{ID: "2", Title: "Rich text editor toolbar", Description: "Bold, italic, lists and headings.",
							Status: model.StatusInProgress, Priority: model.PriorityHigh, Type: model.TypeStory,
							Assignee: person(2), Reporter: person(0), StoryPoints: 5,
							DueDate: due(start.Add(10 * day)), CreatedAt: start, Tags: []string{"editor"},
							Attachments: []model.AttachmentRef{{Kind: model.AttachDocument, ID: DocArchitectureID}}},
						{ID: "3", Title: "Autosave drops last keystroke", Description: "Debounce flushes too early.",
							Status: model.StatusReview, Priority: model.PriorityUrgent, Type: model.TypeBug,
							Assignee: person(3), Reporter: person(1), StoryPoints: 2,
							DueDate: due(start.Add(5 * day)), CreatedAt: start.Add(day), Tags: []string{"editor", "bug"}},
						{ID: "4", Title: "Folder sharing permissions", Status: model.StatusTodo,
							Priority: model.PriorityMedium, Type: model.TypeTask, Assignee: person(1),
							Reporter: person(0), StoryPoints: 3, CreatedAt: start.Add(2 * day)},
					},
				},
				{
					ID:        SprintPlatform2ID,
					Name:      "Sprint 2",
					Goal:      "Search and export",
					StartDate: start.Add(14 * day),
					EndDate:   start.Add(28 * day),
					Status:    model.SprintPlanned,
					Tasks: []model.Task{
						{ID: "5", Title: "Full-text document search", Status: model.StatusTodo,
							Priority: model.PriorityMedium, Type: model.TypeEpic, Reporter: person(0),
							StoryPoints: 8, CreatedAt: start.Add(3 * day), Tags: []string{"search"}},
						{ID: "6", Title: "Markdown export", Status: model.StatusTodo,
							Priority: model.PriorityLow, Type: model.TypeStory, Assignee: person(2),
							Reporter: person(0), StoryPoints: 3, CreatedAt: start.Add(3 * day)},
					},
				},
			},
		},
		{
			ID:          ProjectMobileID,
			Name:        "Mobile App",
			Key:         "MOB",
			Description: "Offline-first companion app for crews at sea.",
			Color:       "#16a34a",
			CreatedAt:   start.Add(-10 * day),
			Members:     members(0, 3, 4),
			NextTaskSeq: 3,
			Sprints: []model.Sprint{
				{
					ID:        SprintMobile1ID,
					Name:      "Sprint 1",
					Goal:      "Offline sync prototype",
					StartDate: start,
					EndDate:   start.Add(14 * day),
					Status:    model.SprintActive,
					Tasks: []model.Task{
						{ID: "1", Title: "Offline storage layer", Status: model.StatusInProgress,
							Priority: model.PriorityHigh, Type: model.TypeStory, Assignee: person(3),
							Reporter: person(0), StoryPoints: 8, DueDate: due(start.Add(12 * day)),
							CreatedAt: start, Tags: []string{"sync"}},
						{ID: "2", Title: "Login screen", Status: model.StatusDone,
							Priority: model.PriorityMedium, Type: model.TypeTask, Assignee: person(4),
							Reporter: person(0), StoryPoints: 2, CreatedAt: start},
						{ID: "3", Title: "Crash on rotate", Status: model.StatusTodo,
							Priority: model.PriorityHigh, Type: model.TypeBug, Reporter: person(4),
							StoryPoints: 1, DueDate: due(start.Add(3 * day)), CreatedAt: start.Add(day)},
					},
				},
			},
		},
	}
}

// Notifications returns the eight demo notifications, the newest first.
func Notifications(now time.Time) []model.Notification {
	n := func(slug, title, msg string, typ model.NotificationType, read bool, ago time.Duration, link, category string) model.Notification {
		return model.Notification{
			ID:        ident.FromName("seed/notification/" + slug),
			Title:     title,
			Message:   msg,
			Type:      typ,
			Read:      read,
			CreatedAt: now.Add(-ago),
			Link:      link,
			Category:  category,
		}
	}
	return []model.Notification{
		n("assigned", "Task assigned", "Sam assigned you MDX-4 Folder sharing permissions.", model.NotificationTask, false, 10*time.Minute, "/projects/MDX/tasks/4", "tasks"),
		n("mention", "You were mentioned", "Jordan mentioned you in #engineering.", model.NotificationMention, false, 45*time.Minute, "/chat", "chat"),
		n("review", "Review requested", "MDX-3 is ready for review.", model.NotificationInfo, false, 2*time.Hour, "/projects/MDX/tasks/3", "tasks"),
		n("deploy", "Deployment succeeded", "Staging is running build 1.4.0.", model.NotificationSuccess, true, 5*time.Hour, "", "system"),
		n("due", "Task due soon", "MOB-3 Crash on rotate is due in 2 days.", model.NotificationWarning, false, 8*time.Hour, "/projects/MOB/tasks/3", "tasks"),
		n("sync", "Sync failed", "Offline sync could not reach the server.", model.NotificationError, true, day, "", "system"),
		n("doc", "Document updated", "Priya edited Architecture Overview.", model.NotificationInfo, true, 2*day, "/docs", "docs"),
		n("sprint", "Sprint started", "MarineDox Platform Sprint 1 is now active.", model.NotificationSuccess, true, 7*day, "/projects/MDX", "sprints"),
	}
}

// Documents returns the demo MarineDox articles.
func Documents(now time.Time) []model.Document {
	return []model.Document{
		{
			ID:    DocOnboardingID,
			Title: "Welcome to MarineDox",
			Content: "<h1>Welcome</h1><p>This space holds our team handbook. " +
				"Start with the <strong>onboarding checklist</strong> below.</p>" +
				"<ul><li>Set up your workstation</li><li>Join #general</li><li>Read the architecture overview</li></ul>",
			Author:    Team[0].Person(),
			CreatedAt: now.Add(-20 * day),
			UpdatedAt: now.Add(-3 * day),
		},
		{
			ID:    DocArchitectureID,
			Title: "Architecture Overview",
			Content: "<h2>Components</h2><p>The platform is split into an <em>editor</em>, " +
				"a document store and a search indexer.</p>" +
				"<table><tr><th>Component</th><th>Owner</th></tr>" +
				"<tr><td>Editor</td><td>Jordan</td></tr><tr><td>Store</td><td>Sam</td></tr></table>",
			ProjectID: ProjectPlatformID,
			Author:    Team[3].Person(),
			CreatedAt: now.Add(-15 * day),
			UpdatedAt: now.Add(-2 * day),
		},
		{
			ID:    DocReleaseID,
			Title: "Release Checklist",
			Content: "<ol><li>Freeze the sprint</li><li>Run the full test suite</li>" +
				"<li>Tag the release</li><li><del>Email the changelog</del> Post it in #general</li></ol>",
			ProjectID: ProjectMobileID,
			Author:    Team[1].Person(),
			CreatedAt: now.Add(-5 * day),
			UpdatedAt: now.Add(-5 * day),
		},
	}
}

// Folders returns the demo folders.
func Folders(now time.Time) []model.Folder {
	return []model.Folder{
		{
			ID:                 FolderHandbookID,
			Name:               "Team Handbook",
			Description:        "How we work.",
			Icon:               "book",
			Color:              "#f59e0b",
			DocumentIDs:        []string{DocOnboardingID},
			AssignedToProjects: []string{},
			AssignedToTasks:    []string{},
			Author:             Team[0].Person(),
			CreatedAt:          now.Add(-20 * day),
			UpdatedAt:          now.Add(-3 * day),
		},
		{
			ID:                 FolderEngineeringID,
			Name:               "Engineering",
			Description:        "Design docs and runbooks.",
			Icon:               "folder",
			Color:              "#6366f1",
			DocumentIDs:        []string{DocArchitectureID, DocReleaseID},
			AssignedToProjects: []string{ProjectPlatformID},
			AssignedToTasks:    []string{"MDX-2"},
			Author:             Team[1].Person(),
			CreatedAt:          now.Add(-15 * day),
			UpdatedAt:          now.Add(-2 * day),
		},
	}
}
