package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/teamspace/internal/chat"
	"github.com/nhle/teamspace/internal/model"
	"github.com/nhle/teamspace/internal/ui"
)

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Channels and direct messages",
	}
	cmd.AddCommand(chatChannelsCmd(), chatReadCmd(), chatSendCmd(), chatDMCmd(), chatStatusCmd())
	return cmd
}

// actor returns the user id commands act as: --as when given, else the
// signed-in user.
func actor(a *app, as string) (string, error) {
	if as != "" {
		return as, nil
	}
	u, ok := a.session.Current()
	if !ok {
		return "", errors.New("not signed in; run login or pass --as")
	}
	return u.ID, nil
}

// findChannel matches a channel by id or by name with or without "#".
func findChannel(s *chat.Service, selector string) (model.Channel, error) {
	name := strings.TrimPrefix(selector, "#")
	for _, c := range s.Channels() {
		if c.ID == selector || (c.Type != model.ChannelDM && strings.EqualFold(c.Name, name)) {
			return c, nil
		}
	}
	return model.Channel{}, fmt.Errorf("channel %s: %w", selector, chat.ErrNotFound)
}

func chatChannelsCmd() *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "channels",
		Short: "List the channels visible to a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			list := a.chat.Channels()
			if id, err := actor(a, as); err == nil {
				list = a.chat.ChannelsFor(id)
			}
			out := cmd.OutOrStdout()
			for _, c := range list {
				name := "#" + c.Name
				if c.Type == model.ChannelDM {
					name = "@" + strings.Join(c.Members, ",")
				}
				fmt.Fprintf(out, "%s %s (%d members)\n", c.ID, name, len(c.Members))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "User id")
	return cmd
}

func chatReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read CHANNEL",
		Short: "Print a channel's messages in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			c, err := findChannel(a.chat, args[0])
			if err != nil {
				return err
			}
			msgs, err := a.chat.Messages(c.ID)
			if err != nil {
				return err
			}

			users := make(map[string]model.ChatUser)
			for _, u := range a.chat.Users() {
				users[u.ID] = u
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderMessages(msgs, users, a.now()))
			return nil
		},
	}
}

func chatSendCmd() *cobra.Command {
	var (
		as    string
		tasks []string
		docs  []string
	)

	cmd := &cobra.Command{
		Use:   "send CHANNEL MESSAGE",
		Short: "Send a message",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			sender, err := actor(a, as)
			if err != nil {
				return err
			}
			c, err := findChannel(a.chat, args[0])
			if err != nil {
				return err
			}

			in := model.MessageInput{ChannelID: c.ID, SenderID: sender}
			if len(args) == 2 {
				in.Content = args[1]
			}
			for _, key := range tasks {
				in.Attachments = append(in.Attachments, model.MessageAttachment{Type: model.AttachmentTask, Name: key, RefID: strings.ToUpper(key)})
			}
			for _, id := range docs {
				d, err := a.ws.Document(id)
				if err != nil {
					return err
				}
				in.Attachments = append(in.Attachments, model.MessageAttachment{Type: model.AttachmentDocument, Name: d.Title, RefID: d.ID})
			}

			m, err := a.chat.SendMessage(cmd.Context(), in)
			if err = a.saveWarning(err); err != nil {
				return err
			}
			if keys := chat.TaskKeys(m); len(keys) > 0 {
				a.logger.Debug("message references tasks", "keys", keys)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "Sender user id")
	cmd.Flags().StringSliceVar(&tasks, "task", nil, "Attach a task key (repeatable)")
	cmd.Flags().StringSliceVar(&docs, "doc", nil, "Attach a document id (repeatable)")
	return cmd
}

func chatDMCmd() *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "dm USER",
		Short: "Open the direct channel with a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			me, err := actor(a, as)
			if err != nil {
				return err
			}
			c, err := a.chat.FindOrCreateDirectChannel(cmd.Context(), me, args[0])
			if err = a.saveWarning(err); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "User id")
	return cmd
}

func chatStatusCmd() *cobra.Command {
	var (
		as    string
		emoji string
		text  string
	)

	cmd := &cobra.Command{
		Use:   "status PRESENCE",
		Short: "Set your presence: online, away, busy or offline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			me, err := actor(a, as)
			if err != nil {
				return err
			}
			p := model.Presence{Type: model.PresenceType(args[0]), Emoji: emoji, Text: text}
			_, err = a.chat.SetStatus(cmd.Context(), me, me, p)
			return a.saveWarning(err)
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "User id")
	cmd.Flags().StringVar(&emoji, "emoji", "", "Status emoji")
	cmd.Flags().StringVar(&text, "text", "", "Status text")
	return cmd
}
