package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/SRAS2024/About-Me/internal/client/session"
	"github.com/SRAS2024/About-Me/internal/client/storage"
	"github.com/SRAS2024/About-Me/internal/models"
	"github.com/spf13/cobra"
)

const shellHelp = `Available commands:
  show                              print the draft
  refresh                           merge the server state
  links github|website              enter a link group
  traits | accomplishments          enter a text group
  add <group> <text> | add <github|website> <label> <url>
  remove <group> <n>
  move <group> <from> <to>
  save                              save every collection
  photo                             upload a photo file
  resume <locale>                   upload a resume PDF
  locale <locale>                   preview another locale
  exit`

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Edit the draft interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := storage.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			return a.repl(cmd.Context(), p)
		},
	}
}

// repl runs the interactive shell loop. The draft is stored after every
// command.
func (a *app) repl(ctx context.Context, p *storage.Prompter) error {
	for {
		line, ok := p.Ask("aboutme> ")
		if !ok {
			return nil
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			fmt.Fprintln(a.out, "Bye")
			return nil
		}
		err := a.run(ctx, func(ctx context.Context) error {
			return a.shellCommand(ctx, p, args)
		})
		if err != nil && !errors.Is(err, errNotSaved) {
			fmt.Fprintln(a.out, "Error:", err)
		}
	}
}

func (a *app) shellCommand(ctx context.Context, p *storage.Prompter, args []string) error {
	switch args[0] {
	case "help":
		fmt.Fprintln(a.out, shellHelp)
	case "show":
		printDraft(a.out, a.sess.Draft())
	case "refresh":
		if err := a.sess.Refresh(ctx); err != nil {
			return err
		}
		printDraft(a.out, a.sess.Draft())
	case "links":
		if len(args) < 2 {
			return errors.New("usage: links github|website")
		}
		group, err := linkGroup(args[1])
		if err != nil {
			return err
		}
		return a.replace(group, p.PromptLinkRows(group.Max()))
	case "traits":
		return a.replace(models.GroupTraits, p.PromptTextRows("Trait", models.MaxTraits))
	case "accomplishments":
		return a.replace(models.GroupAccomplishments, p.PromptTextRows("Accomplishment", models.MaxAccomplishments))
	case "add":
		return a.shellAdd(args[1:])
	case "remove":
		if len(args) < 3 {
			return errors.New("usage: remove <group> <n>")
		}
		return a.shellEdit(args[1], args[2], session.Edit{Op: session.OpRemove})
	case "move":
		if len(args) < 4 {
			return errors.New("usage: move <group> <from> <to>")
		}
		to, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("invalid position %q", args[3])
		}
		return a.shellEdit(args[1], args[2], session.Edit{Op: session.OpMove, To: to - 1})
	case "save":
		return a.save(ctx)
	case "photo":
		path, data, err := p.PromptFile("Photo file: ")
		if err != nil {
			return err
		}
		return a.uploadPhoto(ctx, filepath.Base(path), data)
	case "resume":
		if len(args) < 2 {
			return errors.New("usage: resume <locale>")
		}
		path, data, err := p.PromptFile("Resume PDF: ")
		if err != nil {
			return err
		}
		return a.uploadResume(ctx, args[1], filepath.Base(path), data)
	case "locale":
		if len(args) < 2 {
			return errors.New("usage: locale <locale>")
		}
		a.sess.SelectLocale(args[1])
		printResume(a.out, a.sess.Preview())
	default:
		fmt.Fprintln(a.out, "Unknown command. Type 'help' for a list of commands.")
	}
	return nil
}

func (a *app) shellAdd(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: add <group> <text...>")
	}
	e := session.Edit{Op: session.OpAdd}
	if group, err := linkGroup(args[0]); err == nil {
		if len(args) < 3 {
			return errors.New("usage: add github|website <label> <url>")
		}
		e.Group, e.Label, e.URL = group, strings.Join(args[1:len(args)-1], " "), args[len(args)-1]
	} else {
		e.Group, e.Text = models.Group(args[0]), strings.Join(args[1:], " ")
	}
	if e.Group.Max() == 0 {
		return fmt.Errorf("unknown group %q", args[0])
	}
	if !a.sess.Edit(e) {
		return fmt.Errorf("%s is full (%d rows)", e.Group, e.Group.Max())
	}
	return nil
}

// shellEdit addresses a row by its 1-based position in the group.
func (a *app) shellEdit(groupName, pos string, e session.Edit) error {
	e.Group = models.Group(groupName)
	if group, err := linkGroup(groupName); err == nil {
		e.Group = group
	}
	n, err := strconv.Atoi(pos)
	rows := a.sess.Draft().Rows[e.Group]
	if err != nil || n < 1 || n > len(rows) {
		return fmt.Errorf("no row %s in %s", pos, groupName)
	}
	e.Key = rows[n-1].Key
	if !a.sess.Edit(e) {
		fmt.Fprintln(a.out, "Nothing changed")
	}
	return nil
}
