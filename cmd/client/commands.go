package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/SRAS2024/About-Me/internal/client/session"
	"github.com/SRAS2024/About-Me/internal/models"
	"github.com/spf13/cobra"
)

var errNotSaved = errors.New("some groups were not saved")

func newStateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Fetch the server state and show the draft",
		Long:  "Fetch the server state and show the draft. Groups with unsaved edits are kept; use discard to drop them.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), func(ctx context.Context) error {
				if err := a.sess.RefreshClean(ctx); err != nil {
					return err
				}
				d := a.sess.Draft()
				printDraft(a.out, d)
				if d.Dirty() {
					fmt.Fprintln(a.out, `unsaved changes kept; run "save" or "discard"`)
				}
				return nil
			})
		},
	}
}

func newLinksCmd(a *app) *cobra.Command {
	links := &cobra.Command{Use: "links", Short: "Edit link groups"}
	links.AddCommand(&cobra.Command{
		Use:   "set github|website [LABEL=URL...]",
		Short: "Replace one link group in the draft",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := linkGroup(args[0])
			if err != nil {
				return err
			}
			rows := make([]session.Row, 0, len(args)-1)
			for _, arg := range args[1:] {
				label, url, _ := strings.Cut(arg, "=")
				rows = append(rows, session.Row{Label: label, URL: url})
			}
			return a.run(cmd.Context(), func(context.Context) error {
				return a.replace(group, rows)
			})
		},
	})
	return links
}

func newTextsCmd(a *app, name, short string) *cobra.Command {
	group := models.Group(name)
	parent := &cobra.Command{Use: name, Short: "Edit " + name}
	parent.AddCommand(&cobra.Command{
		Use:   "set [TEXT...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([]session.Row, len(args))
			for i, text := range args {
				rows[i] = session.Row{Text: text}
			}
			return a.run(cmd.Context(), func(context.Context) error {
				return a.replace(group, rows)
			})
		},
	})
	return parent
}

func newSaveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Save every collection of the draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), a.save)
		},
	}
}

func newDiscardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "discard",
		Short: "Drop local edits and reload the server state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.store.Clear(); err != nil {
				return err
			}
			return a.run(cmd.Context(), func(ctx context.Context) error {
				if err := a.sess.Load(ctx); err != nil {
					return err
				}
				printDraft(a.out, a.sess.Draft())
				return nil
			})
		},
	}
}

func newLocaleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "locale LOCALE",
		Short: "Select the locale used to preview the resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), func(context.Context) error {
				a.sess.SelectLocale(args[0])
				printResume(a.out, a.sess.Preview())
				return nil
			})
		},
	}
}

func newPhotoCmd(a *app) *cobra.Command {
	photo := &cobra.Command{Use: "photo", Short: "Manage the profile photo"}
	photo.AddCommand(
		&cobra.Command{
			Use:   "upload FILE",
			Short: "Upload a new profile photo",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				return a.run(cmd.Context(), func(ctx context.Context) error {
					return a.uploadPhoto(ctx, filepath.Base(args[0]), data)
				})
			},
		},
		&cobra.Command{
			Use:   "delete",
			Short: "Delete the profile photo",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.run(cmd.Context(), func(ctx context.Context) error {
					if err := a.sess.DeletePhoto(ctx); err != nil {
						return err
					}
					fmt.Fprintln(a.out, "Photo deleted")
					return nil
				})
			},
		},
	)
	return photo
}

func newResumeCmd(a *app) *cobra.Command {
	var loc string
	resume := &cobra.Command{Use: "resume", Short: "Manage resumes"}
	upload := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload the resume PDF for a locale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return a.run(cmd.Context(), func(ctx context.Context) error {
				return a.uploadResume(ctx, loc, filepath.Base(args[0]), data)
			})
		},
	}
	del := &cobra.Command{
		Use:   "delete",
		Short: "Delete the resume of a locale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), func(ctx context.Context) error {
				if err := a.sess.DeleteResume(ctx, loc); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Resume %s deleted\n", loc)
				return nil
			})
		},
	}
	for _, c := range []*cobra.Command{upload, del} {
		c.Flags().StringVar(&loc, "locale", "en", "resume locale")
	}
	resume.AddCommand(upload, del)
	return resume
}

func (a *app) replace(group models.Group, rows []session.Row) error {
	if !a.sess.Edit(session.Edit{Group: group, Op: session.OpReplace, Rows: rows}) {
		return fmt.Errorf("%s holds at most %d rows", group, group.Max())
	}
	fmt.Fprintf(a.out, "%s: %d rows (unsaved)\n", group, len(rows))
	return nil
}

func (a *app) save(ctx context.Context) error {
	report := a.sess.Save(ctx)
	for _, g := range report.Groups {
		if g.OK {
			fmt.Fprintf(a.out, "%-16s saved\n", g.Group)
			continue
		}
		fmt.Fprintf(a.out, "%-16s %s: %s\n", g.Group, g.Code, g.Message)
	}
	if !report.OK {
		return errNotSaved
	}
	return nil
}

func (a *app) uploadPhoto(ctx context.Context, name string, data []byte) error {
	out, err := a.sess.UploadPhoto(ctx, name, data)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Photo stored (%dx%d) at %s\n", out.Width, out.Height, out.PhotoURL)
	return nil
}

func (a *app) uploadResume(ctx context.Context, loc, name string, data []byte) error {
	if err := a.sess.UploadResume(ctx, loc, name, data); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Resume %s stored\n", loc)
	return nil
}

func linkGroup(kind string) (models.Group, error) {
	k := models.LinkKind(strings.ToLower(kind))
	if !k.Valid() {
		return "", fmt.Errorf("unknown link kind %q", kind)
	}
	return k.Group(), nil
}

func printDraft(w io.Writer, d session.Draft) {
	for _, g := range models.Groups {
		fmt.Fprintf(w, "%s (%s, %d/%d)\n", g, d.States[g], len(d.Rows[g]), g.Max())
		for i, r := range d.Rows[g] {
			if r.Text != "" || (r.Label == "" && r.URL == "") {
				fmt.Fprintf(w, "  %d. %s\n", i+1, r.Text)
				continue
			}
			fmt.Fprintf(w, "  %d. %s <%s>\n", i+1, r.Label, r.URL)
		}
	}
	p := session.RenderPreview(d)
	if p.PhotoURL != "" {
		fmt.Fprintf(w, "photo: %s\n", p.PhotoURL)
	} else {
		fmt.Fprintln(w, "photo: none")
	}
	locales := make([]string, len(d.Resumes))
	for i, r := range d.Resumes {
		locales[i] = r.Locale
	}
	fmt.Fprintf(w, "resumes: %s\n", strings.Join(locales, ", "))
	printResume(w, p)
}

func printResume(w io.Writer, p session.Preview) {
	if !p.HasResume {
		fmt.Fprintln(w, "preview resume: none")
		return
	}
	fmt.Fprintf(w, "preview resume: %s\n", p.ResumeLocale)
}
