package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/irkinnovations/portfolio/internal/adminclient"
	"github.com/irkinnovations/portfolio/internal/catalog"
)

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and cache the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = line
			}
			resp, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (token valid until %s)\n", resp.Email, resp.ExpiresAt.Local().Format("2006-01-02"))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "administrator email")
	cmd.Flags().StringVar(&password, "password", "", "administrator password (prompted when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the cached session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.client.Logout()
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := a.client.Me(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), admin.Email)
			return nil
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	var (
		search  string
		preview bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := a.client.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			projects = catalog.Search(projects, search)
			if preview {
				projects = catalog.Preview(projects)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tIMAGES\tCREATED")
			for _, p := range projects {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", p.ID, p.Title, 1+len(p.DetailImages), p.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive filter on title and description")
	cmd.Flags().BoolVar(&preview, "preview", false, "only the projects shown on the home page")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Print a project as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.client.GetProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		},
	}
}

type formFlags struct {
	title, description, shortDescription, liveLink string
	mainImage                                      string
	gallery                                        []string
	removeGallery                                  []int
}

func (f *formFlags) register(cmd *cobra.Command, editing bool) {
	cmd.Flags().StringVar(&f.title, "title", "", "project title")
	cmd.Flags().StringVar(&f.description, "description", "", "long description")
	cmd.Flags().StringVar(&f.shortDescription, "short-description", "", "card summary")
	cmd.Flags().StringVar(&f.liveLink, "live-link", "", "optional public link")
	cmd.Flags().StringVar(&f.mainImage, "main-image", "", "path of the main image to upload")
	cmd.Flags().StringSliceVar(&f.gallery, "gallery", nil, "paths of gallery images to upload, in order")
	if editing {
		cmd.Flags().IntSliceVar(&f.removeGallery, "remove-gallery", nil, "positions (0-based) of gallery images to remove")
	}
}

// apply fills form from the flags that were set and uploads any images.
func (f *formFlags) apply(cmd *cobra.Command, form *adminclient.Form) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	if flags.Changed("title") {
		form.Fields.Title = f.title
	}
	if flags.Changed("description") {
		form.Fields.Description = f.description
	}
	if flags.Changed("short-description") {
		form.Fields.ShortDescription = f.shortDescription
	}
	if flags.Changed("live-link") {
		form.Fields.LiveLink = f.liveLink
	}

	// Highest position first so earlier removals do not shift later ones.
	remove := append([]int(nil), f.removeGallery...)
	sort.Sort(sort.Reverse(sort.IntSlice(remove)))
	for _, i := range remove {
		if err := form.RemoveGalleryImage(ctx, i); err != nil {
			return err
		}
	}

	if f.mainImage != "" {
		file, err := adminclient.ReadImage(f.mainImage)
		if err != nil {
			return err
		}
		if err := form.UploadMainImage(ctx, file); err != nil {
			return err
		}
	}

	if len(f.gallery) > 0 {
		files := make([]adminclient.LocalFile, 0, len(f.gallery))
		for _, path := range f.gallery {
			file, err := adminclient.ReadImage(path)
			if err != nil {
				return err
			}
			files = append(files, file)
		}
		if err := form.AddGalleryImages(ctx, files); err != nil {
			return err
		}
	}
	return nil
}

func (f *formFlags) needsUpload() bool {
	return f.mainImage != "" || len(f.gallery) > 0
}

// uploader connects to the bucket only when the command has files to upload.
func (a *app) uploader(cmd *cobra.Command, f *formFlags) (adminclient.Uploader, error) {
	if !f.needsUpload() {
		return nil, nil
	}
	bucket, err := a.bucket(cmd.Context())
	if err != nil {
		return nil, err
	}
	return bucket, nil
}

func (a *app) createCmd() *cobra.Command {
	var f formFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project, uploading its images",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.client.LoggedIn() {
				return adminclient.ErrNotLoggedIn
			}
			up, err := a.uploader(cmd, &f)
			if err != nil {
				return err
			}
			form := adminclient.NewForm(up)
			return a.submit(cmd, form, &f)
		},
	}
	f.register(cmd, false)
	return cmd
}

func (a *app) editCmd() *cobra.Command {
	var f formFlags
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Update a project; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.client.LoggedIn() {
				return adminclient.ErrNotLoggedIn
			}
			p, err := a.client.GetProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			up, err := a.uploader(cmd, &f)
			if err != nil {
				return err
			}
			form := adminclient.EditForm(up, *p)
			return a.submit(cmd, form, &f)
		},
	}
	f.register(cmd, true)
	return cmd
}

func (a *app) submit(cmd *cobra.Command, form *adminclient.Form, f *formFlags) error {
	if err := f.apply(cmd, form); err != nil {
		form.Abandon(cmd.Context())
		return err
	}

	p, err := form.Submit(cmd.Context(), a.client)
	if err != nil {
		form.Abandon(cmd.Context())
		return err
	}

	verb := "Created"
	if cmd.Name() == "edit" {
		verb = "Updated"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s project %s (%s)\n", verb, p.ID, p.Title)
	return nil
}

func (a *app) deleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a project permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.client.LoggedIn() {
				return adminclient.ErrNotLoggedIn
			}
			if !yes {
				fmt.Fprintf(cmd.ErrOrStderr(), "Delete project %s? This cannot be undone. [y/N]: ", args[0])
				answer, err := readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
				if ans := strings.ToLower(answer); ans != "y" && ans != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}
			if err := a.client.DeleteProject(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Project removed")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
