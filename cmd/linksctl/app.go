package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"refexcms/internal/gateway"
	"refexcms/internal/linktree"
	"refexcms/internal/models"
)

// errUsage marks a bad command line. The flag package has already told
// the user what went wrong.
var errUsage = errors.New("usage")

// cmsClient is the part of the gateway client the commands use.
type cmsClient interface {
	Login(ctx context.Context, email, password string) (*gateway.LoginResult, error)
	Load(ctx context.Context) ([]models.Category, error)
	Save(ctx context.Context, tree []models.Category) ([]models.Category, error)
	Findings(ctx context.Context) ([]linktree.Finding, error)
	Revisions(ctx context.Context, limit int) ([]models.DocumentRevision, error)
	Restore(ctx context.Context, revisionID int64) ([]models.Category, error)
	Upload(ctx context.Context, kind models.UploadKind, filename string, r io.Reader) (string, error)
}

type app struct {
	client  cmsClient
	out     io.Writer
	errOut  io.Writer
	in      *bufio.Reader
	baseURL string
	now     func() time.Time
}

type command struct {
	summary string
	run     func(a *app, ctx context.Context, fs *flag.FlagSet, args []string) error
}

var commands = map[string]command{
	"login":           {"exchange credentials for a bearer token", (*app).login},
	"show":            {"print the stored tree", (*app).show},
	"view":            {"print the page a visitor would see", (*app).view},
	"lint":            {"list advisory problems in the stored tree", (*app).lint},
	"add-category":    {"append a category", (*app).addCategory},
	"rename-category": {"rename a category", (*app).renameCategory},
	"set-collapsible": {"switch a category between stacked and accordion", (*app).setCollapsible},
	"delete-category": {"delete a category and everything under it", (*app).deleteCategory},
	"move-category":   {"move a category up or down", (*app).moveCategory},
	"add-section":     {"append a section to a category", (*app).addSection},
	"update-section":  {"change section fields", (*app).updateSection},
	"delete-section":  {"delete a section and its items", (*app).deleteSection},
	"move-section":    {"move a section up or down", (*app).moveSection},
	"add-item":        {"append an item to a section", (*app).addItem},
	"update-item":     {"change item fields", (*app).updateItem},
	"delete-item":     {"delete an item", (*app).deleteItem},
	"move-item":       {"move an item up or down", (*app).moveItem},
	"upload":          {"upload an image or PDF and print its URL", (*app).upload},
	"revisions":       {"list saved revisions", (*app).revisions},
	"restore":         {"restore a saved revision", (*app).restore},
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: linksctl [-server URL] [-token TOKEN] <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-16s %s\n", name, commands[name].summary)
	}
}

// run dispatches args[0] to its command.
func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" {
		printUsage(a.out)
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(a.errOut, "unknown command %q\n\n", args[0])
		printUsage(a.errOut)
		return errUsage
	}
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	if err := cmd.run(a, ctx, fs, args[1:]); !errors.Is(err, flag.ErrHelp) {
		return err
	}
	return nil
}

// parse parses command flags. flag.ErrHelp is passed through so run can
// exit cleanly after -h.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	return nil
}

// explicit reports which flags were given on the command line.
func explicit(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func required(fs *flag.FlagSet, names ...string) error {
	set := explicit(fs)
	for _, n := range names {
		if !set[n] {
			fmt.Fprintf(fs.Output(), "flag -%s is required\n", n)
			return errUsage
		}
	}
	return nil
}

// confirmer asks on the terminal unless -yes was given.
func (a *app) confirmer(yes bool) linktree.Confirmer {
	if yes {
		return linktree.AlwaysConfirm
	}
	return linktree.ConfirmFunc(func(prompt string) bool {
		fmt.Fprintf(a.out, "%s [y/N]: ", prompt)
		line, _ := a.in.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	})
}

// edit loads the tree, applies change in an editor session and saves the
// result when the tree changed.
func (a *app) edit(ctx context.Context, confirm linktree.Confirmer, change func(e *linktree.Editor) (string, error)) error {
	tree, err := a.client.Load(ctx)
	if err != nil {
		return fmt.Errorf("load tree: %w", err)
	}
	e := linktree.NewEditor(tree, confirm)
	if a.now != nil {
		e.SetClock(a.now)
	}
	msg, err := change(e)
	if errors.Is(err, linktree.ErrNotConfirmed) {
		fmt.Fprintln(a.out, "cancelled")
		return nil
	}
	if err != nil {
		return err
	}
	if !e.Dirty() {
		fmt.Fprintln(a.out, "nothing to save")
		return nil
	}
	if _, err := a.client.Save(ctx, e.Tree()); err != nil {
		return fmt.Errorf("save tree: %w", err)
	}
	e.MarkSaved()
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *app) login(ctx context.Context, fs *flag.FlagSet, args []string) error {
	email := fs.String("email", "", "account email")
	password := fs.String("password", os.Getenv("REFEXCMS_PASSWORD"), "account password (REFEXCMS_PASSWORD)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "email"); err != nil {
		return err
	}
	res, err := a.client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, res.Token)
	fmt.Fprintf(a.errOut, "token expires %s\n", res.ExpiresAt.Format(time.RFC3339))
	return nil
}

func (a *app) upload(ctx context.Context, fs *flag.FlagSet, args []string) error {
	kind := fs.String("kind", "", "upload kind: image or pdf (default from the file extension)")
	file := fs.String("file", "", "file to upload")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "file"); err != nil {
		return err
	}
	k, err := uploadKind(*kind, *file)
	if err != nil {
		return err
	}
	f, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer f.Close()

	url, err := a.client.Upload(ctx, k, filepath.Base(*file), f)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, url)
	return nil
}

func uploadKind(kind, file string) (models.UploadKind, error) {
	switch kind {
	case "image":
		return models.UploadImage, nil
	case "pdf":
		return models.UploadPDF, nil
	case "":
		if strings.EqualFold(filepath.Ext(file), ".pdf") {
			return models.UploadPDF, nil
		}
		return models.UploadImage, nil
	}
	return "", fmt.Errorf("unknown upload kind %q", kind)
}

func (a *app) revisions(ctx context.Context, fs *flag.FlagSet, args []string) error {
	limit := fs.Int("limit", 20, "number of revisions to list")
	if err := parse(fs, args); err != nil {
		return err
	}
	revs, err := a.client.Revisions(ctx, *limit)
	if err != nil {
		return err
	}
	if len(revs) == 0 {
		fmt.Fprintln(a.out, "no revisions")
		return nil
	}
	for _, r := range revs {
		fmt.Fprintf(a.out, "%d\t%s\t%s\n", r.ID, r.CreatedAt.Format(time.RFC3339), r.CreatedBy)
	}
	return nil
}

func (a *app) restore(ctx context.Context, fs *flag.FlagSet, args []string) error {
	id := fs.Int64("id", 0, "revision id")
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "id"); err != nil {
		return err
	}
	if !a.confirmer(*yes).Confirm(fmt.Sprintf("Replace the stored tree with revision %d?", *id)) {
		fmt.Fprintln(a.out, "cancelled")
		return nil
	}
	tree, err := a.client.Restore(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "restored revision %d (%d categories)\n", *id, len(tree))
	return nil
}
