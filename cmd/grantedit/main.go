package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/grantedit/grantedit/internal/config"
	"github.com/grantedit/grantedit/internal/editor"
	"github.com/grantedit/grantedit/internal/policy"
	"github.com/grantedit/grantedit/pkg/cerr"
	"github.com/grantedit/grantedit/pkg/clog"
	"github.com/grantedit/grantedit/pkg/storage"
)

var (
	app      = kingpin.New("grantedit", "Editor for Java security policy files")
	filePath = app.Flag("file", "Path to the policy file").Short('f').String()
	noColor  = app.Flag("no-color", "Disable colored output").Bool()
	verbose  = app.Flag("verbose", "Enable debug logging").Short('v').Bool()

	listCmd = app.Command("list", "List codebase entries")

	showCmd      = app.Command("show", "Show permissions for a codebase")
	showCodebase = showCmd.Arg("codebase", "Codebase URL (omit for the global entry)").String()

	enableCmd      = app.Command("enable", "Enable a recognized permission")
	enableName     = enableCmd.Arg("permission", "Permission name, eg \"Network access\"").Required().String()
	enableCodebase = enableCmd.Flag("codebase", "Codebase URL (default: global entry)").String()

	disableCmd      = app.Command("disable", "Disable a recognized permission")
	disableName     = disableCmd.Arg("permission", "Permission name").Required().String()
	disableCodebase = disableCmd.Flag("codebase", "Codebase URL (default: global entry)").String()

	addCmd = app.Command("add-codebase", "Add a codebase entry")
	addURL = addCmd.Arg("url", "Codebase URL").Required().String()

	removeCmd = app.Command("remove-codebase", "Remove a codebase entry")
	removeURL = removeCmd.Arg("url", "Codebase URL").Required().String()

	customCmd      = app.Command("custom", "List custom permission statements for a codebase")
	customCodebase = customCmd.Arg("codebase", "Codebase URL (omit for the global entry)").String()

	permsCmd = app.Command("permissions", "List the recognized permission catalog")

	diffCmd = app.Command("diff", "Show the normalization diff that saving would apply")

	fmtCmd = app.Command("fmt", "Rewrite the policy file in canonical form")

	watchCmd = app.Command("watch", "Report external changes to the policy file until interrupted")
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))
	color.NoColor = *noColor

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "grantedit: %v\n", err)
		os.Exit(1)
	}

	level := cfg.SlogLevel()
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(clog.NewAttributesHandler(clog.NewTextHandler(os.Stderr,
		clog.WithLevel(level), clog.WithColor(!*noColor))))

	path := cfg.PolicyPath
	if *filePath != "" {
		path = *filePath
	}

	if command == permsCmd.FullCommand() {
		runPermissions()
		return
	}

	if path == "" {
		fmt.Fprintln(os.Stderr, "grantedit: no policy file path; use --file or GRANTEDIT_POLICY_PATH")
		os.Exit(1)
	}

	ctx := clog.ContextWithLog(context.Background())
	store := storage.NewLocalStore(cfg.LockTimeout)
	sess := editor.NewSession(path, store, logger)

	switch command {
	case enableCmd.FullCommand(), disableCmd.FullCommand(), addCmd.FullCommand(),
		removeCmd.FullCommand(), fmtCmd.FullCommand():
		// Surface a read-only file before loading instead of after the edit
		// is already applied in memory.
		if err := ensureWritable(ctx, store, path); err != nil {
			fmt.Fprintf(os.Stderr, "grantedit: %v\n", err)
			os.Exit(1)
		}
	}

	var runErr error
	switch command {
	case listCmd.FullCommand():
		runErr = runList(ctx, sess)
	case showCmd.FullCommand():
		runErr = runShow(ctx, sess, *showCodebase)
	case enableCmd.FullCommand():
		runErr = runToggle(ctx, sess, *enableName, *enableCodebase, true)
	case disableCmd.FullCommand():
		runErr = runToggle(ctx, sess, *disableName, *disableCodebase, false)
	case addCmd.FullCommand():
		runErr = runAddCodebase(ctx, sess, *addURL)
	case removeCmd.FullCommand():
		runErr = runRemoveCodebase(ctx, sess, *removeURL)
	case customCmd.FullCommand():
		runErr = runCustom(ctx, sess, *customCodebase)
	case diffCmd.FullCommand():
		runErr = runDiff(ctx, sess, store, path)
	case fmtCmd.FullCommand():
		runErr = runFmt(ctx, sess)
	case watchCmd.FullCommand():
		runErr = runWatch(ctx, sess, logger)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "grantedit: %v\n", runErr)
		os.Exit(1)
	}
}

func ensureWritable(ctx context.Context, store storage.Store, path string) error {
	ok, err := store.Writable(ctx, path)
	if err != nil {
		return cerr.WrapReadError(path, err)
	}
	if !ok {
		return cerr.NewError(cerr.PermissionDenied, fmt.Sprintf("%s is not writable", path), nil)
	}
	return nil
}

// loadModel fills the session from disk. A missing file is not fatal:
// editing starts from an empty model and the file is created on save.
func loadModel(ctx context.Context, sess *editor.Session) error {
	op, err := sess.Load(ctx)
	if err != nil {
		return err
	}
	if err := op.Wait(ctx); err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return nil
		}
		return err
	}
	return nil
}

func saveModel(ctx context.Context, sess *editor.Session) error {
	op, err := sess.Save(ctx)
	if err != nil {
		return err
	}
	return op.Wait(ctx)
}

func displayName(codebase string) string {
	if codebase == policy.GlobalCodebase {
		return color.CyanString("(global)")
	}
	return codebase
}

func runList(ctx context.Context, sess *editor.Session) error {
	if err := loadModel(ctx, sess); err != nil {
		return err
	}
	m := sess.Model()
	for _, codebase := range m.Codebases() {
		perms, _ := m.PermissionsFor(codebase)
		enabled := 0
		for _, on := range perms {
			if on {
				enabled++
			}
		}
		custom := len(m.CustomPermissionsFor(codebase))
		fmt.Printf("%s  %d enabled, %d custom\n", displayName(codebase), enabled, custom)
	}
	return nil
}

func runShow(ctx context.Context, sess *editor.Session, codebase string) error {
	if err := loadModel(ctx, sess); err != nil {
		return err
	}
	m := sess.Model()
	perms, ok := m.PermissionsFor(codebase)
	if !ok {
		return fmt.Errorf("no entry for codebase %q", codebase)
	}
	fmt.Println(displayName(codebase))
	for _, kind := range policy.Kinds() {
		state := color.RedString("off")
		if perms[kind] {
			state = color.GreenString("on ")
		}
		fmt.Printf("  %s %-24s %s\n", state, kind.Name(), kind.Description())
	}
	for _, custom := range m.CustomPermissionsFor(codebase) {
		fmt.Printf("  %s %s\n", color.YellowString("custom"), custom)
	}
	return nil
}

func runToggle(ctx context.Context, sess *editor.Session, name, codebase string, enabled bool) error {
	kind, ok := policy.KindByName(name)
	if !ok {
		return fmt.Errorf("unknown permission %q (see 'grantedit permissions')", name)
	}
	if err := loadModel(ctx, sess); err != nil {
		return err
	}
	m := sess.Model()
	if !m.Has(codebase) {
		// Mirrors the -codebase startup flag of the original editor:
		// referencing an absent codebase creates its entry.
		if err := m.AddCodebase(codebase); err != nil {
			return err
		}
	}
	if !m.SetPermission(codebase, kind, enabled) && !m.Dirty() {
		fmt.Printf("%s already %s for %s\n", kind.Name(), stateWord(enabled), displayName(codebase))
		return nil
	}
	if err := saveModel(ctx, sess); err != nil {
		return err
	}
	fmt.Printf("%s %s for %s\n", kind.Name(), stateWord(enabled), displayName(codebase))
	return nil
}

func stateWord(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func runAddCodebase(ctx context.Context, sess *editor.Session, url string) error {
	if err := loadModel(ctx, sess); err != nil {
		return err
	}
	m := sess.Model()
	if err := m.AddCodebase(url); err != nil {
		return err
	}
	if !m.Dirty() {
		fmt.Printf("codebase %s already present\n", url)
		return nil
	}
	if err := saveModel(ctx, sess); err != nil {
		return err
	}
	fmt.Printf("added codebase %s\n", url)
	return nil
}

func runRemoveCodebase(ctx context.Context, sess *editor.Session, url string) error {
	if err := loadModel(ctx, sess); err != nil {
		return err
	}
	if !sess.Model().RemoveCodebase(url) {
		fmt.Printf("no entry for codebase %s\n", url)
		return nil
	}
	if err := saveModel(ctx, sess); err != nil {
		return err
	}
	fmt.Printf("removed codebase %s\n", url)
	return nil
}

func runCustom(ctx context.Context, sess *editor.Session, codebase string) error {
	if err := loadModel(ctx, sess); err != nil {
		return err
	}
	m := sess.Model()
	if !m.Has(codebase) {
		return fmt.Errorf("no entry for codebase %q", codebase)
	}
	for _, custom := range m.CustomPermissionsFor(codebase) {
		fmt.Println(custom)
	}
	return nil
}

func runPermissions() {
	for _, kind := range policy.Kinds() {
		fmt.Printf("%-24s %s\n", color.New(color.Bold).Sprint(kind.Name()), kind.Description())
		fmt.Printf("%24s %s\n", "", kind.Statement())
	}
}

func runDiff(ctx context.Context, sess *editor.Session, store storage.Store, path string) error {
	current, err := store.ReadText(ctx, path)
	if err != nil {
		wrapped := cerr.WrapReadError(path, err)
		if !cerr.IsCode(wrapped, cerr.NotFound) {
			return wrapped
		}
		current = ""
	}
	if err := loadModel(ctx, sess); err != nil {
		return err
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(current),
		B:        difflib.SplitLines(sess.Render()),
		FromFile: path,
		ToFile:   path + " (normalized)",
		Context:  3,
	}
	out, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return err
	}
	if strings.TrimSpace(out) == "" {
		fmt.Println("already canonical")
		return nil
	}
	fmt.Print(out)
	return nil
}

func runWatch(ctx context.Context, sess *editor.Session, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := loadModel(ctx, sess); err != nil {
		return err
	}
	fmt.Printf("watching %s\n", sess.Path())

	w := editor.NewWatcher(sess.Path(), logger)
	err := w.Watch(ctx, func() {
		op, err := sess.Load(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "grantedit: %v\n", err)
			return
		}
		if err := op.Wait(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "grantedit: %v\n", err)
			return
		}
		m := sess.Model()
		fmt.Printf("%s reloaded: %d codebases\n",
			color.YellowString("changed"), len(m.Codebases()))
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runFmt(ctx context.Context, sess *editor.Session) error {
	op, err := sess.Normalize(ctx)
	if err != nil {
		return err
	}
	if err := op.Wait(ctx); err != nil {
		return err
	}
	fmt.Printf("normalized %s\n", sess.Path())
	return nil
}
