package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/pentopublic/pentopublic-client/internal/bootstrap"
	"github.com/pentopublic/pentopublic-client/internal/domain/access"
	"github.com/pentopublic/pentopublic-client/internal/domain/auth"
)

var errNotSignedIn = errors.New("not signed in")

// openApp builds the app and rehydrates the session from the credential store.
func openApp(cmdCtx *commandContext) (*bootstrap.App, error) {
	app, err := bootstrap.Build(cmdCtx.Ctx, cmdCtx.Config, cmdCtx.Logger)
	if err != nil {
		return nil, err
	}
	app.Session.Start(cmdCtx.Ctx)
	return app, nil
}

func closeApp(cmdCtx *commandContext, app *bootstrap.App) {
	if err := app.Close(); err != nil {
		cmdCtx.Logger.Warn("close credential store failed", "error", err)
	}
}

type loginOptions struct {
	Identifier string
	Secret     string
}

func parseLoginFlags(args []string, stdin io.Reader) (loginOptions, error) {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts loginOptions
	fs.StringVar(&opts.Identifier, "u", "", "User name or email")
	fs.StringVar(&opts.Secret, "p", "", "Password (read from stdin when omitted)")
	if err := fs.Parse(args); err != nil {
		return loginOptions{}, err
	}

	if opts.Secret == "" && stdin != nil {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return loginOptions{}, fmt.Errorf("read password: %w", err)
		}
		opts.Secret = strings.TrimRight(line, "\r\n")
	}
	return opts, nil
}

func runLogin(cmdCtx *commandContext, args []string) error {
	opts, err := parseLoginFlags(args, os.Stdin)
	if err != nil {
		return err
	}

	app, err := openApp(cmdCtx)
	if err != nil {
		return err
	}
	defer closeApp(cmdCtx, app)

	res := app.Session.Login(cmdCtx.Ctx, auth.LoginInput{Identifier: opts.Identifier, Secret: opts.Secret})
	if !res.Success {
		return errors.New(res.Error)
	}
	return writef(cmdCtx.Out, "Signed in as %s (%s). Dashboard: %s\n",
		res.Data.DisplayName(), res.Data.Role, access.DashboardPath(res.Data.Role))
}

func parseRegisterFlags(args []string) (auth.Registration, error) {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		reg  auth.Registration
		role string
	)
	fs.StringVar(&reg.UserName, "u", "", "User name")
	fs.StringVar(&reg.Email, "e", "", "Email address")
	fs.StringVar(&reg.Password, "p", "", "Password")
	fs.StringVar(&reg.ConfirmPassword, "confirm", "", "Password confirmation (defaults to -p)")
	fs.StringVar(&role, "role", string(auth.RoleReader), "Reader or Author")
	fs.StringVar(&reg.Profile.Name, "name", "", "Full name")
	fs.StringVar(&reg.Profile.Gender, "gender", "", "Male, Female, Other or PreferNotToSay")
	fs.IntVar(&reg.Profile.Age, "age", 0, "Age (13-120)")
	fs.StringVar(&reg.Profile.PhoneNumber, "phone", "", "Phone number")
	if err := fs.Parse(args); err != nil {
		return auth.Registration{}, err
	}

	if reg.ConfirmPassword == "" {
		reg.ConfirmPassword = reg.Password
	}
	reg.Role = auth.Role(role)
	return reg, nil
}

func runRegister(cmdCtx *commandContext, args []string) error {
	reg, err := parseRegisterFlags(args)
	if err != nil {
		return err
	}

	app, err := openApp(cmdCtx)
	if err != nil {
		return err
	}
	defer closeApp(cmdCtx, app)

	res := app.Session.Register(cmdCtx.Ctx, reg)
	if !res.Success {
		return errors.New(res.Error)
	}
	msg := res.Data.Message
	if msg == "" {
		msg = "Registration successful"
	}
	return writef(cmdCtx.Out, "%s. Please log in: pentopublic login -u %s\n", msg, reg.UserName)
}

func runLogout(cmdCtx *commandContext, _ []string) error {
	app, err := openApp(cmdCtx)
	if err != nil {
		return err
	}
	defer closeApp(cmdCtx, app)

	if err := app.Session.Logout(cmdCtx.Ctx); err != nil {
		return err
	}
	return writef(cmdCtx.Out, "Signed out.\n")
}

func runWhoami(cmdCtx *commandContext, _ []string) error {
	app, err := openApp(cmdCtx)
	if err != nil {
		return err
	}
	defer closeApp(cmdCtx, app)

	s := app.Session.Session()
	if !s.IsAuthenticated() {
		return errNotSignedIn
	}
	id := s.Identity
	tw := tabwriter.NewWriter(cmdCtx.Out, 0, 0, 2, ' ', 0)
	if err := writef(tw, "ID\t%s\nUser\t%s\nName\t%s\nEmail\t%s\nRole\t%s\n",
		id.ID, id.UserName, id.DisplayName(), id.Email, id.Role); err != nil {
		return err
	}
	return tw.Flush()
}

func runCheck(cmdCtx *commandContext, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: pentopublic check <path>")
	}

	app, err := openApp(cmdCtx)
	if err != nil {
		return err
	}
	defer closeApp(cmdCtx, app)

	out := app.Routes.Resolve(app.Session.Session(), args[0])
	if !out.Found {
		return writef(cmdCtx.Out, "%s: no such route\n", args[0])
	}
	if out.Location != "" {
		return writef(cmdCtx.Out, "%s: %s -> %s\n", args[0], out.Decision, out.Location)
	}
	return writef(cmdCtx.Out, "%s: %s\n", args[0], out.Decision)
}

func runRoutes(cmdCtx *commandContext, _ []string) error {
	app, err := openApp(cmdCtx)
	if err != nil {
		return err
	}
	defer closeApp(cmdCtx, app)

	state := app.Session.Session()
	tw := tabwriter.NewWriter(cmdCtx.Out, 0, 0, 2, ' ', 0)
	if err := writef(tw, "PATH\tACCESS\tDECISION\n"); err != nil {
		return err
	}
	for _, r := range app.Routes.Routes {
		decision := access.Decide(state, r.Requirement())
		if err := writef(tw, "%s\t%s\t%s\n", r.Path, describeAccess(r), decision); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func describeAccess(r access.Route) string {
	switch {
	case r.Public:
		return "public"
	case len(r.Roles) > 0:
		names := make([]string, len(r.Roles))
		for i, role := range r.Roles {
			names[i] = string(role)
		}
		return strings.Join(names, "|")
	case r.Role != "":
		return string(r.Role)
	default:
		return "signed in"
	}
}

func runAPI(cmdCtx *commandContext, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: pentopublic api <path>")
	}

	app, err := openApp(cmdCtx)
	if err != nil {
		return err
	}
	defer closeApp(cmdCtx, app)

	client := app.HTTPClient()
	if client == nil {
		return errors.New("api requires AUTH_MODE=http")
	}
	token, ok := app.Store.LoadToken(cmdCtx.Ctx)
	if !ok {
		return errNotSignedIn
	}

	status, body, err := client.Fetch(cmdCtx.Ctx, token, args[0])
	if err != nil {
		return err
	}
	if err := writef(cmdCtx.Out, "%s\n", body); err != nil {
		return err
	}
	if status >= 400 {
		return fmt.Errorf("backend answered %d", status)
	}
	return nil
}

func runServe(cmdCtx *commandContext, _ []string) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cmdCtx.Config, cmdCtx.Logger)
	if err != nil {
		return err
	}
	defer closeApp(cmdCtx, app)

	// Rehydrate in the background; the guard answers 503 until it completes.
	go app.Session.Start(ctx)

	srv := bootstrap.NewHTTPServer(cmdCtx.Config.HTTP.Addr, bootstrap.BuildHTTPHandler(app))
	return bootstrap.Serve(ctx, bootstrap.ServeConfig{
		Server:          srv,
		ShutdownTimeout: cmdCtx.Config.HTTP.ShutdownTimeout,
		Logger:          cmdCtx.Logger,
	})
}
