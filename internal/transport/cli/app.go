package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"vibibay-client-go/internal/domain/eventbus"
	"vibibay-client-go/internal/domain/eventbus/repository"
	"vibibay-client-go/internal/domain/query"
	"vibibay-client-go/internal/platform/logging"
)

// App is the command line adapter over the query layer. Notifications from
// the bus are echoed to the output as they arrive.
type App struct {
	queries *query.Service
	history repository.NotificationRepository
	logger  *logging.Logger
	out     io.Writer
	in      *bufio.Reader
}

func New(queries *query.Service, history repository.NotificationRepository, bus *eventbus.Bus, logger *logging.Logger, out io.Writer, in io.Reader) (*App, error) {
	app := &App{
		queries: queries,
		history: history,
		logger:  logger,
		out:     out,
		in:      bufio.NewReader(in),
	}

	if err := bus.Subscribe(eventbus.TopicNotifySuccess, app.printSuccess); err != nil {
		return nil, err
	}
	if err := bus.Subscribe(eventbus.TopicNotifyError, app.printError); err != nil {
		return nil, err
	}
	return app, nil
}

func (a *App) printSuccess(n eventbus.Notification) {
	fmt.Fprintf(a.out, "ok: %s\n", n.Message)
}

func (a *App) printError(n eventbus.Notification) {
	if n.Code != "" {
		fmt.Fprintf(a.out, "error [%s]: %s\n", n.Code, n.Message)
		return
	}
	fmt.Fprintf(a.out, "error: %s\n", n.Message)
}

// Run dispatches one subcommand.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printUsage()
		return fmt.Errorf("command required")
	}

	command, rest := args[0], args[1:]
	switch command {
	case "login":
		return a.cmdLogin(ctx, rest)
	case "register":
		return a.cmdRegister(ctx, rest)
	case "logout":
		return a.cmdLogout(ctx)
	case "profile":
		return a.cmdProfile(ctx)
	case "devices":
		return a.cmdDevices(ctx)
	case "add":
		return a.cmdAddDevice(ctx)
	case "get":
		return a.cmdGetDevice(ctx, rest)
	case "delete":
		return a.cmdDeleteDevice(ctx, rest)
	case "pay":
		return a.cmdPayDevice(ctx, rest)
	case "key":
		return a.cmdDeviceKey(ctx, rest)
	case "notifications":
		return a.cmdNotifications(ctx, rest)
	case "help":
		a.printUsage()
		return nil
	default:
		a.printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func (a *App) printUsage() {
	usage := strings.TrimLeft(`
Usage: vibibay-client <command> [flags]

Commands:
  login          sign in (-email, -pass, optional -otp)
  register       create an account (-email, -pass)
  logout         discard the stored session
  profile        show the signed-in user
  devices        list devices
  add            provision a new device
  get            show one device (-id)
  delete         schedule device deletion (-id)
  pay            open a payment link (-id, -months)
  key            fetch a device access key (-id)
  notifications  show recent notifications (-limit)
  serve          start the local web facade
`, "\n")
	fmt.Fprint(a.out, usage)
}
