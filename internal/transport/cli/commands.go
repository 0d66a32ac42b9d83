package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"vibibay-client-go/internal/domain/api"
	"vibibay-client-go/internal/platform/errors"
	"vibibay-client-go/internal/utils"
)

func (a *App) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(a.out)
	email := fs.String("email", "", "account email")
	pass := fs.String("pass", "", "account password")
	otp := fs.String("otp", "", "one-time code, when enrolled")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *pass == "" {
		return fmt.Errorf("login requires -email and -pass")
	}

	req := api.LoginRequest{Email: *email, Pass: *pass, OTP: *otp}
	_, err := a.queries.Login(ctx, req)
	if errors.IsStepUp(err) {
		// Re-prompt and resubmit with the one-time code.
		fmt.Fprint(a.out, "One-time code: ")
		line, readErr := a.in.ReadString('\n')
		if readErr != nil {
			return err
		}
		req.OTP = strings.TrimSpace(line)
		_, err = a.queries.Login(ctx, req)
	}
	return err
}

func (a *App) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(a.out)
	email := fs.String("email", "", "account email")
	pass := fs.String("pass", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *pass == "" {
		return fmt.Errorf("register requires -email and -pass")
	}

	resp, err := a.queries.Register(ctx, api.RegisterRequest{Email: *email, Pass: *pass})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "MFA secret: %s\n", resp.MFASecret)
	fmt.Fprintf(a.out, "Enrollment URL: %s\n", resp.QRURL)
	fmt.Fprintln(a.out, "Run `vibibay-client login` to sign in.")
	return nil
}

func (a *App) cmdLogout(ctx context.Context) error {
	return a.queries.Logout(ctx)
}

func (a *App) cmdProfile(ctx context.Context) error {
	user, err := a.queries.User(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "ID:    %d\n", user.ID)
	fmt.Fprintf(a.out, "Email: %s\n", user.Email)
	if user.TelegramUsername != nil {
		fmt.Fprintf(a.out, "Telegram: @%s\n", *user.TelegramUsername)
	}
	if user.CreatedAt != nil {
		fmt.Fprintf(a.out, "Member since: %s\n", user.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

func (a *App) cmdDevices(ctx context.Context) error {
	devices, err := a.queries.Devices(ctx)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		fmt.Fprintln(a.out, "No devices.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tSUBSCRIPTION\tEXPIRES")
	for _, device := range devices {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			device.ID,
			device.Name,
			device.Status,
			device.Subscription.Status,
			formatExpiry(device.Subscription.ExpiresAt),
		)
	}
	return w.Flush()
}

func (a *App) cmdAddDevice(ctx context.Context) error {
	resp, err := a.queries.AddDevice(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Device %d (%s) created.\n", resp.Device.ID, resp.Device.Name)
	return nil
}

func (a *App) cmdGetDevice(ctx context.Context, args []string) error {
	id, err := parseDeviceID("get", a, args)
	if err != nil {
		return err
	}

	device, err := a.queries.Device(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "ID:     %d\n", device.ID)
	fmt.Fprintf(a.out, "Name:   %s\n", device.Name)
	fmt.Fprintf(a.out, "Status: %s\n", device.Status)
	fmt.Fprintf(a.out, "Subscription: %s (expires %s)\n",
		device.Subscription.Status, formatExpiry(device.Subscription.ExpiresAt))
	if device.ScheduledDeleteAt != nil {
		fmt.Fprintf(a.out, "Scheduled deletion: %s\n",
			device.ScheduledDeleteAt.Format(time.RFC3339))
	}
	return nil
}

func (a *App) cmdDeleteDevice(ctx context.Context, args []string) error {
	id, err := parseDeviceID("delete", a, args)
	if err != nil {
		return err
	}
	_, err = a.queries.DeleteDevice(ctx, id)
	return err
}

func (a *App) cmdPayDevice(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pay", flag.ContinueOnError)
	fs.SetOutput(a.out)
	id := fs.Int64("id", 0, "device id")
	months := fs.Int("months", 1, "subscription months to pay for")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resp, err := a.queries.PayDevice(ctx, *id, *months)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Payment link: %s\n", resp.PaymentURL)
	return nil
}

func (a *App) cmdDeviceKey(ctx context.Context, args []string) error {
	id, err := parseDeviceID("key", a, args)
	if err != nil {
		return err
	}

	resp, err := a.queries.DeviceAccessKey(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Access key: %s\n", resp.AccessURL)
	return nil
}

func (a *App) cmdNotifications(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("notifications", flag.ContinueOnError)
	fs.SetOutput(a.out)
	limit := fs.Int("limit", 20, "number of entries to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if a.history == nil {
		fmt.Fprintln(a.out, "Notification history is not enabled.")
		return nil
	}

	notifications, err := a.history.Recent(ctx, *limit)
	if err != nil {
		return err
	}
	if len(notifications) == 0 {
		fmt.Fprintln(a.out, "No notifications.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tLEVEL\tOPERATION\tMESSAGE")
	for _, n := range notifications {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			n.CreatedAt.Format("01-02 15:04:05"),
			n.Level,
			n.Operation,
			utils.Truncate(n.Message, 60),
		)
	}
	return w.Flush()
}

func parseDeviceID(name string, a *App, args []string) (int64, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	id := fs.Int64("id", 0, "device id")
	if err := fs.Parse(args); err != nil {
		return 0, err
	}
	if *id <= 0 {
		return 0, fmt.Errorf("%s requires a positive -id", name)
	}
	return *id, nil
}

func formatExpiry(t *time.Time) string {
	if t == nil {
		return "-"
	}
	// Display hint only; lifecycle decisions come from the status field.
	if time.Now().After(*t) {
		return t.Format("2006-01-02") + " (expired)"
	}
	return t.Format("2006-01-02")
}
