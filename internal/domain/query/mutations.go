package query

import (
	"context"

	"vibibay-client-go/internal/domain/api"
	"vibibay-client-go/internal/domain/eventbus"
	"vibibay-client-go/internal/platform/errors"
)

// Login authenticates and seeds the user cache with the returned profile so
// the next read skips the round trip. A step-up failure is republished as a
// distinct signal for the presentation layer to re-prompt for a one-time
// code.
func (s *Service) Login(ctx context.Context, req api.LoginRequest) (api.LoginResponse, error) {
	const op = "session.login"

	resp, err := s.client.Login(ctx, req)
	if err != nil {
		if errors.IsStepUp(err) {
			n := eventbus.NewNotification(eventbus.LevelInfo, op, "one-time code required")
			n.Code = errors.CodeOTPRequired
			s.bus.Publish(eventbus.TopicSessionStepUp, n)
			return api.LoginResponse{}, err
		}
		s.notifyError(op, err)
		return api.LoginResponse{}, err
	}

	s.cache.Set(UserKey(), resp.User)
	s.notifySuccess(op, "signed in as "+resp.User.Email)
	return resp, nil
}

// Register creates an account. It does not authenticate; the caller signs in
// afterwards with the new credentials.
func (s *Service) Register(ctx context.Context, req api.RegisterRequest) (api.RegisterResponse, error) {
	const op = "session.register"

	resp, err := s.client.Register(ctx, req)
	if err != nil {
		s.notifyError(op, err)
		return api.RegisterResponse{}, err
	}
	s.notifySuccess(op, "account created")
	return resp, nil
}

// Logout discards the stored credential and all cached state.
func (s *Service) Logout(ctx context.Context) error {
	const op = "session.logout"

	if err := s.client.Logout(ctx); err != nil {
		s.notifyError(op, err)
		return err
	}
	s.cache.InvalidateAll()
	s.bus.Publish(eventbus.TopicCacheInvalidated, "*")
	s.notifySuccess(op, "signed out")
	return nil
}

// AddDevice provisions a new device and invalidates the device list so the
// next read reflects it.
func (s *Service) AddDevice(ctx context.Context) (api.AddDeviceResponse, error) {
	const op = "devices.add"

	resp, err := s.client.AddDevice(ctx)
	if err != nil {
		s.notifyError(op, err)
		return api.AddDeviceResponse{}, err
	}
	s.invalidate(DevicesKey())
	s.notifySuccess(op, "device "+resp.Device.Name+" created")
	return resp, nil
}

// DeleteDevice schedules server-side deletion and invalidates the list and
// the device entry. The device keeps appearing until the server removes it;
// the gap between this call and the next refresh is the server's eventual
// consistency window.
func (s *Service) DeleteDevice(ctx context.Context, id int64) (api.Message, error) {
	const op = "devices.delete"

	msg, err := s.client.DeleteDevice(ctx, id)
	if err != nil {
		s.notifyError(op, err)
		return api.Message{}, err
	}
	s.invalidate(DevicesKey(), DeviceKey(id))

	text := msg.Message
	if text == "" {
		text = "deletion scheduled"
	}
	s.notifySuccess(op, text)
	return msg, nil
}

// PayDevice requests a payment link and opens it. Paying mutates nothing
// locally; the device refreshes on the next explicit invalidate or refetch.
func (s *Service) PayDevice(ctx context.Context, id int64, months int) (api.PaymentResponse, error) {
	const op = "devices.pay"

	resp, err := s.client.PayDevice(ctx, id, months)
	if err != nil {
		s.notifyError(op, err)
		return api.PaymentResponse{}, err
	}

	if s.openURL != nil {
		if err := s.openURL(resp.PaymentURL); err != nil {
			s.notifyError(op, errors.Wrap(errors.KindUnknown, op, "open payment link", err))
			return resp, nil
		}
	}
	s.notifySuccess(op, "payment link opened")
	return resp, nil
}

// DeviceAccessKey fetches the connection key and copies it to the clipboard.
// A clipboard failure is tolerated silently; the only consequence is the
// missing "copied" notification.
func (s *Service) DeviceAccessKey(ctx context.Context, id int64) (api.DeviceKeyResponse, error) {
	const op = "devices.key"

	resp, err := s.client.DeviceKey(ctx, id)
	if err != nil {
		s.notifyError(op, err)
		return api.DeviceKeyResponse{}, err
	}

	if s.copyText != nil {
		if err := s.copyText(resp.AccessURL); err != nil {
			if s.logger != nil {
				s.logger.Debug("clipboard copy failed: %v", err)
			}
			return resp, nil
		}
		s.notifySuccess(op, "access key copied")
	}
	return resp, nil
}

func (s *Service) notifySuccess(op, message string) {
	s.bus.Publish(eventbus.TopicNotifySuccess,
		eventbus.NewNotification(eventbus.LevelSuccess, op, message))
}

func (s *Service) notifyError(op string, err error) {
	message := errors.MessageOf(err)
	if message == "" {
		message = "something went wrong"
	}
	n := eventbus.NewNotification(eventbus.LevelError, op, message)
	n.Code = errors.CodeOf(err)
	s.bus.Publish(eventbus.TopicNotifyError, n)
}
