package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/evanschultz/kanban/internal/domain"
)

// IOHandler runs worker requests against the local save store and the cloud.
type IOHandler struct {
	saves    SaveStore
	cloud    Cloud
	throttle *ResetThrottle
	clock    Clock
}

// NewIOHandler constructs a handler. cloud may be nil when sync is not configured.
func NewIOHandler(saves SaveStore, cloud Cloud, clock Clock) *IOHandler {
	if clock == nil {
		clock = time.Now
	}
	return &IOHandler{
		saves:    saves,
		cloud:    cloud,
		throttle: NewResetThrottle(ResetLinkInterval),
		clock:    clock,
	}
}

// Handle satisfies Handler.
func (h *IOHandler) Handle(ctx context.Context, req Request) Result {
	res := h.handle(ctx, req)
	if res.Err != nil {
		log.Warn("io request failed", "kind", req.Kind, "target", req.Target, "err", res.Err)
	} else {
		log.Debug("io request complete", "kind", req.Kind, "target", req.Target)
	}
	return res
}

func (h *IOHandler) handle(ctx context.Context, req Request) Result {
	switch req.Kind {
	case RequestSaveLocal, RequestAutoSave:
		return h.saveLocal(ctx, req)
	case RequestLoadLocal, RequestLoadPreview:
		return h.loadLocal(ctx, req)
	case RequestDeleteLocal:
		if err := h.saves.Delete(ctx, req.Target); err != nil {
			return Result{Err: ioError("delete save", err)}
		}
		return h.listLocal(ctx)
	case RequestListLocalSaves:
		return h.listLocal(ctx)
	}

	if h.cloud == nil {
		return Result{Err: fmt.Errorf("%w: cloud sync is not configured", ErrForbidden)}
	}
	creds := req.Credentials
	switch req.Kind {
	case RequestCloudLogin:
		session, err := h.cloud.Login(ctx, normalizeEmail(creds.Email), creds.Password)
		return Result{Session: session, Err: ioError("login", err)}
	case RequestCloudSignUp:
		session, err := h.cloud.SignUp(ctx, normalizeEmail(creds.Email), creds.Password)
		return Result{Session: session, Err: ioError("sign up", err)}
	case RequestCloudSendResetLink:
		email := normalizeEmail(creds.Email)
		if err := h.throttle.Allow(email, h.clock()); err != nil {
			return Result{Err: err}
		}
		return Result{Err: ioError("send reset link", h.cloud.SendResetLink(ctx, email))}
	case RequestCloudResetPassword:
		err := h.cloud.ResetPassword(ctx, normalizeEmail(creds.Email), creds.Token, creds.Password)
		return Result{Err: ioError("reset password", err)}
	case RequestCloudSync:
		data, err := EncodeSave(req.Workspace, req.Format, h.clock())
		if err != nil {
			return Result{Err: err}
		}
		saved, err := h.cloud.Sync(ctx, req.Session, data)
		return Result{CloudSave: saved, Err: ioError("sync", err)}
	case RequestCloudListSaves:
		saves, err := h.cloud.ListSaves(ctx, req.Session)
		return Result{CloudSaves: saves, Err: ioError("list cloud saves", err)}
	case RequestCloudFetchSave:
		data, err := h.cloud.FetchSave(ctx, req.Session, req.Target)
		if err != nil {
			return Result{Err: ioError("fetch cloud save", err)}
		}
		save, err := DecodeSave(data, req.Format)
		if err != nil {
			return Result{Err: err}
		}
		return Result{Loaded: &save}
	case RequestCloudLogout:
		return Result{Err: ioError("logout", h.cloud.Logout(ctx, req.Session))}
	}
	return Result{Err: fmt.Errorf("%w: unknown request %s", domain.ErrInputValidation, req.Kind)}
}

func (h *IOHandler) saveLocal(ctx context.Context, req Request) Result {
	now := h.clock()
	data, err := EncodeSave(req.Workspace, req.Format, now)
	if err != nil {
		return Result{Err: err}
	}
	info, err := h.saves.Save(ctx, data, now)
	if err != nil {
		return Result{Err: ioError("save", err)}
	}
	return Result{Save: info}
}

func (h *IOHandler) loadLocal(ctx context.Context, req Request) Result {
	data, err := h.saves.Read(ctx, req.Target)
	if err != nil {
		return Result{Err: ioError("read save", err)}
	}
	save, err := DecodeSave(data, req.Format)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Loaded: &save}
}

func (h *IOHandler) listLocal(ctx context.Context) Result {
	saves, err := h.saves.List(ctx)
	if err != nil {
		return Result{Err: ioError("list saves", err)}
	}
	return Result{Saves: saves}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
