// Package bot wires the dealership bot: menu commands, catalog browsing,
// filter selection, the customer inquiry flow and the admin inventory
// panel.
package bot

import (
	"fmt"
	"io"
	"os"

	coreconfig "github.com/a7motors/dealerbot/core/config"
	tg "github.com/a7motors/dealerbot/core/telegram"
	"github.com/a7motors/dealerbot/core/telegram/commands"
	"github.com/a7motors/dealerbot/core/telegram/dialog"
	tghelpers "github.com/a7motors/dealerbot/core/telegram/helpers"
	"github.com/a7motors/dealerbot/core/telegram/middleware"
	"github.com/a7motors/dealerbot/core/telegram/router"

	"github.com/a7motors/dealerbot/catalog"
	"github.com/a7motors/dealerbot/media"
	"github.com/a7motors/dealerbot/notify"

	"context"
	"sync"

	tele "gopkg.in/telebot.v4"
)

// Callback keys. Telebot encodes these as the unique part of callback data;
// the payload after '|' carries the parameters.
const (
	cbMenu        = "menu"
	cbCarNav      = "car"
	cbPhotoNav    = "photo"
	cbInquire     = "inq"
	cbFilterField = "ffield"
	cbFilterValue = "fval"
	cbFilterShow  = "fshow"
	cbFilterCount = "fcount"
	cbFilterReset = "freset"
	cbChoice      = "choice"
	cbSkip        = "skip"
	cbDlgCancel   = "dcancel"
	cbPhotosDone  = "pdone"
	cbPhotoDel    = "pdel"
	cbAdmin       = "adm"
)

// inquiryDispatcher abstracts notification delivery for tests.
type inquiryDispatcher interface {
	Dispatch(profile notify.Profile, inq notify.Inquiry) bool
}

// App aggregates the bot's services and implements the routing hooks.
type App struct {
	cfg     *coreconfig.Config
	store   *catalog.Store
	engine  *catalog.Engine
	photos  *media.Library
	dialogs *dialog.Manager
	allow   coreconfig.Allowlist
	gate    middleware.Gate

	registry *tg.Registry

	mu       sync.Mutex
	notifier inquiryDispatcher
	bot      *tele.Bot

	cursors *cursorTable
	filters *filterTable
	renders *renderCache
}

// New builds the application from configuration. The notifier is wired at
// OnStart once the transport exists.
func New(cfg *coreconfig.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bot: nil config")
	}
	store := catalog.Open(cfg.Catalog.DataFile)
	allow := coreconfig.ParseAllowlist(cfg.Admins.Allowlist)

	app := &App{
		cfg:     cfg,
		store:   store,
		engine:  catalog.NewEngine(store, cfg.Catalog),
		photos:  media.NewLibrary(cfg.Catalog, tg.BuildHTTPClient()),
		dialogs: dialog.NewManager(),
		allow:   allow,
		cursors: newCursorTable(),
		filters: newFilterTable(),
		renders: newRenderCache(),
	}
	app.gate = middleware.Gate{
		Allowlist: allow,
		OnReject: func(c tele.Context) error {
			return c.Send(textAccessDenied)
		},
	}

	if err := app.photos.EnsureDir(); err != nil {
		return nil, fmt.Errorf("bot: photo dir: %w", err)
	}

	app.registerFlows()
	app.registry = app.buildRegistry()
	return app, nil
}

// CoreConfig exposes the embedded configuration for the runner.
func (a *App) CoreConfig() *coreconfig.Config {
	return a.cfg
}

func (a *App) registerFlows() {
	a.registerInquiryFlow()
	a.registerAddCarFlow()
	a.registerPhotoFlow()
	a.registerAdminPromptFlows()
}

func (a *App) buildRegistry() *tg.Registry {
	reg := tg.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Главное меню",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.handleHelp,
		Description: "Справка",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     a.handleCancel,
		Description: "Отменить текущий диалог",
	})
	reg.RegisterCommand("/admin", commands.Command{
		Handler:     a.handleAdminMenu,
		Description: "Панель администратора",
		AdminOnly:   true,
		Hidden:      true,
	})

	reg.SetTextFallback(func(c tele.Context) error {
		return c.Send(textUnknownMessage)
	})
	reg.SetCallbackNotFound(func(c tele.Context) error {
		_ = c.Respond(&tele.CallbackResponse{Text: textUnknownAction})
		return nil
	})

	register := func(key string, h tele.HandlerFunc) {
		// Registration errors only happen on duplicate keys, which is a
		// wiring bug caught by the registry's own logging.
		_ = reg.RegisterCallback(key, h)
	}
	register(cbMenu, a.handleMenuCallback)
	register(cbCarNav, a.handleCarNav)
	register(cbPhotoNav, a.handlePhotoNav)
	register(cbInquire, a.handleInquire)
	register(cbFilterField, a.handleFilterField)
	register(cbFilterValue, a.handleFilterValue)
	register(cbFilterShow, a.handleFilterShow)
	register(cbFilterCount, a.handleFilterCount)
	register(cbFilterReset, a.handleFilterReset)
	register(cbChoice, a.handleDialogChoice)
	register(cbSkip, a.handleDialogSkip)
	register(cbDlgCancel, a.handleDialogCancel)
	register(cbPhotosDone, a.handlePhotosDone)
	register(cbPhotoDel, a.gate.Require(a.handlePhotoDel))
	register(cbAdmin, a.gate.Require(a.handleAdminCallback))

	return reg
}

// TelegramRunOptions assembles the transport wiring for the runner.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{Gate: a.gate})
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(a, a.registry, router.TextOptions{
		UnknownText: func(c tele.Context) error {
			return c.Send(textUnknownMessage)
		},
		UnknownPhoto: func(c tele.Context) error {
			return c.Send(textUnexpectedPhoto)
		},
	})...)

	opts := tg.RunOptions{
		Config:   a.cfg,
		Registry: a.registry,
		Middlewares: tg.DefaultMiddlewares(a.cfg, func(c tele.Context) error {
			return c.Send(textRateLimited)
		}),
		Routes: routes,
		OnStart: func(ctx context.Context, rt tg.Runtime) error {
			a.mu.Lock()
			a.bot = rt.Bot
			a.notifier = notify.NewDispatcher(botSender{bot: rt.Bot}, a.allow.IDs())
			a.mu.Unlock()
			return nil
		},
	}
	return opts, nil
}

func (a *App) currentBot() *tele.Bot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bot
}

func (a *App) currentNotifier() inquiryDispatcher {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.notifier
}

// InProgress implements router.Dialogs.
func (a *App) InProgress(userID int64) bool {
	return a.dialogs.InProgress(userID)
}

// HandleText implements router.Dialogs: free text feeds the active dialog.
func (a *App) HandleText(c tele.Context) error {
	in := dialog.Input{Kind: dialog.InputText, Text: c.Text()}
	return a.feedDialog(c, in)
}

// HandlePhoto implements router.Dialogs: photo uploads feed the active
// dialog.
func (a *App) HandlePhoto(c tele.Context) error {
	in := dialog.Input{Kind: dialog.InputPhoto, Photo: teleUpload{c: c}}
	return a.feedDialog(c, in)
}

func (a *App) feedDialog(c tele.Context, in dialog.Input) error {
	replies := a.dialogs.Feed(c.Sender().ID, in)
	return a.sendReplies(c, replies)
}

func (a *App) sendReplies(c tele.Context, replies []dialog.Reply) error {
	for _, r := range replies {
		if r.Markup != nil {
			if err := tghelpers.SendText(c, r.Text, &tele.SendOptions{ReplyMarkup: r.Markup}); err != nil {
				return err
			}
			continue
		}
		if err := tghelpers.SendText(c, r.Text); err != nil {
			return err
		}
	}
	return nil
}

// botSender adapts the transport to the notify.Sender contract.
type botSender struct {
	bot *tele.Bot
}

func (s botSender) SendToUser(userID int64, text string) error {
	_, err := s.bot.Send(&tele.User{ID: userID}, text)
	return err
}

// teleUpload adapts a Telegram photo attachment to the dialog.Photo
// contract. Telegram re-encodes photos as JPEG, so the extension is fixed.
type teleUpload struct {
	c tele.Context
}

func (u teleUpload) Ext() string { return ".jpg" }

func (u teleUpload) Store(path string) error {
	msg := u.c.Message()
	if msg == nil || msg.Photo == nil {
		return fmt.Errorf("bot: update carries no photo")
	}
	rc, err := u.c.Bot().File(&msg.Photo.File)
	if err != nil {
		return err
	}
	defer rc.Close()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// allowed re-checks the allow-list for a session identity. Flows call this
// on every privileged step, so a mid-dialog removal takes effect at once.
func (a *App) allowed(sess *dialog.Session) bool {
	return a.allow.Contains(sess.UserID, sess.Username)
}
