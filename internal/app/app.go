package app

import (
	"context"
	"log"
	"time"

	"loyalty-wallet/config"
	"loyalty-wallet/internal/app/http/middleware"
	"loyalty-wallet/internal/domain/loyalty"
	"loyalty-wallet/internal/domain/members"
	"loyalty-wallet/internal/domain/wallet"
	"loyalty-wallet/internal/infra/googlewallet"
	"loyalty-wallet/internal/infra/mail"
	"loyalty-wallet/internal/infra/passservice"
	"loyalty-wallet/internal/infra/passtoken"

	"gorm.io/gorm"
)

// App is built once at process start and injected into every handler.
type App struct {
	Config *config.Config
	DB     *gorm.DB

	Limiter *middleware.RateLimiter
	Metrics *middleware.Metrics

	Classes    loyalty.WalletClasses
	Directory  *members.Directory
	PassTokens *passtoken.Signer
	Dispatcher *wallet.Dispatcher
	Passes     *passservice.Client
	Mailer     *mail.EmailSender

	// nil when no service account is configured
	ClassRegistry *googlewallet.Registry
}

func New(ctx context.Context, cfg *config.Config, db *gorm.DB) *App {
	classes := loyalty.WalletClasses{IssuerID: cfg.WalletIssuerID, ClassBase: cfg.WalletClassBase}

	var account *googlewallet.ServiceAccount
	if cfg.GoogleServiceAccountFile != "" {
		sa, err := googlewallet.LoadServiceAccount(ctx, cfg.GoogleServiceAccountFile)
		if err != nil {
			// Google redirects will fail with 500 until the key is fixed.
			log.Printf("❌ Google Wallet service account: %v", err)
		} else {
			account = sa
		}
	} else {
		log.Println("⚠️ GOOGLE_SERVICE_ACCOUNT_FILE not set, Google Wallet links disabled")
	}

	a := &App{
		Config:     cfg,
		DB:         db,
		Limiter:    middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Metrics:    middleware.NewMetrics(),
		Classes:    classes,
		Directory:  members.NewDirectory(db),
		PassTokens: passtoken.NewSigner(cfg.PassTokenSecret),
		Passes:     passservice.NewClient(cfg.ApplePassServiceURL, cfg.ApplePassServiceKey),
		Mailer:     newMailer(cfg),
	}

	a.Dispatcher = wallet.NewDispatcher(
		a.Directory,
		a.PassTokens,
		googlewallet.NewLinker(classes, account, cfg.GoogleWalletOrigins),
	)

	if account != nil {
		a.ClassRegistry = googlewallet.NewRegistry(account.HTTPClient, cfg.GoogleWalletAPIBaseURL, classes, googlewallet.ClassTemplate{
			IssuerName:  cfg.WalletIssuerName,
			ProgramName: cfg.WalletProgramName,
			LogoURL:     cfg.WalletProgramLogoURL,
		})
	}

	return a
}

// Start launches background housekeeping tied to ctx.
func (a *App) Start(ctx context.Context) {
	go a.Limiter.Run(ctx, time.Minute)
}

func newMailer(cfg *config.Config) *mail.EmailSender {
	var transports []mail.Transport
	if t, ok := mail.NewSMTPTransport("primary", cfg.SMTP); ok {
		transports = append(transports, t)
	}
	if t, ok := mail.NewSMTPTransport("fallback", cfg.SMTPFallback); ok {
		transports = append(transports, t)
	}
	if len(transports) == 0 {
		log.Println("⚠️ No SMTP transport configured, pass emails disabled")
	}
	return mail.NewEmailSender(cfg.MailFrom, transports...)
}
