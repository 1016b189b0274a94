package bootstrap

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"

	"github.com/devfolio/portfolio-backend/config"
	"github.com/devfolio/portfolio-backend/internal/auth"
	authhttp "github.com/devfolio/portfolio-backend/internal/auth/http"
	authmw "github.com/devfolio/portfolio-backend/internal/auth/middleware"
	authsvc "github.com/devfolio/portfolio-backend/internal/auth/service"
	"github.com/devfolio/portfolio-backend/internal/contacts"
	"github.com/devfolio/portfolio-backend/internal/identity"
	"github.com/devfolio/portfolio-backend/internal/kv"
	"github.com/devfolio/portfolio-backend/internal/media"
	"github.com/devfolio/portfolio-backend/internal/notify"
	projecthttp "github.com/devfolio/portfolio-backend/internal/projects/http"
	"github.com/devfolio/portfolio-backend/internal/projects/repository"
	projectsvc "github.com/devfolio/portfolio-backend/internal/projects/service"
	"github.com/devfolio/portfolio-backend/internal/skills"
	"github.com/devfolio/portfolio-backend/internal/store"
	"github.com/devfolio/portfolio-backend/internal/technologies"
)

const kvPrefix = "portfolio:"

// Both handler types print as *http.Handler, which samber/do uses as the
// default service name.
const (
	projectHandlerName = "projects.http.handler"
	authHandlerName    = "auth.http.handler"
)

// IdentityProvider is what the configured identity provider contributes to
// the auth stack. Passwords and Forgetter are nil when not supported.
type IdentityProvider struct {
	Verifier  identity.Verifier
	Revoker   identity.Revoker
	Passwords authsvc.PasswordProvider
	Forgetter authsvc.Forgetter
}

// BuildContainer registers every provider. Nothing is constructed until it
// is invoked.
func BuildContainer(cfg *config.Config, log *zap.Logger) *do.Injector {
	inj := do.New()

	do.ProvideValue(inj, cfg)
	do.ProvideValue(inj, log)

	// Firebase
	do.Provide(inj, func(i *do.Injector) (*firebase.App, error) {
		return InitializeFirebase(context.Background(), &cfg.Firebase)
	})

	// Document store
	do.Provide(inj, func(i *do.Injector) (store.Store, error) {
		return openStore(i, cfg, log)
	})

	// KV for revocations and the verification cache
	do.Provide(inj, func(i *do.Injector) (kv.Store, error) {
		if cfg.Redis.Addr == "" {
			log.Info("redis not configured, using in-process kv")
			return kv.NewMemory(), nil
		}
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return kv.NewRedis(rdb, kvPrefix), nil
	})

	// Identity
	do.Provide(inj, func(i *do.Injector) (*IdentityProvider, error) {
		return buildIdentity(i, cfg, log)
	})
	do.Provide(inj, func(i *do.Injector) (*auth.Authenticator, error) {
		p, err := do.Invoke[*IdentityProvider](i)
		if err != nil {
			return nil, err
		}
		policy := auth.NewPolicy(cfg.Auth.AllowedAdminEmails)
		return auth.NewAuthenticator(p.Verifier, policy, cfg.Auth.CheckRevoked), nil
	})
	do.Provide(inj, func(i *do.Injector) (*authmw.Gate, error) {
		return authmw.NewGate(authmw.GateOptions{
			Mode:              authmw.GateMode(cfg.Auth.GateMode),
			CookieName:        cfg.Auth.CookieName,
			LoginPath:         cfg.Auth.LoginPath,
			PublicPrefixes:    cfg.Auth.PublicPrefixes,
			ProtectedPrefixes: cfg.Auth.ProtectedPrefixes,
		}, do.MustInvoke[*auth.Authenticator](i), log), nil
	})
	do.Provide(inj, func(i *do.Injector) (*authsvc.SessionService, error) {
		p := do.MustInvoke[*IdentityProvider](i)
		return authsvc.NewSessionService(authsvc.SessionDeps{
			Authenticator: do.MustInvoke[*auth.Authenticator](i),
			Revoker:       p.Revoker,
			Passwords:     p.Passwords,
			Forgetter:     p.Forgetter,
			CookieTTL:     cfg.Auth.CookieTTL,
			Log:           log,
		}), nil
	})

	// Notifications
	do.Provide(inj, func(i *do.Injector) (notify.Notifier, error) {
		if !cfg.Email.Enabled {
			return notify.Noop{}, nil
		}
		email, err := notify.NewEmail(cfg.Email, log)
		if err != nil {
			return nil, fmt.Errorf("smtp client: %w", err)
		}
		return email, nil
	})

	// Media; nil when no bucket is configured
	do.Provide(inj, func(i *do.Injector) (*media.Service, error) {
		if cfg.Upload.Bucket == "" {
			return nil, nil
		}
		up, err := media.NewS3Uploader(context.Background(), cfg.Upload)
		if err != nil {
			return nil, fmt.Errorf("s3 uploader: %w", err)
		}
		return media.NewService(up, cfg.Upload.Bucket, cfg.Upload.PublicBaseURL, cfg.Upload.MaxBytes), nil
	})

	// Services
	do.Provide(inj, func(i *do.Injector) (*projectsvc.ProjectService, error) {
		repo := repository.NewProjectRepository(do.MustInvoke[store.Store](i))
		return projectsvc.NewProjectService(repo), nil
	})
	do.Provide(inj, func(i *do.Injector) (*skills.Service, error) {
		return skills.NewService(skills.NewRepo(do.MustInvoke[store.Store](i))), nil
	})
	do.Provide(inj, func(i *do.Injector) (*technologies.Repo, error) {
		return technologies.NewRepo(do.MustInvoke[store.Store](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*contacts.Service, error) {
		return contacts.NewService(
			contacts.NewRepo(do.MustInvoke[store.Store](i)),
			do.MustInvoke[notify.Notifier](i),
			log,
		), nil
	})

	do.Provide(inj, func(i *do.Injector) (*Seeder, error) {
		return &Seeder{
			Skills:       do.MustInvoke[*skills.Service](i),
			Technologies: do.MustInvoke[*technologies.Repo](i),
			Projects:     do.MustInvoke[*projectsvc.ProjectService](i),
			Log:          log,
		}, nil
	})

	// Handlers
	do.ProvideNamed(inj, projectHandlerName, func(i *do.Injector) (*projecthttp.Handler, error) {
		return projecthttp.New(do.MustInvoke[*projectsvc.ProjectService](i), log), nil
	})
	do.Provide(inj, func(i *do.Injector) (*skills.Handler, error) {
		return skills.NewHandler(do.MustInvoke[*skills.Service](i), log), nil
	})
	do.Provide(inj, func(i *do.Injector) (*technologies.Handler, error) {
		return technologies.NewHandler(do.MustInvoke[*technologies.Repo](i), log), nil
	})
	do.Provide(inj, func(i *do.Injector) (*contacts.Handler, error) {
		return contacts.NewHandler(do.MustInvoke[*contacts.Service](i), log), nil
	})
	do.Provide(inj, func(i *do.Injector) (*media.Handler, error) {
		return media.NewHandler(do.MustInvoke[*media.Service](i), log), nil
	})
	do.ProvideNamed(inj, authHandlerName, func(i *do.Injector) (*authhttp.Handler, error) {
		return authhttp.New(do.MustInvoke[*authsvc.SessionService](i), cfg.Auth.CookieName, log), nil
	})

	// Router
	do.Provide(inj, func(i *do.Injector) (*gin.Engine, error) {
		authn, err := do.Invoke[*auth.Authenticator](i)
		if err != nil {
			return nil, err
		}
		st, err := do.Invoke[store.Store](i)
		if err != nil {
			return nil, err
		}
		return BuildRouter(RouterDeps{
			Config:       cfg,
			Log:          log,
			Store:        st,
			Gate:         do.MustInvoke[*authmw.Gate](i),
			Admin:        authmw.RequireAdmin(authn, cfg.Auth.CookieName, log),
			Projects:     do.MustInvokeNamed[*projecthttp.Handler](i, projectHandlerName),
			Skills:       do.MustInvoke[*skills.Handler](i),
			Technologies: do.MustInvoke[*technologies.Handler](i),
			Contacts:     do.MustInvoke[*contacts.Handler](i),
			Media:        do.MustInvoke[*media.Handler](i),
			Auth:         do.MustInvokeNamed[*authhttp.Handler](i, authHandlerName),
		}), nil
	})

	return inj
}

func openStore(i *do.Injector, cfg *config.Config, log *zap.Logger) (store.Store, error) {
	ctx := context.Background()

	switch cfg.Store.Driver {
	case "memory":
		log.Warn("using in-memory store, data is lost on restart")
		return store.NewMemory(), nil

	case "postgres":
		db, err := OpenDB(ctx, DBOptions{
			DSN:       cfg.Store.DSN,
			ConnectTO: cfg.Store.ConnectTO,
			PingTO:    cfg.Store.PingTO,
		})
		if err != nil {
			return nil, err
		}
		pg := store.NewPostgres(db)
		if cfg.Store.AutoMigrate {
			if err := pg.EnsureSchema(ctx); err != nil {
				db.Close()
				return nil, err
			}
		}
		return pg, nil

	default:
		app, err := do.Invoke[*firebase.App](i)
		if err != nil {
			return nil, err
		}
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get Firestore client: %w", err)
		}
		return store.NewFirestore(client), nil
	}
}

func buildIdentity(i *do.Injector, cfg *config.Config, log *zap.Logger) (*IdentityProvider, error) {
	cache, err := do.Invoke[kv.Store](i)
	if err != nil {
		return nil, err
	}
	p := &IdentityProvider{}

	switch cfg.Auth.Provider {
	case "local":
		local := identity.NewLocal(identity.LocalOptions{
			Secret:       []byte(cfg.Auth.LocalSecret),
			TTL:          cfg.Auth.LocalTokenTTL,
			Username:     cfg.Auth.LocalUsername,
			PasswordHash: cfg.Auth.LocalPasswordHash,
			Email:        cfg.Auth.LocalEmail,
		}, cache)
		p.Verifier = local
		p.Revoker = local
		p.Passwords = local

	default:
		app, err := do.Invoke[*firebase.App](i)
		if err != nil {
			return nil, err
		}
		client, err := app.Auth(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to get Auth client: %w", err)
		}
		fb := identity.NewFirebase(client)
		p.Verifier = fb
		p.Revoker = fb
	}

	if cfg.Auth.VerifyCacheTTL > 0 {
		cached := identity.NewCachingVerifier(p.Verifier, cache, cfg.Auth.VerifyCacheTTL, log)
		p.Verifier = cached
		p.Forgetter = cached
	}
	return p, nil
}
