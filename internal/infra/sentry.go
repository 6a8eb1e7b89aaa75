package infra

import (
	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/shopfloor-stats/backend/internal/app/appconfig"
	"github.com/shopfloor-stats/backend/internal/pkg/bininfo"
)

// SentryInit initializes sentry with side-effect
func SentryInit(conf *appconfig.Config) error {
	if conf.SentryDSN == "" {
		log.Warn().
			Str("evt.name", "infra.sentry.disabled").
			Msg("sentry is disabled due to missing DSN")
		return nil
	}

	log.Info().
		Str("evt.name", "infra.sentry.init").
		Msg("initializing sentry")
	return sentry.Init(sentry.ClientOptions{
		Dsn:              conf.SentryDSN,
		Release:          "shopfloor-backend@" + bininfo.Version,
		Environment:      lo.Ternary(conf.DevMode, "dev", "prod"),
		Debug:            conf.DevMode,
		AttachStacktrace: true,
		TracesSampleRate: 0.01,
	})
}
