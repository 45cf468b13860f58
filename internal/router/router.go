package router

import (
	"database/sql"
	"net/http"
	"os"
	"strconv"
	"time"

	"plant-care-service/internal/adapters/channels/email"
	"plant-care-service/internal/adapters/channels/inapp"
	"plant-care-service/internal/adapters/channels/push"
	"plant-care-service/internal/adapters/channels/sms"
	mem "plant-care-service/internal/adapters/storage/memory"
	pg "plant-care-service/internal/adapters/storage/postgres"
	"plant-care-service/internal/adapters/weather/keystore"
	"plant-care-service/internal/adapters/weather/openweather"
	"plant-care-service/internal/domain/notifications"
	"plant-care-service/internal/domain/plants"
	"plant-care-service/internal/domain/schedule"
	"plant-care-service/internal/domain/waterings"
	"plant-care-service/internal/middleware"
	"plant-care-service/internal/platform/logger"
	"plant-care-service/internal/ports/auth"
	"plant-care-service/internal/ports/channels"
	"plant-care-service/internal/ports/weather"

	_ "plant-care-service/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Log logger.Logger

	// Opcionales: adapters de salida. Nil => se arman desde env vars
	// (o quedan sin configurar, lo que degrada con gracia).
	WeatherProvider weather.Provider
	WeatherKeys     weather.KeySource
	Senders         map[notifications.Channel]channels.Sender
	Addresses       email.AddressBook
}

// App agrupa el handler HTTP y los servicios que el scheduler de fondo
// necesita compartir con el router.
type App struct {
	Handler http.Handler

	Plants        *plants.Service
	Waterings     *waterings.Service
	Schedule      *schedule.Service
	Notifications *notifications.Service

	Log logger.Logger
}

// NewRouter conserva la firma clásica para tests y usos simples.
func NewRouter(opts Options) http.Handler {
	return NewApp(opts).Handler
}

func NewApp(opts Options) *App {
	log := opts.Log
	if log == nil {
		log = logger.NewFromEnv()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	var (
		plantsRepo   plants.Repository
		profilesRepo plants.ProfileRepository
		waterRepo    waterings.Repository
		notifRepo    notifications.Repository
		prefsRepo    notifications.PreferenceRepository
		logsRepo     notifications.DeliveryLogRepository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("postgres unavailable, falling back to memory", map[string]any{"err": err.Error()})
			}
		}
	}

	if db != nil {
		plantsRepo = pg.NewPlantsRepo(db)
		profilesRepo = pg.NewProfilesRepo(db)
		waterRepo = pg.NewWateringsRepo(db)
		notifRepo = pg.NewNotificationsRepo(db)
		prefsRepo = pg.NewPreferencesRepo(db)
		logsRepo = pg.NewDeliveryLogsRepo(db)
	} else {
		plantsRepo = mem.NewPlantsRepo()
		seeded := mem.NewProfilesRepo()
		seeded.Seed(plants.DefaultCatalog())
		profilesRepo = seeded
		waterRepo = mem.NewWateringsRepo()
		notifRepo = mem.NewNotificationsRepo()
		prefsRepo = mem.NewPreferencesRepo()
		logsRepo = mem.NewDeliveryLogsRepo()
	}

	provider := opts.WeatherProvider
	if provider == nil {
		provider = openweather.New(10 * time.Second)
	}
	keys := opts.WeatherKeys
	if keys == nil {
		keys = keystore.New(os.Getenv("WEATHER_API_KEY"))
	}

	senders := opts.Senders
	if senders == nil {
		senders = sendersFromEnv(opts.Addresses, log)
	}

	// Services por módulo
	plantsSvc := plants.NewService(plantsRepo, profilesRepo)
	wateringsSvc := waterings.NewService(waterRepo)
	scheduleSvc := schedule.NewService(plantsSvc, wateringsSvc, provider, keys, log)
	notifsSvc := notifications.NewService(notifRepo, prefsRepo, logsRepo, senders, log)

	// Rutas por módulo
	plants.RegisterRoutes(r, plantsSvc)
	waterings.RegisterRoutes(r, wateringsSvc, plantsSvc)
	schedule.RegisterRoutes(r, scheduleSvc)
	notifications.RegisterRoutes(r, notifsSvc)

	return &App{
		Handler:       r,
		Plants:        plantsSvc,
		Waterings:     wateringsSvc,
		Schedule:      scheduleSvc,
		Notifications: notifsSvc,
		Log:           log,
	}
}

// sendersFromEnv arma los canales de salida con lo que haya en el
// entorno. in_app siempre está; los demás quedan fuera del mapa si no
// tienen configuración (el pipeline los reporta como no soportados).
func sendersFromEnv(addresses email.AddressBook, log logger.Logger) map[notifications.Channel]channels.Sender {
	senders := map[notifications.Channel]channels.Sender{
		notifications.ChannelInApp: inapp.NewSender(),
	}

	if url := os.Getenv("PUSH_GATEWAY_URL"); url != "" {
		s, err := push.NewSender(push.Config{
			BaseURL: url,
			APIKey:  os.Getenv("PUSH_GATEWAY_API_KEY"),
		})
		if err != nil {
			log.Warn("push sender misconfigured", map[string]any{"err": err.Error()})
		} else {
			senders[notifications.ChannelPush] = s
		}
	}

	if url := os.Getenv("SMS_GATEWAY_URL"); url != "" {
		s, err := sms.NewSender(sms.Config{
			BaseURL: url,
			APIKey:  os.Getenv("SMS_GATEWAY_API_KEY"),
		})
		if err != nil {
			log.Warn("sms sender misconfigured", map[string]any{"err": err.Error()})
		} else {
			senders[notifications.ChannelSMS] = s
		}
	}

	if host := os.Getenv("SMTP_HOST"); host != "" {
		port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
		senders[notifications.ChannelEmail] = email.NewSender(email.Config{
			Host:     host,
			Port:     port,
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		}, addresses)
	}

	return senders
}
