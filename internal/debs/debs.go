package deps

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reportit/reportit_api/config"
	"github.com/reportit/reportit_api/internal/cache"
	"github.com/reportit/reportit_api/internal/db"
	"github.com/reportit/reportit_api/internal/http/nominatim"
	"github.com/reportit/reportit_api/internal/push"
	"github.com/reportit/reportit_api/util/storage"
	"github.com/reportit/reportit_api/util/websockets"
)

type Dependencies struct {
	DB          *db.DB
	Cache       cache.Cache
	PushGateway push.Gateway
	Geocoder    *nominatim.Client
	Cloudinary  *storage.Cloudinary
	WebSocket   *websockets.WebSocketManager
}

func New(cfg *config.Config) *Dependencies {
	database, err := db.New(cfg.Dsn)
	if err != nil {
		log.Panicln("failed to connect to database", "error", err)
	}
	if err := database.EnsureSchema(context.Background()); err != nil {
		log.Panicln("failed to ensure database schema", "error", err)
	}

	var gateway push.Gateway
	if cfg.FCMProjectID != "" {
		fcm, err := push.NewFCMGateway(context.Background(), cfg.FCMProjectID, cfg.FCMCredentialsFile)
		if err != nil {
			log.Panicln("failed to initialise push gateway", "error", err)
		}
		gateway = fcm
	}

	cloudinary := storage.NewCloudinary(cfg)
	websocket := websockets.NewWebSocketManager()

	deps := Dependencies{
		DB:          database,
		Cache:       cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword),
		PushGateway: gateway,
		Geocoder:    nominatim.NewClient(cfg.NominatimBaseURL),
		Cloudinary:  cloudinary,
		WebSocket:   websocket,
	}
	return &deps
}

func (d *Dependencies) Pool() *pgxpool.Pool {
	return d.DB.Pool()
}
