package app

import (
	"context"
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/lowkeylabs/lowkey/config"
	"github.com/lowkeylabs/lowkey/internal/access"
	"github.com/lowkeylabs/lowkey/internal/catalog"
	"github.com/lowkeylabs/lowkey/internal/checkout"
	"github.com/lowkeylabs/lowkey/internal/domain"
	"github.com/lowkeylabs/lowkey/internal/notify"
	"github.com/lowkeylabs/lowkey/internal/oracle"
	"github.com/lowkeylabs/lowkey/internal/payments"
	"github.com/panjf2000/ants/v2"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"
)

// Application owns every collaborator client and service, wired once at
// startup and passed explicitly to whoever needs them. Nothing here is a
// lazily-initialized package global.
type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	sched     *cron.Cron
	bus       EventBus.Bus
	rdb       *redis.Client
	pool      *ants.Pool

	catalog     *catalog.Catalog
	payments    *payments.Client
	oracle      *oracle.Client
	telegram    *notify.Telegram
	mailer      *notify.Mailer
	keyVerifier *access.KeyVerifier

	checkoutSvc *checkout.Service
	accessSvc   *access.Service
}

// Ensure Application implements all interfaces
var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ BusProvider       = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig { return a.appConfig }

func (a *Application) DB() *gorm.DB { return a.gormDB }

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) { a.gormDB = db }

func (a *Application) Scheduler() *cron.Cron { return a.sched }

func (a *Application) Bus() EventBus.Bus { return a.bus }

func (a *Application) Catalog() *catalog.Catalog { return a.catalog }

func (a *Application) Checkout() *checkout.Service { return a.checkoutSvc }

func (a *Application) Access() *access.Service { return a.accessSvc }

func (a *Application) KeyVerifier() *access.KeyVerifier { return a.keyVerifier }

func (a *Application) Oracle() *oracle.Client { return a.oracle }

func (a *Application) Telegram() *notify.Telegram { return a.telegram }

func (a *Application) Mailer() *notify.Mailer { return a.mailer }

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	a.initLogger(cfg)

	a.gormDB = getDatabase(cfg.Database)
	zap.S().Info("database connection successful")

	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	a.checkSuper()
	a.checkTools()
	a.checkVaultItems()

	a.bus = EventBus.New()
	a.rdb = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Passwd,
		DB:       cfg.Redis.DB,
	})

	a.catalog = catalog.Default()
	a.payments = payments.NewClient(cfg.Payments.ApiKey, cfg.Payments.BaseURL,
		time.Duration(cfg.Payments.Timeout)*time.Second)
	a.oracle = oracle.NewClient(cfg.Oracle.ApiKey, cfg.Oracle.BaseURL, cfg.Oracle.Model,
		time.Duration(cfg.Oracle.Timeout)*time.Second)
	a.telegram = notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.BaseURL)
	a.mailer = notify.NewMailer(cfg.Smtp)
	a.keyVerifier = access.NewKeyVerifier(cfg.Web.MasterAccessKey)

	a.checkoutSvc = checkout.NewService(
		a.catalog,
		a.payments,
		checkout.NewGormRepository(a.gormDB),
		checkout.NewRedisLocker(a.rdb),
		a.bus,
	)
	a.accessSvc = access.NewService(access.NewGormToolRepository(a.gormDB))

	listener := notify.NewOrderListener(a.gormDB, a.telegram)
	if err := a.bus.SubscribeAsync(checkout.TopicOrderCompleted, listener.HandleOrderCompleted, false); err != nil {
		zap.S().Errorf("failed to subscribe order listener: %v", err)
	}

	a.initJob()
}

func (a *Application) initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}
		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}
	zap.ReplaceGlobals(logger)
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEBUG_TRACE") != "" {
				debug.PrintStack()
			}
			if err2, ok := err1.(error); ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	if track {
		if err := a.gormDB.Debug().Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	} else {
		if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	}
	return nil
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
		zap.S().Error(err)
	}
}

// StartBackgroundJobs starts the cron scheduler.
func (a *Application) StartBackgroundJobs(ctx context.Context) {
	a.sched.Start()
	go func() {
		<-ctx.Done()
		a.sched.Stop()
	}()
}

// Release releases application resources.
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.pool != nil {
		a.pool.Release()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	_ = zap.L().Sync()
}
