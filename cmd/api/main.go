package main

import (
	"log"

	"restaurant/internal/config"
	"restaurant/internal/domain/model"
	"restaurant/internal/handler"
	"restaurant/internal/infra/db"
	"restaurant/internal/infra/logger"
	infraRepo "restaurant/internal/infra/repository"
	"restaurant/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Group{},
		&model.Category{},
		&model.MenuItem{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
	); err != nil {
		zapLogger.Fatal("migrating schema", zap.Error(err))
	}

	if err := seedGroups(gormDB); err != nil {
		zapLogger.Fatal("seeding groups", zap.Error(err))
	}
	zapLogger.Info("database ready")

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	menuRepo := infraRepo.NewMenuItemGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo)
	menuUC := usecase.NewMenuUsecase(menuRepo, categoryRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, menuRepo)
	orderUC := usecase.NewOrderUsecase(txManager, userRepo)
	groupUC := usecase.NewGroupUsecase(userRepo)

	//Handler生成
	authH := handler.NewAuthHandler(authUC)
	menuH := handler.NewMenuHandler(menuUC)
	cartH := handler.NewCartHandler(cartUC)
	orderH := handler.NewOrderHandler(orderUC)
	groupH := handler.NewGroupHandler(groupUC)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			zapLogger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))

	authH.RegisterRoutes(e)
	menuH.RegisterRoutes(e, cfg, userRepo)
	cartH.RegisterRoutes(e, cfg, userRepo)
	orderH.RegisterRoutes(e, cfg, userRepo)
	groupH.RegisterRoutes(e, cfg, userRepo)

	addr := ":" + cfg.Port
	zapLogger.Info("starting server", zap.String("addr", addr))
	if err := e.Start(addr); err != nil {
		zapLogger.Fatal("server error", zap.Error(err))
	}
}

// ロール用グループは起動時に必ず存在させる
func seedGroups(gormDB *gorm.DB) error {
	for _, name := range []string{model.GroupManager, model.GroupDeliveryCrew} {
		g := model.Group{Name: name}
		if err := gormDB.Where("name = ?", name).FirstOrCreate(&g).Error; err != nil {
			return err
		}
	}
	return nil
}
