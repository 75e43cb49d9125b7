package main

import (
	"context"
	"time"

	"geraiku/internal/config"
	"geraiku/internal/domain/model"
	"geraiku/internal/gateway/payment"
	"geraiku/internal/gateway/shipping"
	"geraiku/internal/handler"
	"geraiku/internal/infra/db"
	infraRepo "geraiku/internal/infra/repository"
	"geraiku/internal/notification"
	"geraiku/internal/server"
	"geraiku/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	//.envは無くてもいい（本番は環境変数直指定）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	var log *zap.Logger
	if cfg.GoEnv == "prod" {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.Product{},
		&model.Merchant{},
		&model.Address{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Transaction{},
		&model.NotificationOutbox{},
	); err != nil {
		log.Fatal("migrate failed", zap.Error(err))
	}

	//Redis（未設定なら配送料キャッシュとpub/subを無効にして起動）
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	merchantRepo := infraRepo.NewMerchantGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	transactionRepo := infraRepo.NewTransactionGormRepository(gormDB)
	outboxRepo := infraRepo.NewOutboxGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//外部ゲートウェイ
	snapGW := payment.NewSnapGateway(
		cfg.MidtransServerKey,
		cfg.MidtransClientKey,
		cfg.MidtransEnv == "production",
		10*time.Second,
	)
	shippingClient := shipping.NewClient(
		cfg.ShippingBaseURL,
		cfg.ShippingAPIKey,
		10*time.Second,
		shipping.NewCache(rdb, log),
		log,
	)

	//Usecase生成
	checkoutUC := usecase.NewCheckoutUsecase(txm, orderRepo, transactionRepo, addressRepo, productRepo, snapGW, log)
	orderUC := usecase.NewOrderUsecase(txm, merchantRepo)
	statusUC := usecase.NewOrderStatusUsecase(txm, log)
	webhookUC := usecase.NewPaymentWebhookUsecase(txm, snapGW, log)
	shippingUC := usecase.NewShippingUsecase(shippingClient, productRepo, merchantRepo, cfg.ShippingOriginDistrictID)
	cartUC := usecase.NewCartUsecase(txm, cartRepo, cartItemRepo, productRepo)
	addressUC := usecase.NewAddressUsecase(addressRepo)
	hookUC := usecase.NewStatusHookUsecase(outboxRepo, log)

	//通知ディスパッチャ
	mailer := notification.NewSMTPMailer(
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPassword,
		cfg.MailFrom,
		cfg.SiteURL,
	)
	dispatcher := notification.NewDispatcher(outboxRepo, mailer, rdb, log, 15*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatcher.Run(ctx)

	//Handler生成
	h := server.Handlers{
		Checkout:       handler.NewCheckoutHandler(checkoutUC),
		Order:          handler.NewOrderHandler(orderUC, statusUC),
		MerchantOrder:  handler.NewMerchantOrderHandler(orderUC, statusUC),
		PaymentWebhook: handler.NewPaymentWebhookHandler(webhookUC),
		Shipping:       handler.NewShippingHandler(shippingUC),
		Cart:           handler.NewCartHandler(cartUC),
		Address:        handler.NewAddressHandler(addressUC),
		OrderStatus:    handler.NewOrderStatusHandler(),
		StatusHook:     handler.NewStatusHookHandler(hookUC),
	}

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	e := server.New(cfg, h)
	if err := server.Start(e, addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
