package main

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"itvserver/database"        //PostgreSQLとRedisの初期化
	"itvserver/game"            //ラウンドとコホートのゲームロジック
	"itvserver/game/connection" //WebSocket接続の確立と管理
	"itvserver/handlers"        //実況者関連のHTTPリクエストの処理
	"itvserver/middlewares"     //実況者トークンの検証
	"itvserver/models"          //モデル定義
	"itvserver/utils"           //ロガーの初期化とCronジョブ(PostgreSQLの定期クリーンナップ)
	"itvserver/wayback"         //Wayback Machineからのコンテンツ取得

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

func main() {
	var logger *zap.Logger
	var err error
	logger, err = utils.InitLogger() // ロガーの初期化
	if err != nil {
		panic(err) // 失敗した場合はプログラム停止
	}
	defer logger.Sync() // ロガーのクリーンアップ

	// 設定ファイルの読み込み
	config, err := database.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("設定ファイルの読み込みに失敗しました", zap.Error(err))
	}

	// Websocket接続で用いる変数を初期化
	clients := models.NewClientRegistry()
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	// 非同期でPostgreSQLとRedisの初期化
	var db *gorm.DB
	var rdb *redis.Client
	done := make(chan bool)

	go func() {
		db, err = database.InitPostgreSQL(config, logger)
		if err != nil {
			logger.Fatal("PostgreSQLの初期化に失敗しました", zap.Error(err))
		}
		done <- true
	}()

	go func() {
		rdb, err = database.InitRedis(logger)
		if err != nil {
			logger.Fatal("Failed to initialize Redis", zap.Error(err))
		}
		done <- true
	}()

	// 2つの初期化が完了するのを待つ
	<-done
	<-done

	// クーロンスケジューラのセットアップと呼び出し
	go utils.CronCleaner(db, logger)

	// ゲームエンジンの初期化。1プロセスにつき1ゲーム
	provider := wayback.NewService(config.WaybackAPIKey, logger)
	cohorts := game.NewCohortEngine(logger)
	engine := game.NewEngine(provider, cohorts, config, logger)

	router := gin.Default()
	//リクエストロガーを起動
	router.Use(gin.Recovery(), utils.RequestLogger(logger))

	//CORS（Cross-Origin Resource Sharing）ポリシーを設定
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://192.168.1.1:8080"}, //ここにデプロイサーバーのIPアドレスを設定
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "SessionID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	//各HTTPリクエストのルーティング
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.POST("/commentator/invite", func(c *gin.Context) {
		handlers.GenerateInvite(c, db, logger)
	})
	router.GET("/commentator/invite/:code", func(c *gin.Context) {
		handlers.ValidateInvite(c, db, logger)
	})
	router.GET("/commentator/invite/:code/qr", func(c *gin.Context) {
		handlers.InviteQR(c, db, logger)
	})
	router.POST("/commentator/signup", func(c *gin.Context) {
		handlers.SignupWithInvite(c, db, logger)
	})
	router.POST("/commentator/login", func(c *gin.Context) {
		handlers.Login(c, db, logger)
	})
	router.GET("/commentator/session", func(c *gin.Context) {
		handlers.ValidateSession(c, db, logger)
	})

	// 管理用エンドポイントはトークン必須
	admin := router.Group("/admin", middlewares.AuthMiddleware(db, logger))
	admin.GET("/commentators", func(c *gin.Context) {
		handlers.ListCommentators(c, db, logger)
	})
	admin.PUT("/commentators/:id", func(c *gin.Context) {
		handlers.ToggleCommentator(c, db, logger)
	})
	admin.DELETE("/commentators/:id", func(c *gin.Context) {
		handlers.DeleteCommentator(c, db, logger)
	})

	router.GET("/ws", func(c *gin.Context) {
		connection.HandleConnections(c.Request.Context(), c.Writer, c.Request, rdb, logger, clients, engine, upgrader)
	})

	// テスト時はHTTPサーバーとして運用。デフォルトポートは ":8080"
	router.Run()

	// // 本番環境ではコメントアウトを解除し、HTTPSサーバーとして運用
	// err = router.RunTLS(":443", "path/to/cert.pem", "path/to/key.pem")
	// if err != nil {
	// 	logger.Fatal("Failed to run HTTPS server: ", zap.Error(err))
	// }
}
