package main

import (
	"time"

	"github.com/avelichko/litepost/config"
	"github.com/avelichko/litepost/models"
	"github.com/avelichko/litepost/routes"
	"github.com/avelichko/litepost/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
		&models.PageView{},
		&models.UploadedFile{},
	)

	cache := utils.NewPageCache(utils.GetRedis())
	r := routes.SetupRouter(db, cache)

	// Background cleanup for expired post images (best-effort)
	utils.StartUploadCleaner(db, 5*time.Minute, func() bool {
		return config.Get().UploadsSelfDestructEnabled
	})

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
