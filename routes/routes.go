package routes

import (
	"net/http"

	"kitchen-backend/daywindow"
	"kitchen-backend/dtos"
	"kitchen-backend/firebase"
	"kitchen-backend/handlers"
	"kitchen-backend/materialize"
	"kitchen-backend/middleware"
	"kitchen-backend/models"
	"kitchen-backend/services"
	"kitchen-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options carries what the route table needs besides the database.
type Options struct {
	Resolver *daywindow.Resolver
	Storage  firebase.StorageClient
	// LoginLimiter guards POST /auth/login; nil disables it.
	LoginLimiter *middleware.RateLimiter
	// RefreshOnRepeat re-stamps done_at when a done item is marked done again.
	RefreshOnRepeat bool
	Log             *zap.Logger
}

func SetupRoutes(r *gin.Engine, db *gorm.DB, opts Options) error {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := utils.RegisterValidators(v); err != nil {
			return err
		}
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	// Initialize handlers
	authHandler := &handlers.AuthHandler{DB: db}
	restaurantHandler := &handlers.RestaurantHandler{DB: db}
	checklistHandler := &handlers.ChecklistHandler{Checklists: services.NewChecklistService(db, opts.Resolver, log)}
	cleaningHandler := &handlers.CleaningHandler{Cleaning: services.NewCleaningService(db, opts.Resolver, log)}
	shiftHandler := &handlers.ShiftHandler{Shifts: services.NewShiftService(db, opts.Resolver, log)}
	completionHandler := &handlers.CompletionHandler{
		Tracker: services.NewCompletionTracker(db, opts.Storage, opts.RefreshOnRepeat, log),
	}

	checklistTemplates := handlers.NewTemplateHandler[models.ChecklistTemplate, *models.ChecklistTemplate, dtos.ChecklistTemplateRequest](
		services.NewChecklistTemplates(db, log))
	cleaningTasks := handlers.NewTemplateHandler[models.CleaningTask, *models.CleaningTask, dtos.CleaningTaskRequest](
		services.NewCleaningTasks(db, log))
	shiftChecklistTemplates := handlers.NewTemplateHandler[models.ShiftChecklistTemplate, *models.ShiftChecklistTemplate, dtos.ShiftChecklistTemplateRequest](
		services.NewShiftChecklistTemplates(db, log))
	shiftPrepTemplates := handlers.NewTemplateHandler[models.ShiftPrepTemplate, *models.ShiftPrepTemplate, dtos.ShiftPrepTemplateRequest](
		services.NewShiftPrepTemplates(db, log))

	manage := middleware.RequireManager()

	// Public routes
	api := r.Group("/api")
	if opts.LoginLimiter != nil {
		api.POST("/auth/login", opts.LoginLimiter.Middleware(), authHandler.Login)
	} else {
		api.POST("/auth/login", authHandler.Login)
	}

	// Authenticated, no restaurant scope
	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware())
	authed.GET("/auth/profile", authHandler.GetProfile)

	// Restaurant-scoped routes
	tenant := api.Group("")
	tenant.Use(middleware.AuthMiddleware(), middleware.RestaurantMiddleware(db))

	restaurant := tenant.Group("/restaurant")
	{
		restaurant.GET("/me", restaurantHandler.GetMe)
		restaurant.PUT("/me", manage, restaurantHandler.UpdateMe)
		restaurant.GET("/hours", restaurantHandler.GetHours)
		restaurant.PUT("/hours", manage, restaurantHandler.UpdateHours)
		restaurant.GET("/members", restaurantHandler.GetMembers)
	}

	checklists := tenant.Group("/checklists")
	{
		checklists.GET("/daily", checklistHandler.GetDaily)
		checklists.POST("/daily/items", checklistHandler.AddItem)
		checklists.POST("/daily/resync", manage, checklistHandler.Resync)
		checklists.GET("/history", checklistHandler.History)
		checklists.PATCH("/items/:id", completionHandler.Update(materialize.KindChecklist))
		checklists.POST("/items/:id/photo", completionHandler.UploadPhoto(materialize.KindChecklist))
		checklistTemplates.RegisterRoutes(checklists.Group("/templates"), manage)
	}

	cleaning := tenant.Group("/cleaning")
	{
		cleaning.GET("/daily", cleaningHandler.GetDaily)
		cleaning.POST("/daily/items", cleaningHandler.AddItem)
		cleaning.POST("/daily/resync", manage, cleaningHandler.Resync)
		cleaning.PATCH("/items/:id", completionHandler.Update(materialize.KindCleaning))
		cleaning.POST("/items/:id/photo", completionHandler.UploadPhoto(materialize.KindCleaning))
		cleaningTasks.RegisterRoutes(cleaning.Group("/tasks"), manage)
	}

	shifts := tenant.Group("/shifts")
	{
		shifts.GET("", shiftHandler.List)
		shifts.GET("/today", shiftHandler.Today)
		shifts.POST("/resync", manage, shiftHandler.Resync)
		shifts.GET("/:id", shiftHandler.Get)
		shifts.PUT("/:id/responsible", manage, shiftHandler.AssignResponsible)

		shifts.POST("/:id/checklist", shiftHandler.AddChecklistItem)
		shifts.PATCH("/checklist/:itemId", completionHandler.Update(materialize.KindShift))
		shifts.POST("/checklist/:itemId/photo", completionHandler.UploadPhoto(materialize.KindShift))

		shifts.GET("/:id/tasks", shiftHandler.ListTasks)
		shifts.POST("/:id/tasks", shiftHandler.AddTask)
		shifts.PATCH("/tasks/:taskId/status", shiftHandler.UpdateTaskStatus)

		shifts.POST("/:id/prep", shiftHandler.AddPrepItem)
		shifts.PATCH("/prep/:prepId", shiftHandler.UpdatePrep)

		shifts.GET("/:id/wishes", shiftHandler.ListWishes)
		shifts.POST("/:id/wishes", shiftHandler.AddWish)

		shifts.GET("/:id/handovers", shiftHandler.ListHandovers)
		shifts.POST("/:id/handovers", shiftHandler.RecordHandover)

		shiftChecklistTemplates.RegisterRoutes(shifts.Group("/templates/checklist"), manage)
		shiftPrepTemplates.RegisterRoutes(shifts.Group("/templates/prep"), manage)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return nil
}
